package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omidrahimi/hawala_system/internal/models"
)

// CreateAgentParams carries everything the admin collects when onboarding an
// agent. PasswordHash is a bcrypt hash; the engine never sees plaintext. An
// opening balance models cash the agent deposited with the operator up front.
type CreateAgentParams struct {
	Name            string
	Province        string
	Phone           string
	Tazkira         string
	PasswordHash    string
	OpeningBalance  decimal.Decimal
	OpeningCurrency string
}

func (e *Engine) CreateAgent(actor Actor, p CreateAgentParams) (*models.Agent, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins create agents", ErrPermission)
	}
	if p.Name == "" || p.Phone == "" || p.Tazkira == "" || p.PasswordHash == "" {
		return nil, fmt.Errorf("%w: name, phone, document number and password are required", ErrValidation)
	}
	if p.OpeningBalance.IsNegative() {
		return nil, fmt.Errorf("%w: opening balance cannot be negative", ErrValidation)
	}
	if p.OpeningBalance.IsPositive() && !e.validCurrency(p.OpeningCurrency) {
		return nil, fmt.Errorf("%w: unknown currency %q", ErrValidation, p.OpeningCurrency)
	}

	agent := models.Agent{
		Name:     p.Name,
		Province: p.Province,
		Phone:    p.Phone,
		Tazkira:  p.Tazkira,
		Password: p.PasswordHash,
		IsActive: true,
	}
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Agent{}).
			Where("phone = ? OR tazkira = ?", p.Phone, p.Tazkira).
			Count(&n).Error; err != nil {
			return persistErr(err)
		}
		if n > 0 {
			return fmt.Errorf("%w: phone or document number already registered", ErrValidation)
		}
		if err := tx.Create(&agent).Error; err != nil {
			return persistErr(err)
		}
		if p.OpeningBalance.IsPositive() {
			return adjustBalance(tx, agent.ID, p.OpeningCurrency, p.OpeningBalance)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &agent, nil
}

// SetAgentActive toggles the active flag. Reactivating also clears the
// failed-login lockout so the agent can sign in again.
func (e *Engine) SetAgentActive(actor Actor, agentID uint, active bool) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins manage agents", ErrPermission)
	}
	updates := map[string]interface{}{"is_active": active}
	if active {
		updates["failed_attempts"] = 0
		updates["locked_at"] = nil
	}
	res := e.db.Model(&models.Agent{}).Where("id = ?", agentID).Updates(updates)
	if res.Error != nil {
		return persistErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: agent %d", ErrNotFound, agentID)
	}
	return nil
}

func (e *Engine) ListAgents(actor Actor) ([]models.Agent, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins list agents", ErrPermission)
	}
	var agents []models.Agent
	if err := e.db.Order("name").Find(&agents).Error; err != nil {
		return nil, persistErr(err)
	}
	return agents, nil
}
