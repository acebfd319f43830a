package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omidrahimi/hawala_system/internal/models"
)

// Engine owns the database handle and is the only writer of balance and
// transaction rows. Every operation that touches more than one row runs
// inside a single gorm transaction.
type Engine struct {
	db         *gorm.DB
	rate       decimal.Decimal
	currencies map[string]struct{}
}

func New(db *gorm.DB, commissionRate decimal.Decimal, currencies []string) *Engine {
	set := make(map[string]struct{}, len(currencies))
	for _, c := range currencies {
		set[c] = struct{}{}
	}
	return &Engine{db: db, rate: commissionRate, currencies: set}
}

func (e *Engine) validCurrency(currency string) bool {
	_, ok := e.currencies[currency]
	return ok
}

func (e *Engine) commission(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(e.rate)
}

// GetBalance returns the agent's float in the given currency, zero if the
// row has never been touched. Readable by the agent itself or an admin.
func (e *Engine) GetBalance(actor Actor, agentID uint, currency string) (decimal.Decimal, error) {
	if !actor.CanActFor(agentID) {
		return decimal.Zero, fmt.Errorf("%w: balance of agent %d", ErrPermission, agentID)
	}
	var b models.Balance
	err := e.db.Where("agent_id = ? AND currency = ?", agentID, currency).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, persistErr(err)
	}
	return b.Amount, nil
}

// ListBalances returns every currency row the agent has ever touched.
func (e *Engine) ListBalances(actor Actor, agentID uint) ([]models.Balance, error) {
	if !actor.CanActFor(agentID) {
		return nil, fmt.Errorf("%w: balances of agent %d", ErrPermission, agentID)
	}
	var balances []models.Balance
	if err := e.db.Where("agent_id = ?", agentID).Order("currency").Find(&balances).Error; err != nil {
		return nil, persistErr(err)
	}
	return balances, nil
}

// GetTransaction looks a transfer up by its public code. Any authenticated
// actor may track a code; codes are what customers carry between agents.
func (e *Engine) GetTransaction(code string) (*models.Transaction, error) {
	return transactionByCode(e.db, code)
}

// ListAgentTransactions returns the agent's most recent transfers, both sent
// and received, newest first.
func (e *Engine) ListAgentTransactions(actor Actor, agentID uint, limit int) ([]models.Transaction, error) {
	if !actor.CanActFor(agentID) {
		return nil, fmt.Errorf("%w: transactions of agent %d", ErrPermission, agentID)
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var txns []models.Transaction
	err := e.db.
		Where("origin_agent_id = ? OR dest_agent_id = ?", agentID, agentID).
		Order("created_at DESC").
		Limit(limit).
		Find(&txns).Error
	if err != nil {
		return nil, persistErr(err)
	}
	return txns, nil
}

func persistErr(err error) error {
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}

func transactionByCode(tx *gorm.DB, code string) (*models.Transaction, error) {
	var t models.Transaction
	if err := tx.Where("code = ?", code).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: transaction %s", ErrNotFound, code)
		}
		return nil, persistErr(err)
	}
	return &t, nil
}

// activeAgent loads an agent and rejects unknown or deactivated ones.
func activeAgent(tx *gorm.DB, agentID uint) (*models.Agent, error) {
	var a models.Agent
	if err := tx.First(&a, agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: agent %d", ErrNotFound, agentID)
		}
		return nil, persistErr(err)
	}
	if !a.IsActive {
		return nil, fmt.Errorf("%w: agent %d is inactive", ErrPermission, agentID)
	}
	return &a, nil
}
