package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omidrahimi/hawala_system/internal/models"
)

// AdminTransferFunds moves float directly between two agents, outside the
// transfer state machine. The debit is floor-checked; the movement is
// recorded as an already-completed zero-commission transaction so it stays
// auditable through the same ledger.
func (e *Engine) AdminTransferFunds(actor Actor, fromAgentID, toAgentID uint, amount decimal.Decimal, currency string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins move funds between agents", ErrPermission)
	}
	if fromAgentID == toAgentID {
		return fmt.Errorf("%w: source and target must differ", ErrValidation)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !e.validCurrency(currency) {
		return fmt.Errorf("%w: unknown currency %q", ErrValidation, currency)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		from, err := activeAgent(tx, fromAgentID)
		if err != nil {
			return err
		}
		to, err := activeAgent(tx, toAgentID)
		if err != nil {
			return err
		}

		if err := debitBalanceChecked(tx, fromAgentID, currency, amount); err != nil {
			return err
		}
		if err := adjustBalance(tx, toAgentID, currency, amount); err != nil {
			return err
		}

		code, err := freshCode(tx)
		if err != nil {
			return err
		}
		now := time.Now()
		audit := models.Transaction{
			Code:            code,
			OriginAgentID:   fromAgentID,
			DestAgentID:     toAgentID,
			SenderName:      from.Name,
			ReceiverName:    to.Name,
			ReceiverTazkira: to.Tazkira,
			Amount:          amount,
			Currency:        currency,
			Commission:      decimal.Zero,
			Status:          StatusCompleted,
			CompletedAt:     &now,
		}
		if err := tx.Create(&audit).Error; err != nil {
			return persistErr(err)
		}
		return nil
	})
}
