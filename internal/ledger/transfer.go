package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omidrahimi/hawala_system/internal/models"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// CreateTransaction registers a new transfer and credits the origin agent's
// float with the cash it just took in from the sender. Only the origin agent
// itself may create; both parties must be active. Returns the public code.
func (e *Engine) CreateTransaction(actor Actor, destAgentID uint, senderName, receiverName, receiverTazkira string, amount decimal.Decimal, currency string) (string, error) {
	if actor.Role != RoleAgent {
		return "", fmt.Errorf("%w: only agents create transfers", ErrPermission)
	}
	originID := actor.ID
	if !amount.IsPositive() {
		return "", fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !e.validCurrency(currency) {
		return "", fmt.Errorf("%w: unknown currency %q", ErrValidation, currency)
	}
	if originID == destAgentID {
		return "", fmt.Errorf("%w: origin and destination must differ", ErrValidation)
	}
	if senderName == "" || receiverName == "" || receiverTazkira == "" {
		return "", fmt.Errorf("%w: sender, receiver and receiver document are required", ErrValidation)
	}

	var code string
	err := e.db.Transaction(func(tx *gorm.DB) error {
		if _, err := activeAgent(tx, originID); err != nil {
			return err
		}
		if _, err := activeAgent(tx, destAgentID); err != nil {
			return err
		}

		c, err := freshCode(tx)
		if err != nil {
			return err
		}

		t := models.Transaction{
			Code:            c,
			OriginAgentID:   originID,
			DestAgentID:     destAgentID,
			SenderName:      senderName,
			ReceiverName:    receiverName,
			ReceiverTazkira: receiverTazkira,
			Amount:          amount,
			Currency:        currency,
			Commission:      e.commission(amount),
			Status:          StatusPending,
		}
		if err := tx.Create(&t).Error; err != nil {
			return persistErr(err)
		}

		// The origin agent now physically holds the sender's cash.
		if err := adjustBalance(tx, originID, currency, amount); err != nil {
			return err
		}
		code = c
		return nil
	})
	if err != nil {
		return "", err
	}
	return code, nil
}

// EditPendingAmount changes a pending transfer's amount and recomputes the
// commission. The origin float moves by exactly newAmount - oldAmount.
func (e *Engine) EditPendingAmount(actor Actor, code string, newAmount decimal.Decimal) error {
	if !newAmount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	return e.db.Transaction(func(tx *gorm.DB) error {
		t, err := transactionByCode(tx, code)
		if err != nil {
			return err
		}
		if !actor.IsAgent(t.OriginAgentID) {
			return fmt.Errorf("%w: only the origin agent may edit %s", ErrPermission, code)
		}
		if t.Status != StatusPending {
			return fmt.Errorf("%w: transaction %s is %s", ErrStateConflict, code, t.Status)
		}

		// Compare-and-swap on (status, amount): a concurrent pay, cancel or
		// edit makes this match nothing and the whole unit rolls back.
		res := tx.Model(&models.Transaction{}).
			Where("code = ? AND status = ? AND amount = ?", code, StatusPending, t.Amount).
			Updates(map[string]interface{}{
				"amount":     newAmount,
				"commission": e.commission(newAmount),
			})
		if res.Error != nil {
			return persistErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: transaction %s changed concurrently", ErrStateConflict, code)
		}

		return adjustBalance(tx, t.OriginAgentID, t.Currency, newAmount.Sub(t.Amount))
	})
}

// CancelPending cancels a pending transfer and reverses the creation credit:
// the sender gets the cash back, so the origin float drops by the amount.
// No floor check here; the refund is owed regardless of the agent's float.
// Returns the refunded amount.
func (e *Engine) CancelPending(actor Actor, code string) (decimal.Decimal, error) {
	var refunded decimal.Decimal
	err := e.db.Transaction(func(tx *gorm.DB) error {
		t, err := transactionByCode(tx, code)
		if err != nil {
			return err
		}
		if !actor.IsAgent(t.OriginAgentID) {
			return fmt.Errorf("%w: only the origin agent may cancel %s", ErrPermission, code)
		}

		res := tx.Model(&models.Transaction{}).
			Where("code = ? AND status = ? AND amount = ?", code, StatusPending, t.Amount).
			Update("status", StatusCancelled)
		if res.Error != nil {
			return persistErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: transaction %s is not pending", ErrStateConflict, code)
		}

		if err := adjustBalance(tx, t.OriginAgentID, t.Currency, t.Amount.Neg()); err != nil {
			return err
		}
		refunded = t.Amount
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return refunded, nil
}

// PayTransaction completes a pending transfer: the destination agent pays the
// receiver out of its own float. The pending check, the status flip and the
// floor-checked debit are one atomic unit, so two concurrent pays of the same
// code complete at most once and an insufficient float leaves the row pending.
func (e *Engine) PayTransaction(actor Actor, code string) error {
	return e.db.Transaction(func(tx *gorm.DB) error {
		t, err := transactionByCode(tx, code)
		if err != nil {
			return err
		}
		if !actor.IsAgent(t.DestAgentID) {
			return fmt.Errorf("%w: only the destination agent may pay out %s", ErrPermission, code)
		}

		now := time.Now()
		res := tx.Model(&models.Transaction{}).
			Where("code = ? AND status = ? AND amount = ?", code, StatusPending, t.Amount).
			Updates(map[string]interface{}{"status": StatusCompleted, "completed_at": now})
		if res.Error != nil {
			return persistErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: transaction %s is not pending", ErrStateConflict, code)
		}

		return debitBalanceChecked(tx, t.DestAgentID, t.Currency, t.Amount)
	})
}
