package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/omidrahimi/hawala_system/internal/models"
)

const (
	TopUpPending  = "pending"
	TopUpApproved = "approved"
	TopUpRejected = "rejected"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// SubmitTopUpRequest records an agent's claim of deposited cash, with an
// opaque evidence handle (e.g. a receipt image id). The float moves only when
// an admin approves.
func (e *Engine) SubmitTopUpRequest(actor Actor, amount decimal.Decimal, currency, evidence string) (uint, error) {
	if actor.Role != RoleAgent {
		return 0, fmt.Errorf("%w: only agents submit top-up requests", ErrPermission)
	}
	if !amount.IsPositive() {
		return 0, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}
	if !e.validCurrency(currency) {
		return 0, fmt.Errorf("%w: unknown currency %q", ErrValidation, currency)
	}

	r := models.TopUpRequest{
		AgentID:  actor.ID,
		Amount:   amount,
		Currency: currency,
		Evidence: evidence,
		Status:   TopUpPending,
	}
	if err := e.db.Create(&r).Error; err != nil {
		return 0, persistErr(err)
	}
	return r.ID, nil
}

// ResolveTopUpRequest approves or rejects a pending request exactly once.
// The pending check is part of the status flip, so a second resolution of
// the same request fails and cannot credit the balance twice.
func (e *Engine) ResolveTopUpRequest(actor Actor, requestID uint, decision Decision) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins resolve top-up requests", ErrPermission)
	}
	if decision != DecisionApprove && decision != DecisionReject {
		return fmt.Errorf("%w: unknown decision %q", ErrValidation, decision)
	}

	return e.db.Transaction(func(tx *gorm.DB) error {
		var r models.TopUpRequest
		if err := tx.First(&r, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: top-up request %d", ErrNotFound, requestID)
			}
			return persistErr(err)
		}

		next := TopUpRejected
		if decision == DecisionApprove {
			next = TopUpApproved
		}
		now := time.Now()
		res := tx.Model(&models.TopUpRequest{}).
			Where("id = ? AND status = ?", requestID, TopUpPending).
			Updates(map[string]interface{}{"status": next, "processed_at": now})
		if res.Error != nil {
			return persistErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: top-up request %d already resolved", ErrStateConflict, requestID)
		}

		if decision == DecisionApprove {
			return adjustBalance(tx, r.AgentID, r.Currency, r.Amount)
		}
		return nil
	})
}

// ListTopUpRequests returns requests for the admin queue, optionally filtered
// by status, newest first.
func (e *Engine) ListTopUpRequests(actor Actor, status string) ([]models.TopUpRequest, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins list top-up requests", ErrPermission)
	}
	q := e.db.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var requests []models.TopUpRequest
	if err := q.Find(&requests).Error; err != nil {
		return nil, persistErr(err)
	}
	return requests, nil
}
