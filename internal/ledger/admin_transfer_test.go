package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omidrahimi/hawala_system/internal/models"
)

func TestAdminTransferFunds(t *testing.T) {
	e, db := newTestEngine(t)
	from := createTestAgent(t, db, "Karim", "Kabul", "0700000001")
	to := createTestAgent(t, db, "Zahir", "Herat", "0700000002")
	setBalance(t, db, from.ID, "AFN", "1000")
	admin := AdminActor(1)

	require.NoError(t, e.AdminTransferFunds(admin, from.ID, to.ID, decimal.RequireFromString("400"), "AFN"))
	requireAmount(t, "600", balanceOf(t, db, from.ID, "AFN"))
	requireAmount(t, "400", balanceOf(t, db, to.ID, "AFN"))

	// The movement is auditable through the ledger as a completed row.
	var audit models.Transaction
	require.NoError(t, db.Where("origin_agent_id = ? AND dest_agent_id = ?", from.ID, to.ID).First(&audit).Error)
	assert.Equal(t, StatusCompleted, audit.Status)
	requireAmount(t, "400", audit.Amount)
	requireAmount(t, "0", audit.Commission)
	assert.NotNil(t, audit.CompletedAt)
	assert.Contains(t, audit.Code, "HWL")
}

func TestAdminTransferFundsErrors(t *testing.T) {
	e, db := newTestEngine(t)
	from := createTestAgent(t, db, "Karim", "Kabul", "0700000001")
	to := createTestAgent(t, db, "Zahir", "Herat", "0700000002")
	setBalance(t, db, from.ID, "AFN", "100")
	admin := AdminActor(1)
	amount := decimal.RequireFromString("400")

	err := e.AdminTransferFunds(AgentActor(from.ID), from.ID, to.ID, amount, "AFN")
	assert.ErrorIs(t, err, ErrPermission)

	err = e.AdminTransferFunds(admin, from.ID, from.ID, amount, "AFN")
	assert.ErrorIs(t, err, ErrValidation)

	err = e.AdminTransferFunds(admin, from.ID, to.ID, decimal.Zero, "AFN")
	assert.ErrorIs(t, err, ErrValidation)

	err = e.AdminTransferFunds(admin, from.ID, to.ID, amount, "EUR")
	assert.ErrorIs(t, err, ErrValidation)

	err = e.AdminTransferFunds(admin, from.ID, 9999, amount, "AFN")
	assert.ErrorIs(t, err, ErrNotFound)

	err = e.AdminTransferFunds(admin, from.ID, to.ID, amount, "AFN")
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// Nothing moved and nothing was recorded.
	requireAmount(t, "100", balanceOf(t, db, from.ID, "AFN"))
	requireAmount(t, "0", balanceOf(t, db, to.ID, "AFN"))
	var n int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&n).Error)
	assert.Zero(t, n)
}
