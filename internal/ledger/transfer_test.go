package ledger

import (
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTransactionCreditsOrigin(t *testing.T) {
	e, db := newTestEngine(t)
	origin := createTestAgent(t, db, "Karim", "Kabul", "0700000001")
	dest := createTestAgent(t, db, "Zahir", "Herat", "0700000002")

	code, err := e.CreateTransaction(AgentActor(origin.ID), dest.ID,
		"Sender", "Receiver", "1234", decimal.RequireFromString("1000"), "AFN")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "HWL"))
	assert.Len(t, code, 9)

	requireAmount(t, "1000", balanceOf(t, db, origin.ID, "AFN"))
	requireAmount(t, "0", balanceOf(t, db, dest.ID, "AFN"))

	txn, err := e.GetTransaction(code)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, txn.Status)
	assert.Equal(t, origin.ID, txn.OriginAgentID)
	assert.Equal(t, dest.ID, txn.DestAgentID)
	requireAmount(t, "10", txn.Commission)
	assert.Nil(t, txn.CompletedAt)
}

func TestCreateTransactionValidation(t *testing.T) {
	e, db := newTestEngine(t)
	origin := createTestAgent(t, db, "Karim", "Kabul", "0700000001")
	dest := createTestAgent(t, db, "Zahir", "Herat", "0700000002")
	inactive := createTestAgent(t, db, "Wali", "Balkh", "0700000003")
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	thousand := decimal.RequireFromString("1000")

	tests := []struct {
		name     string
		actor    Actor
		dest     uint
		amount   decimal.Decimal
		currency string
		wantErr  error
	}{
		{"zero amount", AgentActor(origin.ID), dest.ID, decimal.Zero, "AFN", ErrValidation},
		{"negative amount", AgentActor(origin.ID), dest.ID, decimal.RequireFromString("-5"), "AFN", ErrValidation},
		{"self transfer", AgentActor(origin.ID), origin.ID, thousand, "AFN", ErrValidation},
		{"unknown currency", AgentActor(origin.ID), dest.ID, thousand, "EUR", ErrValidation},
		{"unknown destination", AgentActor(origin.ID), 9999, thousand, "AFN", ErrNotFound},
		{"inactive destination", AgentActor(origin.ID), inactive.ID, thousand, "AFN", ErrPermission},
		{"admin actor", AdminActor(1), dest.ID, thousand, "AFN", ErrPermission},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.CreateTransaction(tc.actor, tc.dest, "S", "R", "1234", tc.amount, tc.currency)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	// None of the failures may have touched a balance.
	requireAmount(t, "0", sumBalances(t, db, "AFN"))
}

func TestPayTransaction(t *testing.T) {
	e, db := newTestEngine(t)
	origin := createTestAgent(t, db, "Karim", "Kabul", "0700000001")
	dest := createTestAgent(t, db, "Zahir", "Herat", "0700000002")
	setBalance(t, db, dest.ID, "AFN", "1500")

	code, err := e.CreateTransaction(AgentActor(origin.ID), dest.ID,
		"Sender", "Receiver", "1234", decimal.RequireFromString("1000"), "AFN")
	require.NoError(t, err)

	err = e.PayTransaction(AgentActor(origin.ID), code)
	assert.ErrorIs(t, err, ErrPermission)

	require.NoError(t, e.PayTransaction(AgentActor(dest.ID), code))
	requireAmount(t, "500", balanceOf(t, db, dest.ID, "AFN"))

	txn, err := e.GetTransaction(code)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, txn.Status)
	require.NotNil(t, txn.CompletedAt)

	// Terminal states are immutable.
	err = e.PayTransaction(AgentActor(dest.ID), code)
	assert.ErrorIs(t, err, ErrStateConflict)
	requireAmount(t, "500", balanceOf(t, db, dest.ID, "AFN"))

	_, err = e.CancelPending(AgentActor(origin.ID), code)
	assert.ErrorIs(t, err, ErrStateConflict)
}

func TestPayTransactionInsufficientFunds(t *testing.T) {
	e, db := newTestEngine(t)
	origin := createTestAgent(t, db, "Karim", "Kabul", "0700000001")
	dest := createTestAgent(t, db, "Zahir", "Herat", "0700000002")
	setBalance(t, db, dest.ID, "AFN", "100")

	code, err := e.CreateTransaction(AgentActor(origin.ID), dest.ID,
		"Sender", "Receiver", "1234", decimal.RequireFromString("1000"), "AFN")
	require.NoError(t, err)

	err = e.PayTransaction(AgentActor(dest.ID), code)
	assert.ErrorIs(t, err, ErrInsufficientFunds)

	// The status flip must have rolled back with the debit.
	txn, err := e.GetTransaction(code)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, txn.Status)
	requireAmount(t, "100", balanceOf(t, db, dest.ID, "AFN"))
}

func TestPayTransactionConcurrent(t *testing.T) {
	e, db := newTestEngine(t)
	origin := createTestAgent(t, db, "Karim", "Kabul", "0700000001")
	dest := createTestAgent(t, db, "Zahir", "Herat", "0700000002")
	setBalance(t, db, dest.ID, "AFN", "5000")

	code, err := e.CreateTransaction(AgentActor(origin.ID), dest.ID,
		"Sender", "Receiver", "1234", decimal.RequireFromString("1000"), "AFN")
	require.NoError(t, err)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for range 2 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- e.PayTransaction(AgentActor(dest.ID), code)
		}()
	}
	wg.Wait()
	close(errs)

	var ok, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			assert.ErrorIs(t, err, ErrStateConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	// Debited exactly once.
	requireAmount(t, "4000", balanceOf(t, db, dest.ID, "AFN"))
}

func TestEditPendingConcurrentWithCancel(t *testing.T) {
	e, db := newTestEngine(t)
	origin := createTestAgent(t, db, "Karim", "Kabul", "0700000001")
	dest := createTestAgent(t, db, "Zahir", "Herat", "0700000002")

	code, err := e.CreateTransaction(AgentActor(origin.ID), dest.ID,
		"Sender", "Receiver", "1234", decimal.RequireFromString("1000"), "AFN")
	require.NoError(t, err)

	var (
		editErr   error
		cancelErr error
		refunded  decimal.Decimal
		wg        sync.WaitGroup
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		editErr = e.EditPendingAmount(AgentActor(origin.ID), code, decimal.RequireFromString("700"))
	}()
	go func() {
		defer wg.Done()
		refunded, cancelErr = e.CancelPending(AgentActor(origin.ID), code)
	}()
	wg.Wait()

	require.NoError(t, cancelErr)
	txn, err := e.GetTransaction(code)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, txn.Status)

	if editErr == nil {
		// The edit committed first; the cancel refunded the edited amount.
		requireAmount(t, "700", txn.Amount)
		requireAmount(t, "700", refunded)
	} else {
		// The cancel won; the edit must have observed the terminal state.
		assert.ErrorIs(t, editErr, ErrStateConflict)
		requireAmount(t, "1000", txn.Amount)
		requireAmount(t, "1000", refunded)
	}

	// Either way the refund exactly undid the outstanding credit.
	requireAmount(t, "0", balanceOf(t, db, origin.ID, "AFN"))
}

func TestCancelPending(t *testing.T) {
	e, db := newTestEngine(t)
	origin := createTestAgent(t, db, "Karim", "Kabul", "0700000001")
	dest := createTestAgent(t, db, "Zahir", "Herat", "0700000002")

	code, err := e.CreateTransaction(AgentActor(origin.ID), dest.ID,
		"Sender", "Receiver", "1234", decimal.RequireFromString("1000"), "AFN")
	require.NoError(t, err)
	requireAmount(t, "1000", balanceOf(t, db, origin.ID, "AFN"))

	_, err = e.CancelPending(AgentActor(dest.ID), code)
	assert.ErrorIs(t, err, ErrPermission)

	refunded, err := e.CancelPending(AgentActor(origin.ID), code)
	require.NoError(t, err)
	requireAmount(t, "1000", refunded)
	requireAmount(t, "0", balanceOf(t, db, origin.ID, "AFN"))

	txn, err := e.GetTransaction(code)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, txn.Status)

	// A second cancel must fail loudly, not silently succeed.
	_, err = e.CancelPending(AgentActor(origin.ID), code)
	assert.ErrorIs(t, err, ErrStateConflict)
	requireAmount(t, "0", balanceOf(t, db, origin.ID, "AFN"))

	err = e.PayTransaction(AgentActor(dest.ID), code)
	assert.ErrorIs(t, err, ErrStateConflict)

	_, err = e.CancelPending(AgentActor(origin.ID), "HWL000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditPendingAmount(t *testing.T) {
	e, db := newTestEngine(t)
	origin := createTestAgent(t, db, "Karim", "Kabul", "0700000001")
	dest := createTestAgent(t, db, "Zahir", "Herat", "0700000002")

	code, err := e.CreateTransaction(AgentActor(origin.ID), dest.ID,
		"Sender", "Receiver", "1234", decimal.RequireFromString("1000"), "AFN")
	require.NoError(t, err)

	require.NoError(t, e.EditPendingAmount(AgentActor(origin.ID), code, decimal.RequireFromString("1500")))
	requireAmount(t, "1500", balanceOf(t, db, origin.ID, "AFN"))
	txn, err := e.GetTransaction(code)
	require.NoError(t, err)
	requireAmount(t, "1500", txn.Amount)
	requireAmount(t, "15", txn.Commission)

	require.NoError(t, e.EditPendingAmount(AgentActor(origin.ID), code, decimal.RequireFromString("800")))
	requireAmount(t, "800", balanceOf(t, db, origin.ID, "AFN"))
	txn, err = e.GetTransaction(code)
	require.NoError(t, err)
	requireAmount(t, "8", txn.Commission)

	err = e.EditPendingAmount(AgentActor(dest.ID), code, decimal.RequireFromString("900"))
	assert.ErrorIs(t, err, ErrPermission)

	err = e.EditPendingAmount(AgentActor(origin.ID), code, decimal.Zero)
	assert.ErrorIs(t, err, ErrValidation)

	// Editing a non-pending transaction fails without side effects.
	setBalance(t, db, dest.ID, "AFN", "800")
	require.NoError(t, e.PayTransaction(AgentActor(dest.ID), code))
	err = e.EditPendingAmount(AgentActor(origin.ID), code, decimal.RequireFromString("900"))
	assert.ErrorIs(t, err, ErrStateConflict)
	requireAmount(t, "800", balanceOf(t, db, origin.ID, "AFN"))
}
