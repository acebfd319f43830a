package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/omidrahimi/hawala_system/internal/models"
)

// adjustBalance applies amount += delta to the (agent, currency) row,
// creating it if absent. It never enforces a floor; callers that must not
// drive a balance negative use debitBalanceChecked instead. Must run inside
// the caller's transaction.
func adjustBalance(tx *gorm.DB, agentID uint, currency string, delta decimal.Decimal) error {
	b := models.Balance{AgentID: agentID, Currency: currency, Amount: delta}
	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "agent_id"}, {Name: "currency"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"amount": gorm.Expr("balances.amount + ?", delta),
		}),
	}).Create(&b).Error
	if err != nil {
		return persistErr(err)
	}
	return nil
}

// debitBalanceChecked subtracts amount only if the current balance covers it.
// The floor check and the debit are one statement, so concurrent debits
// cannot both pass the check. A missing row counts as zero and fails.
func debitBalanceChecked(tx *gorm.DB, agentID uint, currency string, amount decimal.Decimal) error {
	res := tx.Model(&models.Balance{}).
		Where("agent_id = ? AND currency = ? AND amount >= ?", agentID, currency, amount).
		Update("amount", gorm.Expr("amount - ?", amount))
	if res.Error != nil {
		return persistErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: agent %d holds less than %s %s", ErrInsufficientFunds, agentID, amount, currency)
	}
	return nil
}
