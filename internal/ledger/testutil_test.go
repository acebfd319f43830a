package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/omidrahimi/hawala_system/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// One connection keeps the in-memory database alive and serializes
	// concurrent test goroutines the way row locks would on Postgres.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Admin{}, &models.Agent{}, &models.Balance{},
		&models.Transaction{}, &models.TopUpRequest{},
	))
	return db
}

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return New(db, decimal.NewFromFloat(0.01), []string{"AFN", "USD"}), db
}

func createTestAgent(t *testing.T, db *gorm.DB, name, province, phone string) *models.Agent {
	t.Helper()
	a := &models.Agent{
		Name:     name,
		Province: province,
		Phone:    phone,
		Tazkira:  "DOC-" + phone,
		Password: "irrelevant",
		IsActive: true,
	}
	require.NoError(t, db.Create(a).Error)
	return a
}

func setBalance(t *testing.T, db *gorm.DB, agentID uint, currency, amount string) {
	t.Helper()
	require.NoError(t, db.Create(&models.Balance{
		AgentID:  agentID,
		Currency: currency,
		Amount:   decimal.RequireFromString(amount),
	}).Error)
}

func balanceOf(t *testing.T, db *gorm.DB, agentID uint, currency string) decimal.Decimal {
	t.Helper()
	var b models.Balance
	err := db.Where("agent_id = ? AND currency = ?", agentID, currency).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero
	}
	require.NoError(t, err)
	return b.Amount
}

func sumBalances(t *testing.T, db *gorm.DB, currency string) decimal.Decimal {
	t.Helper()
	var balances []models.Balance
	require.NoError(t, db.Where("currency = ?", currency).Find(&balances).Error)
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Amount)
	}
	return total
}

func requireAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}
