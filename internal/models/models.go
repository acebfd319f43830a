package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Admin struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;size:50;not null"`
	Password string `gorm:"size:255;not null"`
	IsActive bool   `gorm:"not null;default:true"`
}

// Agent is a network participant who collects cash from senders and disburses
// cash to receivers. Tazkira is the national-id document number.
type Agent struct {
	gorm.Model
	Name           string `gorm:"size:100;not null"`
	Province       string `gorm:"size:50;index"`
	Phone          string `gorm:"uniqueIndex;size:20;not null"`
	Tazkira        string `gorm:"uniqueIndex;size:50;not null"`
	Password       string `gorm:"size:255;not null"`
	IsActive       bool   `gorm:"not null;default:true"`
	FailedAttempts int    `gorm:"not null;default:0"`
	LockedAt       *time.Time
}

// Balance is one agent's tracked cash float in one currency. An absent row
// means zero; only ledger operations write these rows.
type Balance struct {
	gorm.Model
	AgentID  uint            `gorm:"uniqueIndex:idx_balances_agent_currency;not null"`
	Currency string          `gorm:"uniqueIndex:idx_balances_agent_currency;size:3;not null"`
	Amount   decimal.Decimal `gorm:"type:decimal(20,4);not null"`
}

// Transaction is one hawala transfer. Code is the public handle customers
// carry; Status is pending, completed or cancelled.
type Transaction struct {
	gorm.Model
	Code            string          `gorm:"uniqueIndex;size:10;not null"`
	OriginAgentID   uint            `gorm:"index;not null"`
	DestAgentID     uint            `gorm:"index;not null"`
	SenderName      string          `gorm:"size:100;not null"`
	ReceiverName    string          `gorm:"size:100;not null"`
	ReceiverTazkira string          `gorm:"size:50;not null"`
	Amount          decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Currency        string          `gorm:"size:3;not null"`
	Commission      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Status          string          `gorm:"size:10;index;not null"`
	CompletedAt     *time.Time
}

// TopUpRequest is an agent asking to have physically deposited cash credited
// to its float, resolved exactly once by an administrator.
type TopUpRequest struct {
	gorm.Model
	AgentID     uint            `gorm:"index;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null"`
	Currency    string          `gorm:"size:3;not null"`
	Evidence    string          `gorm:"size:255"`
	Status      string          `gorm:"size:10;index;not null"`
	ProcessedAt *time.Time
}
