package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Transaction represents a single income or expense record. Transactions are
// owned exclusively by one user and are deleted permanently, so unlike the
// other models there is no DeletedAt column.
type Transaction struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"not null;index" json:"user_id"`
	Type      TransactionType `gorm:"not null;index" json:"type"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	Category  string          `gorm:"not null" json:"category"`
	Icon      string          `json:"icon,omitempty"`
	Date      time.Time       `gorm:"not null;index" json:"date"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
