package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseStatus is the closed status set for Expense records.
type ExpenseStatus string

const (
	ExpensePending ExpenseStatus = "pending"
	ExpensePaid    ExpenseStatus = "paid"
)

func (s ExpenseStatus) Valid() bool {
	return s == ExpensePending || s == ExpensePaid
}

// Expense represents a bill or payment owed by a user.
type Expense struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	UserID    uint            `gorm:"not null;index:idx_expense_user_category_status" json:"user"`
	Category  string          `gorm:"size:120;not null;index:idx_expense_user_category_status" json:"category"`
	Amount    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	DueDate   Date            `gorm:"not null" json:"due_date"`
	Status    ExpenseStatus   `gorm:"size:10;not null;default:paid;index:idx_expense_user_category_status" json:"status"`
	Notes     string          `gorm:"type:text" json:"notes"`
}
