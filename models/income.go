package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IncomeStatus is the closed status set for Income records.
type IncomeStatus string

const (
	IncomePending  IncomeStatus = "pending"
	IncomeReceived IncomeStatus = "received"
)

func (s IncomeStatus) Valid() bool {
	return s == IncomePending || s == IncomeReceived
}

// Income represents money received (or expected) by a user.
type Income struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	UserID       uint            `gorm:"not null;index:idx_income_user_source_status" json:"user"`
	SourceName   string          `gorm:"size:255;not null;index:idx_income_user_source_status" json:"source_name"`
	Amount       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	DateReceived Date            `gorm:"not null" json:"date_received"`
	Status       IncomeStatus    `gorm:"size:10;not null;default:pending;index:idx_income_user_source_status" json:"status"`
	Notes        string          `gorm:"type:text" json:"notes"`
}
