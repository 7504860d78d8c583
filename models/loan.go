package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanStatus is the closed status set for Loan records.
type LoanStatus string

const (
	LoanActive LoanStatus = "active"
	LoanPaid   LoanStatus = "paid"
)

func (s LoanStatus) Valid() bool {
	return s == LoanActive || s == LoanPaid
}

// Loan represents an amortizing loan held by a user. MonthlyInstallment is
// derived from principal, rate and tenure on every save; client-supplied
// values are discarded.
type Loan struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	UserID             uint            `gorm:"index;not null" json:"user"`
	LoanName           string          `gorm:"size:120;not null" json:"loan_name"`
	PrincipalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"principal_amount"`
	InterestRate       decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"interest_rate"`
	TenureMonths       int             `gorm:"not null" json:"tenure_months"`
	MonthlyInstallment decimal.Decimal `gorm:"type:numeric(12,2)" json:"monthly_installment"`
	RemainingBalance   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"remaining_balance"`
	Status             LoanStatus      `gorm:"size:10;not null;default:active" json:"status"`
	Notes              string          `gorm:"type:text" json:"notes"`
}
