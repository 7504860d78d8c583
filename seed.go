package main

import (
	"fmt"
	"time"

	"fintrack/models"
	"fintrack/pkg/annuity"

	"github.com/shopspring/decimal"
)

// seedDemoRecords loads a small set of demo income, expense and loan records
// for the admin user. Safe to re-run: it skips users that already have data.
func seedDemoRecords() error {
	var admin models.User
	if err := db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		return fmt.Errorf("admin user missing, run migrate first: %v", err)
	}

	var n int64
	db.Model(&models.Income{}).Where("user_id = ?", admin.ID).Count(&n)
	if n > 0 {
		return nil
	}

	year := time.Now().Year()
	incomes := []models.Income{
		{UserID: admin.ID, SourceName: "Salary", Amount: decimal.NewFromInt(3500), DateReceived: models.NewDate(year, time.January, 28), Status: models.IncomeReceived},
		{UserID: admin.ID, SourceName: "Salary", Amount: decimal.NewFromInt(3500), DateReceived: models.NewDate(year, time.February, 28), Status: models.IncomeReceived},
		{UserID: admin.ID, SourceName: "Freelance", Amount: decimal.NewFromFloat(820.50), DateReceived: models.NewDate(year, time.March, 10), Status: models.IncomePending},
	}
	for i := range incomes {
		if err := db.Create(&incomes[i]).Error; err != nil {
			return err
		}
	}

	expenses := []models.Expense{
		{UserID: admin.ID, Category: "Rent", Amount: decimal.NewFromInt(1200), DueDate: models.NewDate(year+1, time.January, 1), Status: models.ExpensePending},
		{UserID: admin.ID, Category: "Utilities", Amount: decimal.NewFromFloat(140.25), DueDate: models.NewDate(year+1, time.January, 15), Status: models.ExpensePending},
		{UserID: admin.ID, Category: "Groceries", Amount: decimal.NewFromFloat(96.80), DueDate: models.NewDate(year+1, time.February, 1), Status: models.ExpensePaid},
	}
	for i := range expenses {
		if err := db.Create(&expenses[i]).Error; err != nil {
			return err
		}
	}

	loans := []models.Loan{
		{UserID: admin.ID, LoanName: "Car loan", PrincipalAmount: decimal.NewFromInt(5000), InterestRate: decimal.NewFromFloat(5.0), TenureMonths: 24, RemainingBalance: decimal.NewFromInt(4200), Status: models.LoanActive},
		{UserID: admin.ID, LoanName: "Laptop", PrincipalAmount: decimal.NewFromInt(1200), InterestRate: decimal.Zero, TenureMonths: 12, RemainingBalance: decimal.Zero, Status: models.LoanPaid},
	}
	for i := range loans {
		loans[i].MonthlyInstallment = annuity.MonthlyInstallment(loans[i].PrincipalAmount, loans[i].InterestRate, loans[i].TenureMonths)
		if err := db.Create(&loans[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
