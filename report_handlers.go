package main

import (
	"net/http"
	"sort"

	"fintrack/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TrendPoint is one month's total for the visualization breakdown. Month is
// the calendar month number (1-12); records from different years that share
// a month are merged.
type TrendPoint struct {
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

type ReportSummary struct {
	TotalIncome        decimal.Decimal `json:"total_income"`
	TotalExpenses      decimal.Decimal `json:"total_expenses"`
	ActiveLoansBalance decimal.Decimal `json:"active_loans_balance"`
}

type ReportVisualization struct {
	IncomeTrend  []TrendPoint `json:"income_trend"`
	ExpenseTrend []TrendPoint `json:"expense_trend"`
}

// ReportPayload is the serialized report: aggregate totals plus the
// per-month trend of income and expenses.
type ReportPayload struct {
	Summary       ReportSummary       `json:"summary"`
	Visualization ReportVisualization `json:"visualization"`
}

// reportHandler serves GET /reports/ with optional inclusive start_date /
// end_date bounds, consulting the report cache first.
func reportHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var start, end *models.Date
	startStr := c.Query("start_date")
	endStr := c.Query("end_date")
	if startStr != "" {
		d, err := models.ParseDate(startStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors{"start_date": "invalid date, expected YYYY-MM-DD"}})
			return
		}
		start = &d
	}
	if endStr != "" {
		d, err := models.ParseDate(endStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors{"end_date": "invalid date, expected YYYY-MM-DD"}})
			return
		}
		end = &d
	}

	report, err := reportCache.GetOrLoad(reportKey(user.ID, startStr, endStr), func() (ReportPayload, error) {
		return buildReport(user.ID, start, end)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	c.JSON(http.StatusOK, report)
}

// buildReport aggregates the owner's records. Income is bounded on
// date_received and expenses on due_date; loans are not date-filtered, only
// active ones contribute their remaining balance.
func buildReport(userID uint, start, end *models.Date) (ReportPayload, error) {
	incomeQ := db.Where("user_id = ?", userID)
	if start != nil {
		incomeQ = incomeQ.Where("date_received >= ?", start.Time)
	}
	if end != nil {
		incomeQ = incomeQ.Where("date_received <= ?", end.Time)
	}
	var incomes []models.Income
	if err := incomeQ.Find(&incomes).Error; err != nil {
		return ReportPayload{}, err
	}

	expenseQ := db.Where("user_id = ?", userID)
	if start != nil {
		expenseQ = expenseQ.Where("due_date >= ?", start.Time)
	}
	if end != nil {
		expenseQ = expenseQ.Where("due_date <= ?", end.Time)
	}
	var expenses []models.Expense
	if err := expenseQ.Find(&expenses).Error; err != nil {
		return ReportPayload{}, err
	}

	var loans []models.Loan
	if err := db.Where("user_id = ? AND status = ?", userID, models.LoanActive).Find(&loans).Error; err != nil {
		return ReportPayload{}, err
	}

	totalIncome := decimal.Zero
	incomeByMonth := map[int]decimal.Decimal{}
	for _, inc := range incomes {
		totalIncome = totalIncome.Add(inc.Amount)
		m := int(inc.DateReceived.Month())
		incomeByMonth[m] = incomeByMonth[m].Add(inc.Amount)
	}

	totalExpenses := decimal.Zero
	expenseByMonth := map[int]decimal.Decimal{}
	for _, exp := range expenses {
		totalExpenses = totalExpenses.Add(exp.Amount)
		m := int(exp.DueDate.Month())
		expenseByMonth[m] = expenseByMonth[m].Add(exp.Amount)
	}

	activeBalance := decimal.Zero
	for _, loan := range loans {
		activeBalance = activeBalance.Add(loan.RemainingBalance)
	}

	return ReportPayload{
		Summary: ReportSummary{
			TotalIncome:        totalIncome,
			TotalExpenses:      totalExpenses,
			ActiveLoansBalance: activeBalance,
		},
		Visualization: ReportVisualization{
			IncomeTrend:  monthTrend(incomeByMonth),
			ExpenseTrend: monthTrend(expenseByMonth),
		},
	}, nil
}

// monthTrend flattens a month->total map into a slice ordered by month.
func monthTrend(byMonth map[int]decimal.Decimal) []TrendPoint {
	months := make([]int, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Ints(months)
	trend := make([]TrendPoint, 0, len(months))
	for _, m := range months {
		trend = append(trend, TrendPoint{Month: m, Total: byMonth[m]})
	}
	return trend
}
