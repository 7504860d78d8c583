package main

import (
	"fmt"
	"strconv"
	"strings"

	"fintrack/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// fieldErrors maps a request field name to a validation message.
type fieldErrors map[string]string

// listEnvelope is the response shape for every list endpoint, cached ones
// included.
type listEnvelope struct {
	Count   int         `json:"count"`
	Results interface{} `json:"results"`
}

// Allowed targets for the generic filter_<field> parameters. Requests naming
// any other field are rejected so internal or relation columns can never be
// reached from a query string.
var (
	incomeFilterFields = map[string]string{
		"source_name":   "source_name",
		"amount":        "amount",
		"date_received": "date_received",
		"status":        "status",
		"notes":         "notes",
	}
	expenseFilterFields = map[string]string{
		"category": "category",
		"amount":   "amount",
		"due_date": "due_date",
		"status":   "status",
		"notes":    "notes",
	}
	loanFilterFields = map[string]string{
		"loan_name":         "loan_name",
		"principal_amount":  "principal_amount",
		"interest_rate":     "interest_rate",
		"tenure_months":     "tenure_months",
		"remaining_balance": "remaining_balance",
		"status":            "status",
		"notes":             "notes",
	}
)

// Allowed targets for ordering / sort_by, matching the declared ordering
// fields of each list endpoint.
var (
	incomeOrderFields  = map[string]string{"amount": "amount", "date_received": "date_received", "source_name": "source_name"}
	expenseOrderFields = map[string]string{"amount": "amount", "due_date": "due_date"}
	loanOrderFields    = map[string]string{"loan_name": "loan_name", "principal_amount": "principal_amount", "remaining_balance": "remaining_balance"}
)

func applyIncomeFilters(q *gorm.DB, c *gin.Context) (*gorm.DB, error) {
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := c.Query("source_name"); v != "" {
		q = q.Where("LOWER(source_name) = LOWER(?)", v)
	}
	var err error
	if q, err = applyDateFilters(q, c, "date_received"); err != nil {
		return nil, err
	}
	q = applySearch(q, c, "source_name", "notes")
	return applyDynamicFilters(q, c, incomeFilterFields)
}

func applyExpenseFilters(q *gorm.DB, c *gin.Context) (*gorm.DB, error) {
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := c.Query("category"); v != "" {
		q = q.Where("LOWER(category) = LOWER(?)", v)
	}
	var err error
	if q, err = applyDateFilters(q, c, "due_date"); err != nil {
		return nil, err
	}
	q = applySearch(q, c, "category", "notes")
	return applyDynamicFilters(q, c, expenseFilterFields)
}

func applyLoanFilters(q *gorm.DB, c *gin.Context) (*gorm.DB, error) {
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := c.Query("loan_name"); v != "" {
		q = q.Where("LOWER(loan_name) LIKE ?", "%"+strings.ToLower(v)+"%")
	}
	if v := c.Query("remaining_balance_gte"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid number for remaining_balance_gte")
		}
		q = q.Where("remaining_balance >= ?", d)
	}
	if v := c.Query("remaining_balance_lte"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid number for remaining_balance_lte")
		}
		q = q.Where("remaining_balance <= ?", d)
	}
	q = applySearch(q, c, "loan_name", "notes")
	return applyDynamicFilters(q, c, loanFilterFields)
}

// applyDateFilters handles exact, strictly-greater and inclusive-range
// comparisons on the variant's date column: <col>, <col>_gt, <col>_after,
// <col>_before.
func applyDateFilters(q *gorm.DB, c *gin.Context, col string) (*gorm.DB, error) {
	if v := c.Query(col); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid date for %s", col)
		}
		q = q.Where(col+" = ?", d.Time)
	}
	if v := c.Query(col + "_gt"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid date for %s_gt", col)
		}
		q = q.Where(col+" > ?", d.Time)
	}
	if v := c.Query(col + "_after"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid date for %s_after", col)
		}
		q = q.Where(col+" >= ?", d.Time)
	}
	if v := c.Query(col + "_before"); v != "" {
		d, err := models.ParseDate(v)
		if err != nil {
			return nil, fmt.Errorf("invalid date for %s_before", col)
		}
		q = q.Where(col+" <= ?", d.Time)
	}
	return q, nil
}

// applySearch narrows by a case-insensitive substring match over the
// endpoint's declared free-text fields.
func applySearch(q *gorm.DB, c *gin.Context, cols ...string) *gorm.DB {
	v := c.Query("search")
	if v == "" {
		return q
	}
	pattern := "%" + strings.ToLower(v) + "%"
	clauses := make([]string, len(cols))
	args := make([]interface{}, len(cols))
	for i, col := range cols {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return q.Where(strings.Join(clauses, " OR "), args...)
}

// applyDynamicFilters applies any filter_<field> parameter as an exact-match
// predicate, provided the target field is in the variant's allow-list.
func applyDynamicFilters(q *gorm.DB, c *gin.Context, allowed map[string]string) (*gorm.DB, error) {
	for param, vals := range c.Request.URL.Query() {
		if !strings.HasPrefix(param, "filter_") || len(vals) == 0 {
			continue
		}
		name := strings.TrimPrefix(param, "filter_")
		col, ok := allowed[name]
		if !ok {
			return nil, fmt.Errorf("unknown filter field: %s", name)
		}
		q = q.Where(col+" = ?", vals[0])
	}
	return q, nil
}

// buildOrdering resolves the ordering / sort_by+order parameters into an
// ORDER BY clause against the allow-list, or defaultOrder when absent.
// Unknown fields are an error, not a silent no-op.
func buildOrdering(c *gin.Context, allowed map[string]string, defaultOrder string) (string, error) {
	if v := c.Query("ordering"); v != "" {
		field, desc := v, false
		if strings.HasPrefix(v, "-") {
			field, desc = v[1:], true
		}
		col, ok := allowed[field]
		if !ok {
			return "", fmt.Errorf("unknown ordering field: %s", field)
		}
		if desc {
			return col + " DESC", nil
		}
		return col, nil
	}
	if v := c.Query("sort_by"); v != "" {
		col, ok := allowed[v]
		if !ok {
			return "", fmt.Errorf("unknown sort field: %s", v)
		}
		if c.Query("order") == "desc" {
			return col + " DESC", nil
		}
		return col, nil
	}
	return defaultOrder, nil
}

// paginate applies page / page_size to an already-counted query.
func paginate(c *gin.Context, q *gorm.DB) *gorm.DB {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 200 {
		size = 50
	}
	return q.Offset((page - 1) * size).Limit(size)
}
