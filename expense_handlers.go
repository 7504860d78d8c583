package main

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type expenseRequest struct {
	Category *string               `json:"category"`
	Amount   *decimal.Decimal      `json:"amount"`
	DueDate  *models.Date          `json:"due_date"`
	Status   *models.ExpenseStatus `json:"status"`
	Notes    *string               `json:"notes"`
}

// validate checks the expense business rules. The due-date-in-the-past rule
// applies when a due date is being set, so a partial update that leaves the
// date alone is allowed to touch other fields of an old expense.
func (r *expenseRequest) validate(partial bool) fieldErrors {
	errs := fieldErrors{}
	if !partial {
		if r.Category == nil || strings.TrimSpace(*r.Category) == "" {
			errs["category"] = "this field is required"
		}
		if r.Amount == nil {
			errs["amount"] = "this field is required"
		}
		if r.DueDate == nil {
			errs["due_date"] = "this field is required"
		}
	} else if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		errs["category"] = "must not be blank"
	}
	if r.Amount != nil && r.Amount.Cmp(decimal.Zero) <= 0 {
		errs["amount"] = "amount must be greater than 0"
	}
	if r.DueDate != nil {
		y, m, d := time.Now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		if r.DueDate.Time.Before(today) {
			errs["due_date"] = "due date cannot be in the past"
		}
	}
	if r.Status != nil && !r.Status.Valid() {
		errs["status"] = "status must be one of: pending, paid"
	}
	return errs
}

func (r *expenseRequest) applyTo(exp *models.Expense) {
	if r.Category != nil {
		exp.Category = *r.Category
	}
	if r.Amount != nil {
		exp.Amount = *r.Amount
	}
	if r.DueDate != nil {
		exp.DueDate = *r.DueDate
	}
	if r.Status != nil {
		exp.Status = *r.Status
	}
	if r.Notes != nil {
		exp.Notes = *r.Notes
	}
}

func fetchOwnedExpense(c *gin.Context, userID uint) (*models.Expense, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	var exp models.Expense
	if err := db.Where("user_id = ? AND id = ?", userID, id).First(&exp).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	return &exp, true
}

func listExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	q := db.Model(&models.Expense{}).Where("user_id = ?", user.ID)
	q, err := applyExpenseFilters(q, c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := buildOrdering(c, expenseOrderFields, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q = q.Session(&gorm.Session{}) // reusable for count + page fetch
	var total int64
	if err := q.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	items := []models.Expense{}
	if err := paginate(c, q.Order(order)).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, listEnvelope{Count: int(total), Results: items})
}

func listExpenseCachedHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	items, err := expenseListCache.GetOrLoad(expenseListKey(user.ID), func() ([]models.Expense, error) {
		out := []models.Expense{}
		err := db.Where("user_id = ?", user.ID).Order("id").Find(&out).Error
		return out, err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, listEnvelope{Count: len(items), Results: items})
}

func createExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := req.validate(false); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	exp := models.Expense{UserID: user.ID, Status: models.ExpensePaid}
	req.applyTo(&exp)
	if err := db.Create(&exp).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	invalidateExpenseCaches(user.ID)
	c.JSON(http.StatusCreated, exp)
}

func getExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	exp, ok := fetchOwnedExpense(c, user.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, exp)
}

func putExpenseHandler(c *gin.Context)   { updateExpense(c, false) }
func patchExpenseHandler(c *gin.Context) { updateExpense(c, true) }

func updateExpense(c *gin.Context, partial bool) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	exp, ok := fetchOwnedExpense(c, user.ID)
	if !ok {
		return
	}
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := req.validate(partial); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	req.applyTo(exp)
	if err := db.Save(exp).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	invalidateExpenseCaches(user.ID)
	c.JSON(http.StatusOK, exp)
}

func deleteExpenseHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	exp, ok := fetchOwnedExpense(c, user.ID)
	if !ok {
		return
	}
	if err := db.Delete(exp).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	invalidateExpenseCaches(user.ID)
	c.Status(http.StatusNoContent)
}
