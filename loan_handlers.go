package main

import (
	"net/http"
	"strconv"
	"strings"

	"fintrack/models"
	"fintrack/pkg/annuity"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// loanRequest never carries monthly_installment: the stored value is always
// recomputed from principal, rate and tenure before a save.
type loanRequest struct {
	LoanName         *string            `json:"loan_name"`
	PrincipalAmount  *decimal.Decimal   `json:"principal_amount"`
	InterestRate     *decimal.Decimal   `json:"interest_rate"`
	TenureMonths     *int               `json:"tenure_months"`
	RemainingBalance *decimal.Decimal   `json:"remaining_balance"`
	Status           *models.LoanStatus `json:"status"`
	Notes            *string            `json:"notes"`
}

// validate checks the loan business rules. existing supplies the current
// principal when a partial update changes remaining_balance alone.
func (r *loanRequest) validate(partial bool, existing *models.Loan) fieldErrors {
	errs := fieldErrors{}
	if !partial {
		if r.LoanName == nil || strings.TrimSpace(*r.LoanName) == "" {
			errs["loan_name"] = "this field is required"
		}
		if r.PrincipalAmount == nil {
			errs["principal_amount"] = "this field is required"
		}
		if r.InterestRate == nil {
			errs["interest_rate"] = "this field is required"
		}
		if r.TenureMonths == nil {
			errs["tenure_months"] = "this field is required"
		}
		if r.RemainingBalance == nil {
			errs["remaining_balance"] = "this field is required"
		}
	} else if r.LoanName != nil && strings.TrimSpace(*r.LoanName) == "" {
		errs["loan_name"] = "must not be blank"
	}
	if r.PrincipalAmount != nil && r.PrincipalAmount.Cmp(decimal.Zero) <= 0 {
		errs["principal_amount"] = "the principal_amount must be greater than 0"
	}
	if r.InterestRate != nil && r.InterestRate.IsNegative() {
		errs["interest_rate"] = "the interest_rate cannot be negative"
	}
	if r.TenureMonths != nil && *r.TenureMonths <= 0 {
		errs["tenure_months"] = "the tenure_months must be greater than 0"
	}
	if r.RemainingBalance != nil {
		if r.RemainingBalance.IsNegative() {
			errs["remaining_balance"] = "the remaining_balance cannot be negative"
		} else {
			principal := decimal.Zero
			if r.PrincipalAmount != nil {
				principal = *r.PrincipalAmount
			} else if existing != nil {
				principal = existing.PrincipalAmount
			}
			if principal.IsPositive() && r.RemainingBalance.Cmp(principal) > 0 {
				errs["remaining_balance"] = "remaining balance cannot exceed the principal amount"
			}
		}
	}
	if r.Status != nil && !r.Status.Valid() {
		errs["status"] = "status must be one of: active, paid"
	}
	return errs
}

func (r *loanRequest) applyTo(loan *models.Loan) {
	if r.LoanName != nil {
		loan.LoanName = *r.LoanName
	}
	if r.PrincipalAmount != nil {
		loan.PrincipalAmount = *r.PrincipalAmount
	}
	if r.InterestRate != nil {
		loan.InterestRate = *r.InterestRate
	}
	if r.TenureMonths != nil {
		loan.TenureMonths = *r.TenureMonths
	}
	if r.RemainingBalance != nil {
		loan.RemainingBalance = *r.RemainingBalance
	}
	if r.Status != nil {
		loan.Status = *r.Status
	}
	if r.Notes != nil {
		loan.Notes = *r.Notes
	}
	// Derived field, overwritten on every save regardless of what changed.
	loan.MonthlyInstallment = annuity.MonthlyInstallment(loan.PrincipalAmount, loan.InterestRate, loan.TenureMonths)
}

func fetchOwnedLoan(c *gin.Context, userID uint) (*models.Loan, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	var loan models.Loan
	if err := db.Where("user_id = ? AND id = ?", userID, id).First(&loan).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	return &loan, true
}

func listLoanHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	q := db.Model(&models.Loan{}).Where("user_id = ?", user.ID)
	q, err := applyLoanFilters(q, c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := buildOrdering(c, loanOrderFields, "created_at DESC")
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
	items := []models.Loan{}
	if err := paginate(c, q.Order(order)).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, listEnvelope{Count: int(total), Results: items})
}

func listLoanCachedHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	items, err := loanListCache.GetOrLoad(loanListKey(user.ID), func() ([]models.Loan, error) {
		out := []models.Loan{}
		err := db.Where("user_id = ?", user.ID).Order("id").Find(&out).Error
		return out, err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, listEnvelope{Count: len(items), Results: items})
}

func createLoanHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req loanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := req.validate(false, nil); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	loan := models.Loan{UserID: user.ID, Status: models.LoanActive}
	req.applyTo(&loan)
	if err := db.Create(&loan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	invalidateLoanCaches(user.ID)
	c.JSON(http.StatusCreated, loan)
}

func getLoanHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	loan, ok := fetchOwnedLoan(c, user.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, loan)
}

func putLoanHandler(c *gin.Context)   { updateLoan(c, false) }
func patchLoanHandler(c *gin.Context) { updateLoan(c, true) }

func updateLoan(c *gin.Context, partial bool) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	loan, ok := fetchOwnedLoan(c, user.ID)
	if !ok {
		return
	}
	var req loanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := req.validate(partial, loan); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	req.applyTo(loan)
	if err := db.Save(loan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	invalidateLoanCaches(user.ID)
	c.JSON(http.StatusOK, loan)
}

func deleteLoanHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	loan, ok := fetchOwnedLoan(c, user.ID)
	if !ok {
		return
	}
	if err := db.Delete(loan).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	invalidateLoanCaches(user.ID)
	c.Status(http.StatusNoContent)
}
