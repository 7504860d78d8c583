package main

import (
	"net/http"
	"strconv"
	"strings"

	"fintrack/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// incomeRequest is the writable field set for Income. Pointers distinguish
// "absent" from "zero" so the same struct serves POST, PUT and PATCH.
type incomeRequest struct {
	SourceName   *string              `json:"source_name"`
	Amount       *decimal.Decimal     `json:"amount"`
	DateReceived *models.Date         `json:"date_received"`
	Status       *models.IncomeStatus `json:"status"`
	Notes        *string              `json:"notes"`
}

func (r *incomeRequest) validate(partial bool) fieldErrors {
	errs := fieldErrors{}
	if !partial {
		if r.SourceName == nil || strings.TrimSpace(*r.SourceName) == "" {
			errs["source_name"] = "this field is required"
		}
		if r.Amount == nil {
			errs["amount"] = "this field is required"
		}
		if r.DateReceived == nil {
			errs["date_received"] = "this field is required"
		}
	} else if r.SourceName != nil && strings.TrimSpace(*r.SourceName) == "" {
		errs["source_name"] = "must not be blank"
	}
	if r.Amount != nil && r.Amount.Cmp(decimal.Zero) <= 0 {
		errs["amount"] = "amount must be greater than 0"
	}
	if r.Status != nil && !r.Status.Valid() {
		errs["status"] = "status must be one of: pending, received"
	}
	return errs
}

func (r *incomeRequest) applyTo(inc *models.Income) {
	if r.SourceName != nil {
		inc.SourceName = *r.SourceName
	}
	if r.Amount != nil {
		inc.Amount = *r.Amount
	}
	if r.DateReceived != nil {
		inc.DateReceived = *r.DateReceived
	}
	if r.Status != nil {
		inc.Status = *r.Status
	}
	if r.Notes != nil {
		inc.Notes = *r.Notes
	}
}

// fetchOwnedIncome resolves the :id path param within the caller's owned
// set. Records of other users surface as not-found.
func fetchOwnedIncome(c *gin.Context, userID uint) (*models.Income, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	var inc models.Income
	if err := db.Where("user_id = ? AND id = ?", userID, id).First(&inc).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return nil, false
	}
	return &inc, true
}

func listIncomeHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	q := db.Model(&models.Income{}).Where("user_id = ?", user.ID)
	q, err := applyIncomeFilters(q, c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := buildOrdering(c, incomeOrderFields, "id")
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
	items := []models.Income{}
	if err := paginate(c, q.Order(order)).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, listEnvelope{Count: int(total), Results: items})
}

func listIncomeCachedHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	items, err := incomeListCache.GetOrLoad(incomeListKey(user.ID), func() ([]models.Income, error) {
		out := []models.Income{}
		err := db.Where("user_id = ?", user.ID).Order("id").Find(&out).Error
		return out, err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, listEnvelope{Count: len(items), Results: items})
}

func createIncomeHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req incomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := req.validate(false); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	inc := models.Income{UserID: user.ID, Status: models.IncomePending}
	req.applyTo(&inc)
	if err := db.Create(&inc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	invalidateIncomeCaches(user.ID)
	c.JSON(http.StatusCreated, inc)
}

func getIncomeHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	inc, ok := fetchOwnedIncome(c, user.ID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, inc)
}

func putIncomeHandler(c *gin.Context)   { updateIncome(c, false) }
func patchIncomeHandler(c *gin.Context) { updateIncome(c, true) }

func updateIncome(c *gin.Context, partial bool) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	inc, ok := fetchOwnedIncome(c, user.ID)
	if !ok {
		return
	}
	var req incomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := req.validate(partial); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	req.applyTo(inc)
	if err := db.Save(inc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	invalidateIncomeCaches(user.ID)
	c.JSON(http.StatusOK, inc)
}

func deleteIncomeHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	inc, ok := fetchOwnedIncome(c, user.ID)
	if !ok {
		return
	}
	if err := db.Delete(inc).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	invalidateIncomeCaches(user.ID)
	c.Status(http.StatusNoContent)
}
