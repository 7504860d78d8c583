package main

import (
	"fmt"
	"time"

	"fintrack/models"
	"fintrack/pkg/cache"
)

// Cached reads expire after an hour; writes invalidate eagerly, so the TTL
// is only a backstop.
const cacheTTL = time.Hour

var (
	incomeListCache  *cache.Store[[]models.Income]
	expenseListCache *cache.Store[[]models.Expense]
	loanListCache    *cache.Store[[]models.Loan]
	reportCache      *cache.Store[ReportPayload]
	cacheJanitor     *cache.Janitor
)

func initCaches() {
	incomeListCache = cache.NewStore[[]models.Income](cacheTTL)
	expenseListCache = cache.NewStore[[]models.Expense](cacheTTL)
	loanListCache = cache.NewStore[[]models.Loan](cacheTTL)
	reportCache = cache.NewStore[ReportPayload](cacheTTL)
	cacheJanitor = cache.NewJanitor(incomeListCache, expenseListCache, loanListCache, reportCache)
	cacheJanitor.Start(10 * time.Minute)
}

func incomeListKey(userID uint) string  { return fmt.Sprintf("income_list_%d", userID) }
func expenseListKey(userID uint) string { return fmt.Sprintf("expense_list_%d", userID) }
func loanListKey(userID uint) string    { return fmt.Sprintf("loan_list_%d", userID) }

func reportKey(userID uint, start, end string) string {
	if start == "" {
		start = "none"
	}
	if end == "" {
		end = "none"
	}
	return fmt.Sprintf("financial_report_%d_%s_%s", userID, start, end)
}

func reportKeyPrefix(userID uint) string {
	return fmt.Sprintf("financial_report_%d_", userID)
}

// Every write path calls the matching invalidator before responding, so a
// subsequent cached read reloads from the database.

func invalidateIncomeCaches(userID uint) {
	incomeListCache.Delete(incomeListKey(userID))
	reportCache.DeletePrefix(reportKeyPrefix(userID))
}

func invalidateExpenseCaches(userID uint) {
	expenseListCache.Delete(expenseListKey(userID))
	reportCache.DeletePrefix(reportKeyPrefix(userID))
}

func invalidateLoanCaches(userID uint) {
	loanListCache.Delete(loanListKey(userID))
	reportCache.DeletePrefix(reportKeyPrefix(userID))
}
