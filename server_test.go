package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"fintrack/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// setupTestServer wires the full engine against a private in-memory sqlite
// database, so the whole stack runs without Postgres.
func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// one connection keeps the named memory db alive for the whole test
	sqlDB.SetMaxOpenConns(1)
	db = gdb
	migrateDB()
	seedDB()
	initCaches()
	t.Cleanup(cacheJanitor.Stop)
	jwtSecret = []byte("test-secret")
	r := gin.New()
	setupRoutes(r)
	return r
}

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewBuffer(b)
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// registerAndLogin creates a user through the API and returns a bearer token.
func registerAndLogin(t *testing.T, r http.Handler, username string) string {
	t.Helper()
	reg := jsonBody(t, map[string]string{
		"username": username, "email": username + "@example.com",
		"password1": "longenough", "password2": "longenough",
	})
	if rec := performRequest(r, http.MethodPost, "/register", reg, ""); rec.Code != http.StatusCreated {
		t.Fatalf("register %s failed status=%d body=%s", username, rec.Code, rec.Body.String())
	}
	login := jsonBody(t, map[string]string{"username": username, "password": "longenough"})
	rec := performRequest(r, http.MethodPost, "/login", login, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s failed status=%d body=%s", username, rec.Code, rec.Body.String())
	}
	token, _ := decodeJSON(t, rec)["token"].(string)
	if token == "" {
		t.Fatalf("empty token for %s", username)
	}
	return token
}

func testUser(t *testing.T, username string) models.User {
	t.Helper()
	var u models.User
	if err := db.Where("username = ?", username).First(&u).Error; err != nil {
		t.Fatalf("user %s not found: %v", username, err)
	}
	return u
}

func TestRegisterValidation(t *testing.T) {
	r := setupTestServer(t)

	rec := performRequest(r, http.MethodPost, "/register", jsonBody(t, map[string]string{
		"username": "u1", "email": "u1@example.com", "password1": "longenough", "password2": "different1",
	}), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for password mismatch got %d", rec.Code)
	}

	rec = performRequest(r, http.MethodPost, "/register", jsonBody(t, map[string]string{
		"username": "u1", "email": "u1@example.com", "password1": "short", "password2": "short",
	}), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	r := setupTestServer(t)
	for _, path := range []string{"/income/", "/expense/", "/loan/", "/reports/"} {
		if rec := performRequest(r, http.MethodGet, path, nil, ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without token, got %d", path, rec.Code)
		}
	}
	if rec := performRequest(r, http.MethodGet, "/income/", nil, "not-a-jwt"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", rec.Code)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	r := setupTestServer(t)
	registerAndLogin(t, r, "rotator")

	login := jsonBody(t, map[string]string{"username": "rotator", "password": "longenough"})
	rec := performRequest(r, http.MethodPost, "/login", login, "")
	refresh, _ := decodeJSON(t, rec)["refresh_token"].(string)
	if refresh == "" {
		t.Fatal("no refresh token issued")
	}

	rec = performRequest(r, http.MethodPost, "/refresh", jsonBody(t, map[string]string{"refresh_token": refresh}), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed status=%d body=%s", rec.Code, rec.Body.String())
	}
	// the old token is revoked by rotation
	rec = performRequest(r, http.MethodPost, "/refresh", jsonBody(t, map[string]string{"refresh_token": refresh}), "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 reusing rotated refresh token, got %d", rec.Code)
	}
}

func TestIncomeCRUD(t *testing.T) {
	r := setupTestServer(t)
	token := registerAndLogin(t, r, "alice")

	rec := performRequest(r, http.MethodPost, "/income/", jsonBody(t, map[string]interface{}{
		"source_name": "Salary", "amount": 1000, "date_received": "2024-01-01", "status": "received",
	}), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create income failed status=%d body=%s", rec.Code, rec.Body.String())
	}
	created := decodeJSON(t, rec)
	if created["amount"] != "1000" {
		t.Fatalf("expected amount \"1000\", got %v", created["amount"])
	}
	id := int(created["id"].(float64))

	rec = performRequest(r, http.MethodGet, fmt.Sprintf("/income/%d/", id), nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("get income failed status=%d", rec.Code)
	}

	rec = performRequest(r, http.MethodPatch, fmt.Sprintf("/income/%d/", id), jsonBody(t, map[string]interface{}{
		"status": "pending",
	}), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch income failed status=%d body=%s", rec.Code, rec.Body.String())
	}
	if got := decodeJSON(t, rec)["status"]; got != "pending" {
		t.Fatalf("expected patched status pending got %v", got)
	}

	// PUT requires the full writable set
	rec = performRequest(r, http.MethodPut, fmt.Sprintf("/income/%d/", id), jsonBody(t, map[string]interface{}{
		"status": "received",
	}), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for partial PUT got %d", rec.Code)
	}

	rec = performRequest(r, http.MethodDelete, fmt.Sprintf("/income/%d/", id), nil, token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete income failed status=%d", rec.Code)
	}
	rec = performRequest(r, http.MethodGet, fmt.Sprintf("/income/%d/", id), nil, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete got %d", rec.Code)
	}
}

func TestAmountValidation(t *testing.T) {
	r := setupTestServer(t)
	token := registerAndLogin(t, r, "bob")

	for _, amount := range []interface{}{0, -5, "-0.01"} {
		rec := performRequest(r, http.MethodPost, "/income/", jsonBody(t, map[string]interface{}{
			"source_name": "x", "amount": amount, "date_received": "2024-01-01",
		}), token)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for amount %v got %d", amount, rec.Code)
		}
		body := decodeJSON(t, rec)
		errs, _ := body["errors"].(map[string]interface{})
		if _, ok := errs["amount"]; !ok {
			t.Fatalf("expected field error on amount, got %v", body)
		}
	}
}

func TestExpenseDueDatePast(t *testing.T) {
	r := setupTestServer(t)
	token := registerAndLogin(t, r, "carol")

	rec := performRequest(r, http.MethodPost, "/expense/", jsonBody(t, map[string]interface{}{
		"category": "Rent", "amount": 100, "due_date": "2020-01-01",
	}), token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for past due date got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = performRequest(r, http.MethodPost, "/expense/", jsonBody(t, map[string]interface{}{
		"category": "Rent", "amount": 100, "due_date": "2099-01-01",
	}), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed status=%d body=%s", rec.Code, rec.Body.String())
	}
	// partial update of another field leaves the old date untouched
	id := int(decodeJSON(t, rec)["id"].(float64))
	rec = performRequest(r, http.MethodPatch, fmt.Sprintf("/expense/%d/", id), jsonBody(t, map[string]interface{}{
		"status": "pending",
	}), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch without due_date failed status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestOwnerIsolation(t *testing.T) {
	r := setupTestServer(t)
	tokenA := registerAndLogin(t, r, "owner_a")
	tokenB := registerAndLogin(t, r, "owner_b")

	rec := performRequest(r, http.MethodPost, "/income/", jsonBody(t, map[string]interface{}{
		"source_name": "Private", "amount": 42, "date_received": "2024-06-01",
	}), tokenA)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed status=%d", rec.Code)
	}
	id := int(decodeJSON(t, rec)["id"].(float64))

	// forged id access from another user manifests as not-found
	if rec := performRequest(r, http.MethodGet, fmt.Sprintf("/income/%d/", id), nil, tokenB); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-user get got %d", rec.Code)
	}
	if rec := performRequest(r, http.MethodPatch, fmt.Sprintf("/income/%d/", id), jsonBody(t, map[string]interface{}{"amount": 1}), tokenB); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-user patch got %d", rec.Code)
	}
	if rec := performRequest(r, http.MethodDelete, fmt.Sprintf("/income/%d/", id), nil, tokenB); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for cross-user delete got %d", rec.Code)
	}

	// B's list does not contain A's record
	rec = performRequest(r, http.MethodGet, "/income/", nil, tokenB)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed status=%d", rec.Code)
	}
	if count := decodeJSON(t, rec)["count"].(float64); count != 0 {
		t.Fatalf("expected empty list for user B, count=%v", count)
	}
}

func TestCachedListInvalidatedOnWrite(t *testing.T) {
	r := setupTestServer(t)
	token := registerAndLogin(t, r, "cacher")

	rec := performRequest(r, http.MethodGet, "/income/cached/", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("cached list failed status=%d", rec.Code)
	}
	first := rec.Body.String()

	// repeated read within the TTL is served from cache, byte-identical
	rec = performRequest(r, http.MethodGet, "/income/cached/", nil, token)
	if rec.Body.String() != first {
		t.Fatalf("expected identical cached response, got %s then %s", first, rec.Body.String())
	}

	rec = performRequest(r, http.MethodPost, "/income/", jsonBody(t, map[string]interface{}{
		"source_name": "New", "amount": 10, "date_received": "2024-03-03",
	}), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create failed status=%d", rec.Code)
	}

	// the write invalidated the cache, so the next read is fresh
	rec = performRequest(r, http.MethodGet, "/income/cached/", nil, token)
	if count := decodeJSON(t, rec)["count"].(float64); count != 1 {
		t.Fatalf("expected fresh cached list with 1 item, count=%v", count)
	}
}
