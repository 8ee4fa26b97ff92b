package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andreyv-dev/ledger-service/cmd/models"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (*mux.Router, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// a single connection keeps the in-memory database alive for the test
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Transaction{}))

	router := mux.NewRouter()
	NewHandler(db).RegisterRoutes(router)
	return router, db
}

func doRequest(t *testing.T, router *mux.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func createTestUser(t *testing.T, db *gorm.DB, username string, balance float64) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@test.com",
		PasswordHash: "$2a$10$test",
		Balance:      balance,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestCreateUser(t *testing.T) {
	router, db := setupTest(t)

	rr := doRequest(t, router, http.MethodPost, "/users", map[string]any{
		"username": "test",
		"email":    "test@test.com",
		"password": "test",
		"balance":  100.0,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotZero(t, resp.ID)

	var stored models.User
	require.NoError(t, db.First(&stored, resp.ID).Error)
	assert.Equal(t, "test", stored.Username)
	assert.Equal(t, 100.0, stored.Balance)

	// password must be stored hashed, never verbatim
	assert.NotEqual(t, "test", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("test")))
}

func TestCreateUserMissingFields(t *testing.T) {
	router, db := setupTest(t)

	rr := doRequest(t, router, http.MethodPost, "/users", map[string]any{
		"username": "test",
		"balance":  100.0,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetUsers(t *testing.T) {
	router, db := setupTest(t)
	createTestUser(t, db, "first", 50)
	createTestUser(t, db, "second", 75)

	rr := doRequest(t, router, http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	var users []models.User
	require.NoError(t, json.Unmarshal([]byte(body), &users))
	require.Len(t, users, 2)
	assert.Equal(t, "first", users[0].Username)
	assert.Equal(t, "second", users[1].Username)

	// the hash never leaves the service
	assert.False(t, strings.Contains(body, "password"))
}

func TestGetUser(t *testing.T) {
	router, db := setupTest(t)
	u := createTestUser(t, db, "single", 10)

	rr := doRequest(t, router, http.MethodGet, "/users/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var got models.User
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "single", got.Username)
}

func TestGetUserNotFound(t *testing.T) {
	router, _ := setupTest(t)

	rr := doRequest(t, router, http.MethodGet, "/users/42", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUpdateUserPartial(t *testing.T) {
	router, db := setupTest(t)
	u := createTestUser(t, db, "before", 100)

	rr := doRequest(t, router, http.MethodPut, "/users/1", map[string]any{
		"email": "after@test.com",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var stored models.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.Equal(t, "after@test.com", stored.Email)
	assert.Equal(t, "before", stored.Username)
	assert.Equal(t, 100.0, stored.Balance)
	assert.Equal(t, u.PasswordHash, stored.PasswordHash)
}

func TestUpdateUserRehashesPassword(t *testing.T) {
	router, db := setupTest(t)
	u := createTestUser(t, db, "rehash", 0)

	rr := doRequest(t, router, http.MethodPut, "/users/1", map[string]any{
		"password": "newsecret",
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var stored models.User
	require.NoError(t, db.First(&stored, u.ID).Error)
	assert.NotEqual(t, u.PasswordHash, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("newsecret")))
}

func TestUpdateUserNotFound(t *testing.T) {
	router, _ := setupTest(t)

	rr := doRequest(t, router, http.MethodPut, "/users/42", map[string]any{
		"username": "ghost",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteUser(t *testing.T) {
	router, db := setupTest(t)
	createTestUser(t, db, "doomed", 0)
	createTestUser(t, db, "survivor", 0)

	rr := doRequest(t, router, http.MethodDelete, "/users/1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var users []models.User
	require.NoError(t, db.Order("id").Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "survivor", users[0].Username)
}

func TestDeleteUserNotFound(t *testing.T) {
	router, _ := setupTest(t)

	rr := doRequest(t, router, http.MethodDelete, "/users/42", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteUserWithTransactionsRejected(t *testing.T) {
	router, db := setupTest(t)
	buyer := createTestUser(t, db, "buyer", 100)
	seller := createTestUser(t, db, "seller", 0)

	tr := models.Transaction{
		Reference:       "ref-1",
		UserID:          buyer.ID,
		SellerID:        seller.ID,
		ItemName:        "book",
		ItemPrice:       10,
		TransactionType: "purchase",
	}
	require.NoError(t, db.Create(&tr).Error)

	for _, id := range []string{"1", "2"} {
		rr := doRequest(t, router, http.MethodDelete, "/users/"+id, nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
	}

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
