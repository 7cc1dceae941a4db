package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stylescanner/server/internal/database/dbtest"
	"github.com/stylescanner/server/internal/middleware"
	"github.com/stylescanner/server/internal/models"
	"github.com/stylescanner/server/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
	jwt.SetSecret("user-test")
}

func setup(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	db := dbtest.New(t)
	r := gin.New()
	NewHandler(NewService(db)).RegisterRoutes(r.Group("/api"), middleware.Auth())
	return db, r
}

func do(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeAuth(t *testing.T, w *httptest.ResponseRecorder) authResponse {
	t.Helper()
	var out authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRegisterAndLogin(t *testing.T) {
	db, r := setup(t)

	w := do(r, http.MethodPost, "/api/register", "", gin.H{
		"email": "New@Example.com", "password": "secret1", "firstName": "Ada", "lastName": "L",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	reg := decodeAuth(t, w)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "new@example.com", reg.User.Email)
	assert.Equal(t, models.SubscriptionFree, reg.User.SubscriptionStatus)
	assert.NotContains(t, w.Body.String(), "secret1")

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", reg.User.ID).Error)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret1")))

	w = do(r, http.MethodPost, "/api/register", "", gin.H{"email": "new@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPost, "/api/login", "", gin.H{"email": "NEW@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	login := decodeAuth(t, w)
	claims, err := jwt.Parse(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)

	w = do(r, http.MethodPost, "/api/login", "", gin.H{"email": "new@example.com", "password": "wrong!"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
}

func TestRegisterValidation(t *testing.T) {
	_, r := setup(t)
	w := do(r, http.MethodPost, "/api/register", "", gin.H{"email": "short@example.com", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(r, http.MethodPost, "/api/register", "", gin.H{"email": "not-an-email", "password": "123456"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfile(t *testing.T) {
	db, r := setup(t)
	u := dbtest.CreateUser(t, db, "me@example.com", models.SubscriptionActive)
	token, err := jwt.Sign(u.ID, u.Email, jwt.DefaultTTL)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/profile", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/api/profile", "garbage", nil).Code)

	w := do(r, http.MethodPut, "/api/profile", token, gin.H{
		"firstName":   "Grace",
		"preferences": gin.H{"style": "minimal"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodGet, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got userResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Grace", got.FirstName)
	assert.JSONEq(t, `{"style":"minimal"}`, string(got.Preferences))
	assert.Equal(t, models.SubscriptionActive, got.SubscriptionStatus)

	w = do(r, http.MethodPut, "/api/login", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeAuth(t, w).Token)
}

func TestChangePassword(t *testing.T) {
	db, r := setup(t)
	u := dbtest.CreateUser(t, db, "pw@example.com", models.SubscriptionFree)
	token, err := jwt.Sign(u.ID, u.Email, jwt.DefaultTTL)
	require.NoError(t, err)

	w := do(r, http.MethodPut, "/api/profile/password", token, gin.H{"oldPassword": "nope", "newPassword": "another1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/api/profile/password", token, gin.H{"oldPassword": "password123", "newPassword": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/api/profile/password", token, gin.H{"oldPassword": "password123", "newPassword": "another1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/api/login", "", gin.H{"email": "pw@example.com", "password": "another1"})
	assert.Equal(t, http.StatusOK, w.Code)
}
