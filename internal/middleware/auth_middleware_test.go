package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/internal/app/model"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJWTSecret = "test-jwt-secret-for-middleware"
	testIssuer    = "https://identity.example"
)

type stubUsers map[string]*model.User

func (s stubUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := s[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func setupMiddlewareTest() (*gin.Engine, *AuthMiddleware) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	users := stubUsers{
		"known@example.com": {ID: "user-1", Email: "known@example.com", Name: "Known"},
	}
	return router, NewAuthMiddleware(testJWTSecret, testIssuer, users)
}

func generateTestToken(t *testing.T, email, issuer string, expiry time.Duration) string {
	t.Helper()
	token, err := util.GenerateIdentityToken("sub-1", email, "Known", issuer, testJWTSecret, expiry)
	require.NoError(t, err)
	return token
}

func echoUser(c *gin.Context) {
	userID, _ := GetUserID(c)
	email, _ := GetUserEmail(c)
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "email": email})
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	router, auth := setupMiddlewareTest()
	router.GET("/test", auth.Authenticate(), echoUser)

	tests := []struct {
		name     string
		header   string
		query    string
		wantCode int
		wantErr  string
	}{
		{name: "Valid token", header: "Bearer " + generateTestToken(t, "known@example.com", testIssuer, time.Minute), wantCode: http.StatusOK},
		{name: "Query token", query: "?token=" + generateTestToken(t, "known@example.com", testIssuer, time.Minute), wantCode: http.StatusOK},
		{name: "No token", wantCode: http.StatusUnauthorized, wantErr: apperrors.AuthUnauthorized},
		{name: "Invalid format", header: "Token abc", wantCode: http.StatusUnauthorized, wantErr: apperrors.AuthTokenInvalid},
		{name: "Garbage token", header: "Bearer not-a-jwt", wantCode: http.StatusUnauthorized, wantErr: apperrors.AuthTokenInvalid},
		{name: "Expired token", header: "Bearer " + generateTestToken(t, "known@example.com", testIssuer, -time.Minute), wantCode: http.StatusUnauthorized, wantErr: apperrors.AuthTokenExpired},
		{name: "Wrong issuer", header: "Bearer " + generateTestToken(t, "known@example.com", "https://other.example", time.Minute), wantCode: http.StatusUnauthorized, wantErr: apperrors.AuthTokenInvalid},
		{name: "Unknown user", header: "Bearer " + generateTestToken(t, "new@example.com", testIssuer, time.Minute), wantCode: http.StatusUnauthorized, wantErr: apperrors.AuthUserNotProvisioned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errorCode(t, w))
				return
			}
			assert.Contains(t, w.Body.String(), `"user_id":"user-1"`)
		})
	}
}

func TestAuthMiddleware_RequireIdentity(t *testing.T) {
	router, auth := setupMiddlewareTest()
	router.POST("/register", auth.RequireIdentity(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"email": c.GetString(UserEmailKey), "name": c.GetString(UserNameKey)})
	})

	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	req.Header.Set("Authorization", "Bearer "+generateTestToken(t, "new@example.com", testIssuer, time.Minute))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "new@example.com")
}

func TestAuthMiddleware_OptionalAuthenticate(t *testing.T) {
	router, auth := setupMiddlewareTest()
	router.GET("/test", auth.OptionalAuthenticate(), echoUser)

	tests := []struct {
		name   string
		header string
		wantID string
	}{
		{name: "Guest", wantID: ""},
		{name: "Invalid token", header: "Bearer nope", wantID: ""},
		{name: "Known user", header: "Bearer " + generateTestToken(t, "known@example.com", testIssuer, time.Minute), wantID: "user-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantID, body["user_id"])
		})
	}
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(LoggingMiddleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "given-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "given-id", w.Body.String())
}
