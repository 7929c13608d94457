package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/sipit-backend/internal/app/model"
	apperrors "github.com/ikkim/sipit-backend/internal/errors"
	"github.com/ikkim/sipit-backend/pkg/util"
	"gorm.io/gorm"
)

// Context keys for user information
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserNameKey  = "user_name"
)

// UserLookup resolves the token's email to a local user
type UserLookup interface {
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthMiddleware struct {
	jwtSecret string
	issuer    string
	users     UserLookup
}

func NewAuthMiddleware(jwtSecret, issuer string, users UserLookup) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		issuer:    issuer,
		users:     users,
	}
}

// Authenticate validates the identity token and requires a registered user
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.verify(c)
		if !ok {
			return
		}

		log := GetLoggerFromContext(c)
		user, err := m.users.FindByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn("Authenticated identity has no local user", map[string]interface{}{
					"email": claims.Email,
				})
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthUserNotProvisioned, "User not found. Please register first.")
				c.Abort()
				return
			}
			log.Error("Failed to resolve user", err, map[string]interface{}{
				"email": claims.Email,
			})
			apperrors.InternalError(c, "")
			c.Abort()
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserEmailKey, user.Email)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": user.ID,
			"email":   user.Email,
		})

		c.Next()
	}
}

// RequireIdentity validates the identity token only (used by registration)
func (m *AuthMiddleware) RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := m.verify(c)
		if !ok {
			return
		}
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserNameKey, claims.Name)
		c.Next()
	}
}

// OptionalAuthenticate sets user info when a valid token for a known user is present
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Next()
			return
		}

		claims, err := util.ValidateToken(token, m.jwtSecret, m.issuer)
		if err != nil {
			log.Debug("Token validation failed - continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		if user, err := m.users.FindByEmail(c.Request.Context(), claims.Email); err == nil {
			c.Set(UserIDKey, user.ID)
			c.Set(UserEmailKey, user.Email)
		}
		c.Next()
	}
}

// verify extracts and validates the token, writing the 401 response on failure.
// WebSocket clients may pass the token as ?token= instead of a header.
func (m *AuthMiddleware) verify(c *gin.Context) (*util.IdentityClaims, bool) {
	log := GetLoggerFromContext(c)

	var token string
	if header := c.GetHeader("Authorization"); header != "" {
		t, ok := bearerToken(header)
		if !ok {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid authorization header format")
			c.Abort()
			return nil, false
		}
		token = t
	} else if token = c.Query("token"); token == "" {
		log.Warn("Missing authorization header", map[string]interface{}{
			"path": c.Request.URL.Path,
		})
		apperrors.Unauthorized(c, "Authorization header is required")
		c.Abort()
		return nil, false
	}

	claims, err := util.ValidateToken(token, m.jwtSecret, m.issuer)
	if err != nil {
		log.Warn("Token validation failed", map[string]interface{}{
			"path":  c.Request.URL.Path,
			"error": err.Error(),
		})
		if errors.Is(err, util.ErrExpiredToken) {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Token has expired")
		} else {
			apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid or expired token")
		}
		c.Abort()
		return nil, false
	}
	return claims, true
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", false
	}
	id, ok := userID.(string)
	return id, ok
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	s, ok := email.(string)
	return s, ok
}
