package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	apperrors "github.com/asthar/asthar-backend/internal/errors"
	"github.com/asthar/asthar-backend/pkg/util"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Context keys for user information
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserNameKey  = "user_name"
	ClaimsKey    = "claims"
)

// RevocationChecker reports whether a token id has been revoked
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret string
	revoked   RevocationChecker
}

// NewAuthMiddleware builds the middleware; a nil checker skips revocation checks
func NewAuthMiddleware(jwtSecret string, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		revoked:   revoked,
	}
}

var (
	errMissingToken  = errors.New("missing token")
	errInvalidHeader = errors.New("invalid authorization header")
	errRevokedToken  = errors.New("token revoked")
)

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		// WebSocket clients cannot set headers, so they pass the token as a query parameter
		if token := c.Query("token"); token != "" {
			return token, nil
		}
		return "", errMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errInvalidHeader
	}
	return parts[1], nil
}

func (m *AuthMiddleware) verify(c *gin.Context, token string) (*util.Claims, error) {
	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		return nil, err
	}

	if m.revoked != nil && claims.ID != "" {
		revoked, err := m.revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			// revocation is best effort while the blacklist is unreachable
			GetLoggerFromContext(c).Warn("Token revocation check failed", map[string]interface{}{
				"error": err.Error(),
			})
		} else if revoked {
			return nil, errRevokedToken
		}
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims *util.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserNameKey, claims.Name)
	c.Set(ClaimsKey, claims)
}

// Authenticate validates the session token (required)
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, err := bearerToken(c)
		if err != nil {
			log.Warn("Missing or malformed authorization", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			if errors.Is(err, errInvalidHeader) {
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Authorization header must be 'Bearer <token>'")
			} else {
				apperrors.Unauthorized(c, "Authorization header is required")
			}
			c.Abort()
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})

			switch {
			case errors.Is(err, util.ErrExpiredToken):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenExpired, "Your session has expired")
			case errors.Is(err, errRevokedToken):
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenRevoked, "Your session has been signed out")
			default:
				apperrors.RespondWithError(c, http.StatusUnauthorized, apperrors.AuthTokenInvalid, "Invalid session token")
			}
			c.Abort()
			return
		}

		setIdentity(c, claims)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
			"email":   claims.Email,
		})

		c.Next()
	}
}

// OptionalAuthenticate validates the session token if present
// - If token is present and valid: sets user info in context
// - If token is missing or invalid: continues as a guest
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, err := bearerToken(c)
		if err != nil {
			c.Next()
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			log.Debug("Token validation failed - continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUserEmail extracts user email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email, exists := c.Get(UserEmailKey)
	if !exists {
		return "", false
	}
	return email.(string), true
}

// GetClaims returns the validated token claims
func GetClaims(c *gin.Context) (*util.Claims, bool) {
	claims, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	typed, ok := claims.(*util.Claims)
	return typed, ok
}
