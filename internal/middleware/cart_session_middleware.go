package middleware

import (
	"net/http"
	"time"

	"github.com/asthar/asthar-backend/internal/app/service"
	apperrors "github.com/asthar/asthar-backend/internal/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	CartSessionHeader = "X-Cart-Session"
	CartSessionCookie = "cart_session"
	CartSessionKey    = "cart_session"
)

// CartSession resolves which cart the request addresses. Signed-in users
// always use their own cart; guests are identified by header or cookie and
// get a fresh session id when they have none.
func CartSession(cookieTTL time.Duration, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID, ok := GetUserID(c); ok {
			c.Set(CartSessionKey, service.UserCartSession(userID))
			c.Next()
			return
		}

		if header := c.GetHeader(CartSessionHeader); header != "" {
			if _, err := uuid.Parse(header); err != nil {
				GetLoggerFromContext(c).Warn("Invalid cart session header", map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				apperrors.BadRequest(c, apperrors.CartSessionBad, "Cart session must be a UUID")
				c.Abort()
				return
			}
			c.Set(CartSessionKey, header)
			c.Next()
			return
		}

		session, err := c.Cookie(CartSessionCookie)
		if err != nil || uuid.Validate(session) != nil {
			session = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(CartSessionCookie, session, int(cookieTTL.Seconds()), "/", "", secureCookie, true)
		}

		c.Header(CartSessionHeader, session)
		c.Set(CartSessionKey, session)
		c.Next()
	}
}

// GetCartSession returns the cart session resolved by CartSession
func GetCartSession(c *gin.Context) string {
	return c.GetString(CartSessionKey)
}
