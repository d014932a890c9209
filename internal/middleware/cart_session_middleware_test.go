package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartSessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	auth := NewAuthMiddleware(testJWTSecret, nil)
	router.GET("/cart", auth.OptionalAuthenticate(), CartSession(time.Hour, false), func(c *gin.Context) {
		c.String(http.StatusOK, GetCartSession(c))
	})
	return router
}

func TestCartSession_MintsGuestSession(t *testing.T) {
	router := setupCartSessionRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/cart", nil))

	require.Equal(t, http.StatusOK, w.Code)
	session := w.Body.String()
	assert.NoError(t, uuid.Validate(session))
	assert.Equal(t, session, w.Header().Get(CartSessionHeader))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CartSessionCookie, cookies[0].Name)
	assert.Equal(t, session, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)
}

func TestCartSession_ReusesCookie(t *testing.T) {
	router := setupCartSessionRouter()
	session := uuid.NewString()

	req := httptest.NewRequest("GET", "/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartSessionCookie, Value: session})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, session, w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestCartSession_InvalidCookieIsReplaced(t *testing.T) {
	router := setupCartSessionRouter()

	req := httptest.NewRequest("GET", "/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartSessionCookie, Value: "../../etc/passwd"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEqual(t, "../../etc/passwd", w.Body.String())
	assert.NoError(t, uuid.Validate(w.Body.String()))
}

func TestCartSession_Header(t *testing.T) {
	router := setupCartSessionRouter()
	session := uuid.NewString()

	req := httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set(CartSessionHeader, session)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, session, w.Body.String())

	req = httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set(CartSessionHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "CART_SESSION_INVALID")
}

func TestCartSession_AuthenticatedUser(t *testing.T) {
	router := setupCartSessionRouter()
	userID := uuid.New()
	token, _ := generateTestToken(t, userID, "cart@example.com", time.Hour)

	req := httptest.NewRequest("GET", "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(CartSessionHeader, uuid.NewString())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "user:"+userID.String(), w.Body.String())
}
