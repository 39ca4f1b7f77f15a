package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newAdminRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin/ping", AdminAuthMiddleware(secret), func(c *gin.Context) {
		subject, _ := AdminSubject(c)
		c.JSON(http.StatusOK, gin.H{"subject": subject})
	})
	return r
}

func TestAdminAuth_ValidToken(t *testing.T) {
	r := newAdminRouter("secret")
	token, err := NewAdminToken("secret", "ops", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ops")
}

func TestAdminAuth_MissingHeader(t *testing.T) {
	r := newAdminRouter("secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuth_WrongSecret(t *testing.T) {
	r := newAdminRouter("secret")
	token, err := NewAdminToken("other-secret", "ops", time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuth_ExpiredToken(t *testing.T) {
	r := newAdminRouter("secret")
	token, err := NewAdminToken("secret", "ops", -time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminAuth_UnconfiguredSecretClosesSurface(t *testing.T) {
	r := newAdminRouter("")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer anything")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}
