package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "kiosk-test-secret"
	testRole   = "kiosk-admin"
)

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims AdminClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(roles ...string) AdminClaims {
	return AdminClaims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "operator-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func adminRouter(secret string) *gin.Engine {
	router := gin.New()
	router.GET("/admin", RequireAdmin(secret, testRole), func(c *gin.Context) {
		claims := c.MustGet(ClaimsKey).(*AdminClaims)
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	})
	return router
}

func TestRequireAdmin(t *testing.T) {
	expired := validClaims(testRole)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExpiry := validClaims(testRole)
	noExpiry.ExpiresAt = nil

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "missing header", header: "", status: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", status: http.StatusUnauthorized},
		{name: "malformed token", header: "Bearer not-a-jwt", status: http.StatusUnauthorized},
		{name: "wrong secret", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, "other", validClaims(testRole)), status: http.StatusUnauthorized},
		{name: "wrong algorithm", header: "Bearer " + signToken(t, jwt.SigningMethodHS512, testSecret, validClaims(testRole)), status: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, expired), status: http.StatusUnauthorized},
		{name: "no expiry", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, noExpiry), status: http.StatusUnauthorized},
		{name: "missing role", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, validClaims("viewer")), status: http.StatusForbidden},
		{name: "admin", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, validClaims("viewer", testRole)), status: http.StatusOK},
	}

	router := adminRouter(testSecret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequireAdmin_NotConfigured(t *testing.T) {
	router := adminRouter("")

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, validClaims(testRole)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminClaims_HasRole(t *testing.T) {
	claims := validClaims("a", "b")
	assert.True(t, claims.HasRole("b"))
	assert.False(t, claims.HasRole("c"))
}
