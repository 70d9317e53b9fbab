package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/Numffy/jumping-park-app-sub000/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// ClaimsKey is the gin context key holding validated admin claims
const ClaimsKey = "claims"

// AdminClaims are the claims carried by an operator token
type AdminClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims grant the given role
func (c *AdminClaims) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// RequireAdmin validates an HS256 bearer token and checks it carries the admin role.
// With an empty secret every request is rejected.
func RequireAdmin(secret, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Admin access is not configured"})
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		claims, err := parseAdminToken(parts[1], secret)
		if err != nil {
			observability.Logger().Warn("rejected admin token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if !claims.HasRole(role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin privileges required"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func parseAdminToken(token, secret string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	return claims, nil
}
