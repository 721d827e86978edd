package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"catalog-admin-service/internal/models"
)

// Context keys set by the auth middlewares
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
	ContextUserRoles = "user_roles"
)

// superAdminRole passes every role check
const superAdminRole = "super_admin"

// Claims are the JWT claims issued to admin panel users
type Claims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    code,
			Message: message,
		},
	})
}

// AuthMiddleware validates HS256 bearer tokens signed with jwtSecret and
// stores the caller identity in the gin context
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header is required")
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			abortWithError(c, http.StatusUnauthorized, "INVALID_TOKEN_FORMAT", "Authorization header must be in format: Bearer <token>")
			return
		}

		token, err := jwt.ParseWithClaims(strings.TrimSpace(tokenString), &Claims{}, keyFunc)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || !token.Valid || claims.UserID == "" {
			abortWithError(c, http.StatusUnauthorized, "INVALID_CLAIMS", "Invalid token claims")
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Set(ContextUserRoles, claims.Roles)
		c.Next()
	}
}

// DevelopmentAuthMiddleware trusts X-User-ID and X-User-Roles headers and
// falls back to a fixed admin identity. Never enable in production.
func DevelopmentAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			userID = "00000000-0000-0000-0000-000000000001"
		}
		roles := []string{string(models.UserRoleAdmin)}
		if raw := c.GetHeader("X-User-Roles"); raw != "" {
			roles = roles[:0]
			for _, r := range strings.Split(raw, ",") {
				if r = strings.TrimSpace(r); r != "" {
					roles = append(roles, r)
				}
			}
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserEmail, c.GetHeader("X-User-Email"))
		c.Set(ContextUserRoles, roles)
		c.Next()
	}
}

// RequireAnyRole rejects callers holding none of the given roles
func RequireAnyRole(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextUserRoles)
		if !exists {
			abortWithError(c, http.StatusForbidden, "NO_ROLES", "User roles not found")
			return
		}
		userRoles, ok := value.([]string)
		if !ok {
			abortWithError(c, http.StatusForbidden, "INVALID_ROLES", "Invalid user roles format")
			return
		}

		if !hasAnyRole(userRoles, requiredRoles) {
			abortWithError(c, http.StatusForbidden, "INSUFFICIENT_PERMISSIONS",
				fmt.Sprintf("Required one of roles: %s", strings.Join(requiredRoles, ", ")))
			return
		}
		c.Next()
	}
}

func hasAnyRole(userRoles, requiredRoles []string) bool {
	for _, userRole := range userRoles {
		if userRole == superAdminRole {
			return true
		}
		for _, required := range requiredRoles {
			if userRole == required {
				return true
			}
		}
	}
	return false
}

// UserID returns the authenticated caller id, or "" when unauthenticated
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
