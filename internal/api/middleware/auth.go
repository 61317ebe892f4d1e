package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lendora/auction/internal/domain"
)

// ContextKey constants for gin.Context values set by middleware.
const (
	CtxTenantID = "tenantID"
	CtxUserID   = "userID"
)

// ──────────────────────────────────────────────────────────────────────────────
// JWTMiddleware
// ──────────────────────────────────────────────────────────────────────────────

// JWTMiddleware validates the Bearer token in the Authorization header.
// On success it stores tenantID and userID (both strings) in the gin context.
// Tokens must be HMAC-signed with the shared secret and carry a "tenant_id"
// claim plus the standard "sub" claim.
func JWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": domain.ErrUnauthorized.Error(),
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		tok, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": domain.ErrTokenInvalid.Error(),
			})
			return
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": domain.ErrTokenInvalid.Error(),
			})
			return
		}

		tenantID, _ := claims["tenant_id"].(string)
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "token missing tenant_id claim",
			})
			return
		}
		userID, _ := claims.GetSubject()

		c.Set(CtxTenantID, tenantID)
		c.Set(CtxUserID, userID)
		c.Next()
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers — extract identity from context (for use in handlers)
// ──────────────────────────────────────────────────────────────────────────────

// GetTenantID retrieves the authenticated tenant id from the gin context.
// Returns "" if the middleware was not applied or the value is missing.
func GetTenantID(c *gin.Context) string {
	v, _ := c.Get(CtxTenantID)
	t, _ := v.(string)
	return t
}

// GetUserID retrieves the authenticated user id from the gin context.
func GetUserID(c *gin.Context) string {
	v, _ := c.Get(CtxUserID)
	u, _ := v.(string)
	return u
}
