package api

import (
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sebastienferry/site-purge/internal/pkg/log"
)

const subjectKey = "subject"

// RequireRole rejects requests without a valid HMAC signed bearer token
// whose roles claim holds the given role.
func RequireRole(secret, role string) gin.HandlerFunc {
	return func(c *gin.Context) {

		header := c.GetHeader("Authorization")
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := parseToken(tokenString, secret)
		if err != nil {
			log.WarnWithFields("rejected token", log.Fields{"error": err, "path": c.FullPath()})
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if !slices.Contains(rolesOf(claims), role) {
			log.WarnWithFields("missing role", log.Fields{"role": role, "path": c.FullPath()})
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}

		subject, _ := claims.GetSubject()
		c.Set(subjectKey, subject)
		c.Next()
	}
}

func parseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid JWT token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func rolesOf(claims jwt.MapClaims) []string {
	var roles []string
	if list, ok := claims["roles"].([]interface{}); ok {
		for _, role := range list {
			if s, ok := role.(string); ok {
				roles = append(roles, s)
			}
		}
	}
	return roles
}
