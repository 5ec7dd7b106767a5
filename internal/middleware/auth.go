package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const identityKey = "identity"

const (
	RoleUser        = "USER"
	RoleCinemaAdmin = "CINEMA_ADMIN"
	RoleAdmin       = "ADMIN"
)

// Identity is what the token resolves to. CinemaID is only set for
// cinema-scoped admins and limits which bookings they can list.
type Identity struct {
	UserID   string
	Role     string
	CinemaID string
}

// JWTAuth validates the Bearer token and stores the caller's Identity
// in the gin context for handlers to pick up.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid subject"})
			return
		}
		role, _ := claims["role"].(string)
		if role == "" {
			role = RoleUser
		}
		cinemaID, _ := claims["cinema_id"].(string)

		c.Set(identityKey, Identity{UserID: sub, Role: role, CinemaID: cinemaID})
		c.Next()
	}
}

// RequireAdmin allows only admin roles through. Must run after JWTAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := GetIdentity(c)
		if id.Role != RoleAdmin && id.Role != RoleCinemaAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(Identity); ok {
			return id
		}
	}
	return Identity{}
}
