package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/campuslink/campuslink-backend/internal/common"
	"github.com/campuslink/campuslink-backend/internal/domain"
	"github.com/campuslink/campuslink-backend/internal/service"
	"github.com/campuslink/campuslink-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const (
	claimsKey = "claims"
	actorKey  = "actor"
)

// JWTAuth verifies the Bearer token and stores the claims in the context.
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.ErrorResponse(c, http.StatusUnauthorized, "Missing authorization header", nil)
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization header format", nil)
			c.Abort()
			return
		}

		claims, err := jwtManager.VerifyToken(parts[1])
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, http.StatusUnauthorized, "Token expired", err)
			} else {
				common.ErrorResponse(c, http.StatusUnauthorized, "Invalid token", err)
			}
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ResolveActor maps the authenticated claims to a roster identity.
// Must run after JWTAuth.
func ResolveActor(identity service.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := identity.Resolve(GetClaims(c))
		if err != nil {
			common.FromError(c, err, "failed to resolve identity")
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// GetClaims extracts verified token claims from the context.
func GetClaims(c *gin.Context) *jwt.Claims {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil
	}
	if claims, ok := v.(*jwt.Claims); ok {
		return claims
	}
	return nil
}

// GetActor extracts the resolved actor from the context.
func GetActor(c *gin.Context) domain.Actor {
	v, exists := c.Get(actorKey)
	if !exists {
		return domain.Actor{}
	}
	if actor, ok := v.(domain.Actor); ok {
		return actor
	}
	return domain.Actor{}
}
