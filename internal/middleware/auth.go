package middleware

import (
	"errors"
	"net/http"

	"taskmanager/internal/apierror"
	"taskmanager/internal/auth"
	"taskmanager/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	ClaimsKey = "claims"
)

// JWTAuth validates the Bearer token on every protected route.
func JWTAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := tokens.Verify(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrMissingToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token requerido"))
			case errors.Is(err, auth.ErrMalformedToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token mal formado"))
			case errors.Is(err, auth.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalido o expirado"))
			default:
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Err(err).
					Msg("token verification failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(internalErrorMsg))
			}
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireRole rejects requests whose token role is not in the allowed list.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		claims, ok := c.MustGet(ClaimsKey).(*auth.Claims)
		if !ok || !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Permisos insuficientes"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *auth.Claims {
	claims, _ := c.MustGet(ClaimsKey).(*auth.Claims)
	return claims
}

// GetIdentity returns the caller identity of an authenticated request.
func GetIdentity(c *gin.Context) auth.Identity {
	return GetClaims(c).Identity()
}
