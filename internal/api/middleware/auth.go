package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
)

const claimsKey = "claims"

// Authenticator verifies a bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*ports.Claims, error)
}

// Auth validates the bearer token and injects its claims into the context.
func Auth(authn Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := authn.Authenticate(c.Request().Context(), strings.TrimSpace(parts[1]))
			switch {
			case errors.Is(err, domain.ErrTokenRevoked):
				return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
			case errors.Is(err, domain.ErrUnauthorized):
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token failed")
			case err != nil:
				return err
			}

			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// ClaimsFrom returns the claims injected by Auth.
func ClaimsFrom(c echo.Context) (*ports.Claims, bool) {
	claims, ok := c.Get(claimsKey).(*ports.Claims)
	return claims, ok && claims != nil
}
