package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
)

type stubAuthenticator struct {
	authenticateFn func(ctx context.Context, token string) (*ports.Claims, error)
}

func (s stubAuthenticator) Authenticate(ctx context.Context, token string) (*ports.Claims, error) {
	return s.authenticateFn(ctx, token)
}

func acceptToken(want string, claims *ports.Claims) stubAuthenticator {
	return stubAuthenticator{authenticateFn: func(_ context.Context, token string) (*ports.Claims, error) {
		if token != want {
			return nil, domain.ErrUnauthorized
		}
		return claims, nil
	}}
}

func runAuth(t *testing.T, authn Authenticator, header string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth(authn)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	authn := acceptToken("good", &ports.Claims{UserID: "u1", Role: domain.RoleAdmin})
	handler := Auth(authn)(func(c echo.Context) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			t.Fatalf("claims not set")
		}
		if claims.UserID != "u1" || claims.Role != domain.RoleAdmin {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	authn := stubAuthenticator{authenticateFn: func(_ context.Context, token string) (*ports.Claims, error) {
		if token == "revoked" {
			return nil, domain.ErrTokenRevoked
		}
		return nil, domain.ErrUnauthorized
	}}

	for name, header := range map[string]string{
		"missing header": "",
		"wrong scheme":   "Token abc",
		"empty bearer":   "Bearer ",
		"invalid token":  "Bearer not-a-token",
		"revoked token":  "Bearer revoked",
	} {
		rec, called := runAuth(t, authn, header)
		if called {
			t.Fatalf("%s: should not reach next", name)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}
