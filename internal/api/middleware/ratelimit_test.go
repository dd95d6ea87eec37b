package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_PerIP(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	e := echo.New()
	handler := rl.Middleware()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := handler(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := hit("10.0.0.1"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}
	rec := hit("10.0.0.1")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", rec.Header().Get("Retry-After"))
	}

	if rec := hit("10.0.0.2"); rec.Code != http.StatusOK {
		t.Fatalf("other clients must not be limited, got %d", rec.Code)
	}

	now = now.Add(time.Second)
	if rec := hit("10.0.0.1"); rec.Code != http.StatusOK {
		t.Fatalf("expected refill after one second, got %d", rec.Code)
	}
}
