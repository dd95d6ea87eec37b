package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestClient_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewClient(reg)

	c.ObserveRequest("GET", "/vehicles/{id}", OutcomeSuccess, 20*time.Millisecond)
	c.ObserveRequest("GET", "/vehicles/{id}", OutcomeSuccess, 30*time.Millisecond)
	c.ObserveRequest("POST", "/auth/login", OutcomeStatus, time.Millisecond)

	if got := testutil.ToFloat64(c.requests.WithLabelValues("GET", "/vehicles/{id}", OutcomeSuccess)); got != 2 {
		t.Fatalf("requests_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.requests.WithLabelValues("POST", "/auth/login", OutcomeStatus)); got != 1 {
		t.Fatalf("requests_total = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(c.duration); n != 2 {
		t.Fatalf("expected 2 duration series, got %d", n)
	}
}

func TestNilCollectorsAreNoops(t *testing.T) {
	var c *Client
	c.ObserveRequest("GET", "/x", OutcomeSuccess, time.Second)

	var b *Backend
	b.AuthEvent("login", nil)
	b.StatusTransition("accepted")
	b.Uploaded("documents", 2)
}

func TestBackend_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := NewBackend(reg)

	b.AuthEvent("login", nil)
	b.AuthEvent("login", errors.New("bad password"))
	b.Uploaded("documents", 3)
	b.StatusTransition("completed")

	if got := testutil.ToFloat64(b.authEvents.WithLabelValues("login", "failed")); got != 1 {
		t.Fatalf("failed logins = %v, want 1", got)
	}
	if got := testutil.ToFloat64(b.uploads.WithLabelValues("documents")); got != 3 {
		t.Fatalf("uploads = %v, want 3", got)
	}
	if got := testutil.ToFloat64(b.statusTransitions.WithLabelValues("completed")); got != 1 {
		t.Fatalf("transitions = %v, want 1", got)
	}
}
