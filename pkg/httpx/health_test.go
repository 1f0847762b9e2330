package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ghuser/todos/pkg/httpx"
)

type stubChecker struct{ err error }

func (s *stubChecker) Ping(_ context.Context) error { return s.err }

// hungChecker never answers and ignores its context.
type hungChecker struct{ release chan struct{} }

func (h *hungChecker) Ping(context.Context) error {
	<-h.release
	return nil
}

func serveHealth(t *testing.T, checks httpx.HealthChecks) (int, map[string]string) {
	t.Helper()
	rr := httptest.NewRecorder()
	httpx.HealthHandler(checks).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rr.Code, resp
}

func TestHealthHandler(t *testing.T) {
	down := errors.New("dial tcp: connection refused")
	tests := []struct {
		name       string
		checks     httpx.HealthChecks
		wantStatus int
		want       map[string]string
	}{
		{
			name: "postgres store healthy",
			checks: httpx.HealthChecks{
				Store: "postgres", Database: &stubChecker{}, Redis: &stubChecker{}, EventBus: &stubChecker{},
			},
			wantStatus: http.StatusOK,
			want:       map[string]string{"status": "ok", "store": "postgres", "database": "ok", "redis": "ok", "event_bus": "ok"},
		},
		{
			name: "database down",
			checks: httpx.HealthChecks{
				Store: "postgres", Database: &stubChecker{err: down}, Redis: &stubChecker{}, EventBus: &stubChecker{},
			},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"status": "degraded", "database": "unreachable", "redis": "ok"},
		},
		{
			name: "outbox forwarder stopped",
			checks: httpx.HealthChecks{
				Store: "postgres", Database: &stubChecker{}, Redis: &stubChecker{}, EventBus: &stubChecker{err: down},
			},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"status": "degraded", "event_bus": "unreachable", "database": "ok"},
		},
		{
			name:       "redis store with redis down",
			checks:     httpx.HealthChecks{Store: "redis", Redis: &stubChecker{err: down}},
			wantStatus: http.StatusServiceUnavailable,
			want:       map[string]string{"status": "degraded", "store": "redis", "redis": "unreachable", "database": "disabled"},
		},
		{
			name:       "memory store needs nothing",
			checks:     httpx.HealthChecks{Store: "memory"},
			wantStatus: http.StatusOK,
			want:       map[string]string{"status": "ok", "database": "disabled", "redis": "disabled", "event_bus": "disabled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := serveHealth(t, tt.checks)
			if code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, code)
			}
			for k, v := range tt.want {
				if resp[k] != v {
					t.Errorf("%s: got %q, want %q (response %+v)", k, resp[k], v, resp)
				}
			}
		})
	}
}

func TestHealthHandler_HungDependencyTimesOut(t *testing.T) {
	hung := &hungChecker{release: make(chan struct{})}
	defer close(hung.release)

	start := time.Now()
	code, resp := serveHealth(t, httpx.HealthChecks{Database: &stubChecker{}, Redis: hung})
	elapsed := time.Since(start)

	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if resp["redis"] != "unreachable" || resp["database"] != "ok" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if elapsed > httpx.HealthTimeout+time.Second {
		t.Errorf("health took %s, want about %s", elapsed, httpx.HealthTimeout)
	}
}
