package httpx

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// HealthTimeout bounds each dependency check of the health endpoint.
const HealthTimeout = 2 * time.Second

// HealthChecker is satisfied by any infrastructure dependency that exposes
// a Ping method (database.Database, RedisClient, EventBus all qualify).
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HealthChecks lists the dependencies of the configured todo store.
// A nil checker is reported as "disabled" and never degrades the status; the
// memory todo store runs without a database or event bus.
type HealthChecks struct {
	Store    string
	Database HealthChecker
	Redis    HealthChecker
	EventBus HealthChecker
}

type healthResponse struct {
	Status   string `json:"status"`
	Store    string `json:"store,omitempty"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	EventBus string `json:"event_bus"`
}

// HealthHandler checks every dependency concurrently and answers 503 if any
// of them fails or does not answer within HealthTimeout.
func HealthHandler(checks HealthChecks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), HealthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Store: checks.Store}
		var g errgroup.Group
		g.Go(func() error { resp.Database = check(ctx, checks.Database); return nil })
		g.Go(func() error { resp.Redis = check(ctx, checks.Redis); return nil })
		g.Go(func() error { resp.EventBus = check(ctx, checks.EventBus); return nil })
		_ = g.Wait()

		status := http.StatusOK
		for _, s := range []string{resp.Database, resp.Redis, resp.EventBus} {
			if s == "unreachable" {
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
			}
		}
		JSON(w, status, resp)
	}
}

func check(ctx context.Context, c HealthChecker) string {
	if c == nil {
		return "disabled"
	}
	errc := make(chan error, 1)
	go func() { errc <- c.Ping(ctx) }()
	select {
	case err := <-errc:
		if err != nil {
			return "unreachable"
		}
		return "ok"
	case <-ctx.Done():
		return "unreachable"
	}
}
