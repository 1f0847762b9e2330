package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// newTestLogger creates a Logger backed by traceHandler writing to buf.
func newTestLogger(buf *bytes.Buffer) Logger {
	sl := slog.New(&traceHandler{slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})})
	return &slogLogger{Logger: sl}
}

func setupTracer() *sdktrace.TracerProvider {
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp
}

func parseLastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var last string
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			last = lines[i]
			break
		}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("failed to parse log line %q: %v", last, err)
	}
	return m
}

func TestTraceHandler_TraceFields(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	traced, span := otel.Tracer("test").Start(context.Background(), "GET /api/todos")
	defer span.End()

	tests := []struct {
		name      string
		ctx       context.Context
		log       func(Logger, context.Context)
		wantTrace bool
	}{
		{"info with span", traced, func(l Logger, ctx context.Context) { l.InfoContext(ctx, "todo listed") }, true},
		{"info without span", context.Background(), func(l Logger, ctx context.Context) { l.InfoContext(ctx, "todo listed") }, false},
		{"error with span", traced, func(l Logger, ctx context.Context) {
			l.ErrorContext(ctx, "todo update failed", "error", errors.New("boom"), "todo_id", "123")
		}, true},
		{"bound attributes keep tracing", traced, func(l Logger, ctx context.Context) {
			l.With("owner_id", "u1").WarnContext(ctx, "todo not owned")
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(newTestLogger(&buf), tt.ctx)

			entry := parseLastLine(t, &buf)
			_, hasTrace := entry["trace_id"]
			_, hasSpan := entry["span_id"]
			if hasTrace != tt.wantTrace || hasSpan != tt.wantTrace {
				t.Errorf("trace_id present=%v span_id present=%v, want %v", hasTrace, hasSpan, tt.wantTrace)
			}
			if tt.wantTrace && entry["trace_id"] != span.SpanContext().TraceID().String() {
				t.Errorf("unexpected trace_id %v", entry["trace_id"])
			}
		})
	}
}

// TestMiddleware_RequestLine verifies one request log line carries the chi
// request_id, the route template and the trace started by the tracing middleware.
func TestMiddleware_RequestLine(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	var buf bytes.Buffer
	log := newTestLogger(&buf)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx, span := otel.Tracer("test").Start(req.Context(), "http")
			defer span.End()
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Use(Middleware(log))
	r.Get("/api/todos/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/todos/7c1e6a52-0000-4000-8000-000000000000", http.NoBody)
	r.ServeHTTP(httptest.NewRecorder(), req)

	entry := parseLastLine(t, &buf)
	if _, ok := entry["request_id"]; !ok {
		t.Error("expected request_id in request log")
	}
	if _, ok := entry["trace_id"]; !ok {
		t.Error("expected trace_id in request log")
	}
	if entry["route"] != "/api/todos/{id}" {
		t.Errorf("expected route template, got %v", entry["route"])
	}
	if entry["status"] != float64(http.StatusNotFound) {
		t.Errorf("expected status 404, got %v", entry["status"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("expected INFO for a client error, got %v", entry["level"])
	}
}

// TestNestedSpans verifies same trace_id but different span_ids for parent/child.
func TestNestedSpans(t *testing.T) {
	tp := setupTracer()
	defer tp.Shutdown(context.Background()) //nolint:errcheck

	var buf bytes.Buffer
	log := newTestLogger(&buf)
	tracer := otel.Tracer("test")

	ctx, parent := tracer.Start(context.Background(), "parent")
	log.InfoContext(ctx, "parent log")
	parentEntry := parseLastLine(t, &buf)
	buf.Reset()

	ctx, child := tracer.Start(ctx, "child")
	log.InfoContext(ctx, "child log")
	childEntry := parseLastLine(t, &buf)

	child.End()
	parent.End()

	if parentEntry["trace_id"] != childEntry["trace_id"] {
		t.Errorf("expected same trace_id: %v vs %v", parentEntry["trace_id"], childEntry["trace_id"])
	}
	if parentEntry["span_id"] == childEntry["span_id"] {
		t.Error("expected different span_ids for parent and child")
	}
}
