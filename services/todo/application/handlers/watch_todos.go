package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/todos/pkg/auth"
	"github.com/ghuser/todos/pkg/errhttp"
	"github.com/ghuser/todos/pkg/httpx"
	"github.com/ghuser/todos/pkg/logger"
	appsvcs "github.com/ghuser/todos/services/todo/application/services"
	"github.com/ghuser/todos/services/todo/domain/models"
)

const (
	// sseRetry is the reconnect delay suggested to EventSource clients.
	sseRetry = 3 * time.Second
	// sseKeepAlive is the interval between comment frames on an idle stream.
	sseKeepAlive = 15 * time.Second
)

// ChangeResponse is the data payload of one server-sent event.
type ChangeResponse struct {
	Type       string        `json:"type"            example:"updated" enums:"created,updated,deleted"`
	TodoID     uuid.UUID     `json:"todo_id"         example:"123e4567-e89b-12d3-a456-426614174000"`
	Todo       *TodoResponse `json:"todo,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"     example:"2024-01-15T10:30:00Z"`
} // @name ChangeResponse

// WatchTodosHandler handles GET /todos/events requests.
type WatchTodosHandler struct {
	svc       *appsvcs.Services
	log       logger.Logger
	keepAlive time.Duration
}

// NewWatchTodosHandler returns a WatchTodosHandler backed by the given services.
func NewWatchTodosHandler(svc *appsvcs.Services, log logger.Logger) *WatchTodosHandler {
	return &WatchTodosHandler{svc: svc, log: log, keepAlive: sseKeepAlive}
}

// Execute streams changes to the caller's todos as server-sent events.
// Each event is named after the change type and carries a ChangeResponse.
//
//	@Summary		Watch todos
//	@Description	Server-sent event stream of created, updated and deleted todos. Clients that get 501 poll GET /todos instead.
//	@Tags			todos
//	@Produce		text/event-stream
//	@Success		200	{object}	ChangeResponse
//	@Failure		401	{object}	ErrorResponse
//	@Failure		501	{object}	ErrorResponse
//	@Security		SessionCookie
//	@Router			/todos/events [get]
func (h *WatchTodosHandler) Execute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID, err := auth.UserIDFromCtx(ctx)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	changes, err := h.svc.Todo.Watch(ctx, ownerID)
	if err != nil {
		errhttp.WriteError(w, r, h.log, err)
		return
	}

	rc := http.NewResponseController(w)
	// The server's WriteTimeout would otherwise cut every stream short.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, "retry: %d\n\n", sseRetry.Milliseconds()); err != nil {
		return
	}
	if err := rc.Flush(); err != nil {
		h.log.WarnContext(ctx, "event stream cannot be flushed", "error", err)
		return
	}

	h.log.DebugContext(ctx, "todo watch started")
	defer h.log.DebugContext(ctx, "todo watch ended")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()
	draining := httpx.Draining(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-draining:
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case c, ok := <-changes:
			if !ok {
				return
			}
			if err := writeChange(w, c); err != nil {
				h.log.WarnContext(ctx, "write todo change", "todo_id", c.TodoID, "error", err)
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeChange(w http.ResponseWriter, c models.Change) error {
	payload := ChangeResponse{
		Type:       string(c.Type),
		TodoID:     c.TodoID,
		OccurredAt: c.OccurredAt.UTC(),
	}
	if c.Todo != nil {
		t := toTodoResponse(c.Todo)
		payload.Todo = &t
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode change: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", c.Type, data)
	return err
}
