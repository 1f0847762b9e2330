// Package events is the outbox that carries todo changes from the API to the
// worker, built on Watermill's PostgreSQL transport.
//
// The API publishes with PublishTx inside the same transaction that writes the
// todo row, so a todo.created/updated/deleted event exists exactly when the
// write committed. In forwarder mode the event first lands in an internal
// queue table and the Forwarder daemon relays it to its topic.
//
// The worker consumes with Subscribe. All worker instances share one
// ConsumerGroup (<service>-consumer), so each event is projected once.
//
// Handlers must be idempotent. A failing handler is retried with exponential
// backoff; once retries run out the message is Nacked and redelivered later.
// Handlers return Permanent(err) for messages no retry can fix; those are
// acknowledged and reported on the error channel instead.
//
// The publisher's trace context travels in message metadata, so a worker span
// continues the trace of the HTTP request that caused the write.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/todos/pkg/config"
	"github.com/ghuser/todos/pkg/logger"
)

const (
	maxRetries      = 3
	retryBaseDelay  = time.Second
	shutdownTimeout = 30 * time.Second
	forwarderTopic  = "_forwarder_queue" // internal outbox topic for the Forwarder daemon
)

// Metadata keys set on every message built with NewMessage.
const (
	MetadataContentType = "content_type"
	MetadataEventID     = "event_id"
)

// EventBus publishes todo events transactionally and dispatches them to
// subscribers. It uses FOR UPDATE SKIP LOCKED under the hood for
// concurrent-safe delivery.
type EventBus struct {
	subscriber   *watermillsql.Subscriber
	fwd          *forwarder.Forwarder // non-nil only once StartForwarder ran
	forwarding   atomic.Bool
	db           *sql.DB
	log          logger.Logger
	wg           sync.WaitGroup
	useForwarder bool
}

// NewEventBus builds a bus over the process's database pool. The pool is
// borrowed: Close leaves it open for its owner.
//
// All instances with the same cfg.ServiceName share a ConsumerGroup, so each
// message is processed by exactly one instance (load-balanced, not broadcast).
func NewEventBus(db *sql.DB, cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(db, cfg, log, false)
}

// NewEventBusWithForwarder creates an EventBus whose PublishTx writes to the
// durable forwarder queue. Call StartForwarder(ctx) to begin relaying queued
// events to their topics.
func NewEventBusWithForwarder(db *sql.DB, cfg *config.Config, log logger.Logger) (*EventBus, error) {
	return newEventBus(db, cfg, log, true)
}

func newEventBus(db *sql.DB, cfg *config.Config, log logger.Logger, useForwarder bool) (*EventBus, error) {
	sub, err := watermillsql.NewSubscriber(
		db,
		watermillsql.SubscriberConfig{
			SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
			ConsumerGroup:    cfg.ServiceName + "-consumer",
		},
		&slogAdapter{log: log},
	)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}

	return &EventBus{
		subscriber:   sub,
		db:           db,
		log:          log,
		useForwarder: useForwarder,
	}, nil
}

// StartForwarder starts the background Forwarder daemon that reads messages from
// the internal forwarder queue and publishes them to their target topics.
// Must only be called once on an EventBus created with NewEventBusWithForwarder.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.useForwarder {
		return fmt.Errorf("events: StartForwarder called on non-forwarder EventBus")
	}
	if q.fwd != nil {
		return fmt.Errorf("events: forwarder already started")
	}

	wlog := &slogAdapter{log: q.log}

	fwdSub, err := watermillsql.NewSubscriber(
		q.db,
		watermillsql.SubscriberConfig{
			SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
			ConsumerGroup:    "todos-forwarder",
		},
		wlog,
	)
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}

	// Creates the target topic tables on first use; PublishTx never does.
	targetPub, err := watermillsql.NewPublisher(
		q.db,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: true,
		},
		wlog,
	)
	if err != nil {
		_ = fwdSub.Close()
		return fmt.Errorf("events: new forwarder target publisher: %w", err)
	}

	fwd, err := forwarder.NewForwarder(fwdSub, targetPub, wlog, forwarder.Config{
		ForwarderTopic: forwarderTopic,
	})
	if err != nil {
		_ = targetPub.Close()
		_ = fwdSub.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}

	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.forwarding.Store(true)
		defer q.forwarding.Store(false)

		q.log.InfoContext(ctx, "events: forwarder started")
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
		} else {
			q.log.InfoContext(ctx, "events: forwarder stopped")
		}
	}()

	select {
	case <-fwd.Running():
	case <-ctx.Done():
		return fmt.Errorf("events: context cancelled waiting for forwarder: %w", ctx.Err())
	}

	return nil
}

// NewMessage encodes payload as a JSON message. eventID becomes both the
// Watermill message UUID and the event_id metadata, so consumers can
// deduplicate redeliveries.
func NewMessage(eventID string, payload any) (*message.Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events: encode payload: %w", err)
	}
	msg := message.NewMessage(eventID, body)
	msg.Metadata.Set(MetadataContentType, "application/json")
	msg.Metadata.Set(MetadataEventID, eventID)
	return msg, nil
}

// PublishTx publishes msgs to topic inside tx, so they are committed or
// discarded together with the caller's writes. The trace context of ctx is
// carried in each message's metadata.
func (q *EventBus) PublishTx(ctx context.Context, tx *sql.Tx, topic string, msgs ...*message.Message) error {
	pub, err := q.txPublisher(tx)
	if err != nil {
		return err
	}
	injectTrace(ctx, msgs)
	if err := pub.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// txPublisher returns a Publisher bound to tx. In forwarder mode messages are
// wrapped as envelopes for the forwarder queue. The schema is created by
// StartForwarder and the subscribers, never inside a request transaction.
func (q *EventBus) txPublisher(tx *sql.Tx) (message.Publisher, error) {
	pub, err := watermillsql.NewPublisher(
		tx,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: false,
		},
		&slogAdapter{log: q.log},
	)
	if err != nil {
		return nil, fmt.Errorf("events: new tx publisher: %w", err)
	}
	if q.useForwarder {
		return forwarder.NewPublisher(pub, forwarder.PublisherConfig{
			ForwarderTopic: forwarderTopic,
		}), nil
	}
	return pub, nil
}

func injectTrace(ctx context.Context, msgs []*message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for _, msg := range msgs {
		for k, v := range carrier {
			msg.Metadata.Set(k, v)
		}
	}
}

func extractTrace(ctx context.Context, msg *message.Message) context.Context {
	carrier := propagation.MapCarrier{}
	for k, v := range msg.Metadata {
		carrier[k] = v
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// Subscribe registers handler to process messages from topic asynchronously.
// The handler receives a context with the publisher's trace restored.
//
// Ack/Nack is managed by the bus:
//   - handler returns nil              → Ack
//   - handler returns Permanent(err)   → Ack, error reported
//   - handler returns any other error  → retried up to 3× with backoff (1s, 2s, 4s),
//     then Nack (redelivered) and the error reported
//
// The returned error channel is buffered (capacity 100). Callers must drain it.
// All in-flight handlers complete before Close() returns.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler func(context.Context, *message.Message) error) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, 100)

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)

		for msg := range ch {
			msgCtx := extractTrace(ctx, msg)
			err := retryWithBackoff(msgCtx, msg, handler, maxRetries, retryBaseDelay, q.log)
			if err == nil {
				msg.Ack()
				continue
			}

			if IsPermanent(err) {
				msg.Ack()
			} else {
				msg.Nack()
			}
			select {
			case errCh <- fmt.Errorf("%s message %s: %w", topic, msg.UUID, err):
			default:
				q.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
					"error", err, "topic", topic, "message_id", msg.UUID)
			}
		}
	}()

	return errCh, nil
}

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as one redelivery cannot fix, such as an undecodable
// payload. The bus stops retrying and acknowledges the message.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// IsPermanent reports whether err, or any error it wraps, came from Permanent.
func IsPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// retryWithBackoff calls handler up to maxRetries times with exponential backoff.
// Returns nil on first success; a permanent error is returned at once; otherwise
// the last error after all retries are spent.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler func(context.Context, *message.Message) error,
	maxRetries int,
	baseDelay time.Duration,
	log logger.Logger,
) error {
	delay := baseDelay
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if IsPermanent(err) {
			return err
		}
		if attempt < maxRetries {
			log.WarnContext(ctx, "events: handler failed, retrying",
				"message_id", msg.UUID,
				"attempt", attempt,
				"max_retries", maxRetries,
				"next_delay", delay,
				"error", err,
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}
	return fmt.Errorf("events: handler failed after %d retries: %w", maxRetries, err)
}

// Ping reports whether events can flow: the database answers and, in forwarder
// mode, the relay daemon is still running.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	if q.useForwarder && !q.forwarding.Load() {
		return errors.New("events: forwarder not running")
	}
	return nil
}

// Close stops the subscriber and the forwarder, then waits up to 30 s for
// in-flight handlers. The borrowed database pool stays open.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}

	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers to complete")
	}
	return nil
}

// slogAdapter bridges logger.Logger to watermill.LoggerAdapter.
// Watermill's trace level is dropped; it logs every poll of the outbox table.
type slogAdapter struct{ log logger.Logger }

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(string, watermill.LogFields) {}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
