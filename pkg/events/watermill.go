// Package events carries item domain events from the API to background
// workers over PostgreSQL, using Watermill's SQL transport.
//
// Writers publish inside their own database transaction (PublishTx), so an
// event exists if and only if the write it describes committed. In forwarder
// mode those messages land in an outbox topic first and the Forwarder daemon,
// run by the API process, moves them to their real topic.
//
// Subscribers sharing a ConsumerGroup split the stream: each message is
// handled by one instance. Handlers must be idempotent; a failing handler is
// retried with exponential backoff and the message is Nacked once retries
// run out.
//
// OTel trace context travels in message metadata from the publishing request
// to the handler.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/ghuser/inventory/pkg/config"
	"github.com/ghuser/inventory/pkg/logger"
)

const (
	maxRetries      = 3
	retryBaseDelay  = time.Second
	shutdownTimeout = 30 * time.Second
	forwarderTopic  = "_inventory_outbox"
)

// Options tunes an EventBus.
type Options struct {
	// ConsumerGroup names the subscriber group. Defaults to
	// "<ServiceName>-consumer".
	ConsumerGroup string
	// Forwarder routes published messages through the outbox topic. The
	// process that subscribes must call StartForwarder.
	Forwarder bool
}

// EventBus publishes and consumes item events stored in PostgreSQL.
// Delivery uses FOR UPDATE SKIP LOCKED, so competing consumers are safe.
type EventBus struct {
	subscriber   *watermillsql.Subscriber
	fwd          *forwarder.Forwarder
	db           *sql.DB
	log          logger.Logger
	wg           sync.WaitGroup
	useForwarder bool
}

// NewEventBus opens its own connection pool on cfg.DatabaseURL and prepares
// a subscriber. Watermill creates its tables on first use.
func NewEventBus(cfg *config.Config, log logger.Logger, opts Options) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}

	group := opts.ConsumerGroup
	if group == "" {
		group = cfg.ServiceName + "-consumer"
	}

	sub, err := newSubscriber(db, group, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &EventBus{
		subscriber:   sub,
		db:           db,
		log:          log,
		useForwarder: opts.Forwarder,
	}, nil
}

func newSubscriber(db *sql.DB, group string, log logger.Logger) (*watermillsql.Subscriber, error) {
	sub, err := watermillsql.NewSubscriber(
		db,
		watermillsql.SubscriberConfig{
			SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
			OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
			InitializeSchema: true,
			ConsumerGroup:    group,
		},
		&slogAdapter{log: log},
	)
	if err != nil {
		return nil, fmt.Errorf("events: new subscriber %s: %w", group, err)
	}
	return sub, nil
}

// InitSchema creates the Watermill tables for topics so that transactional
// publishers, which never create tables, can write to them.
func (q *EventBus) InitSchema(ctx context.Context, topics ...string) error {
	if q.useForwarder {
		topics = append(topics, forwarderTopic)
	}
	for _, topic := range topics {
		if err := q.subscriber.SubscribeInitialize(topic); err != nil {
			return fmt.Errorf("events: init schema for %s: %w", topic, err)
		}
	}
	q.log.DebugContext(ctx, "events: schema ready", "topics", topics)
	return nil
}

// StartForwarder runs the daemon that drains the outbox topic into the
// target topics. Only valid in forwarder mode, and only once.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.useForwarder {
		return fmt.Errorf("events: StartForwarder called on non-forwarder EventBus")
	}
	if q.fwd != nil {
		return fmt.Errorf("events: forwarder already started")
	}

	wlog := &slogAdapter{log: q.log}

	fwdSub, err := newSubscriber(q.db, "forwarder-consumer", q.log)
	if err != nil {
		return err
	}
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

// PublishTx publishes msgs to topic as part of tx. The messages become
// visible to subscribers only if tx commits. Trace context from ctx is
// copied into each message's metadata.
func (q *EventBus) PublishTx(ctx context.Context, tx *sql.Tx, topic string, msgs ...*message.Message) error {
	pub, err := watermillsql.NewPublisher(
		tx,
		watermillsql.PublisherConfig{
			SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
			AutoInitializeSchema: false,
		},
		&slogAdapter{log: q.log},
	)
	if err != nil {
		return fmt.Errorf("events: new tx publisher: %w", err)
	}

	var p message.Publisher = pub
	if q.useForwarder {
		p = forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
	}

	for _, msg := range msgs {
		InjectTrace(ctx, msg)
	}
	if err := p.Publish(topic, msgs...); err != nil { //nolint:contextcheck
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// InjectTrace copies the OTel trace context of ctx into msg's metadata.
func InjectTrace(ctx context.Context, msg *message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
}

// ExtractTrace returns ctx carrying the trace context stored in msg.
func ExtractTrace(ctx context.Context, msg *message.Message) context.Context {
	carrier := propagation.MapCarrier{}
	for k, v := range msg.Metadata {
		carrier[k] = v
	}
	return otel.GetTextMapPropagator().Extract(ctx, carrier)
}

// Subscribe processes messages from topic in the background until ctx is
// done or the bus is closed.
//
// handler returning nil Acks the message. An error is retried up to 3 times
// (1s, 2s, 4s); after that the message is Nacked and the error is sent on the
// returned channel (capacity 100), which callers must drain:
//
//	errCh, err := bus.Subscribe(ctx, topic, handler)
//	go func() { for err := range errCh { log.ErrorContext(ctx, "subscriber error", "error", err) } }()
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
			msgCtx := ExtractTrace(ctx, msg)
			if err := retryWithBackoff(msgCtx, msg, handler, maxRetries, retryBaseDelay, q.log); err != nil {
				msg.Nack()
				select {
				case errCh <- err:
				default:
					q.log.ErrorContext(msgCtx, "events: error channel full, dropping error",
						"error", err, "topic", topic)
				}
			} else {
				msg.Ack()
			}
		}
	}()

	return errCh, nil
}

// SubscribeJSON is Subscribe with the payload decoded into T. A payload that
// does not decode is logged and acknowledged, since retrying cannot fix it.
func SubscribeJSON[T any](ctx context.Context, q *EventBus, topic string, handler func(context.Context, T) error) (<-chan error, error) {
	return q.Subscribe(ctx, topic, DecodeJSON(q.log, topic, handler))
}

// DecodeJSON adapts a typed handler to a raw message handler.
func DecodeJSON[T any](log logger.Logger, topic string, handler func(context.Context, T) error) func(context.Context, *message.Message) error {
	return func(ctx context.Context, msg *message.Message) error {
		var payload T
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			log.ErrorContext(ctx, "events: dropping undecodable message",
				"topic", topic, "message_uuid", msg.UUID, "error", err)
			return nil
		}
		return handler(ctx, payload)
	}
}

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
		if attempt < maxRetries {
			log.WarnContext(ctx, "events: handler failed, retrying",
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

// Ping checks the EventBus database connection health.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops the subscriber and forwarder, waits up to 30s for in-flight
// handlers and closes the connection pool.
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

	return q.db.Close()
}

// slogAdapter bridges logger.Logger to watermill.LoggerAdapter.
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
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
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
