package events

import (
	"context"
	"log/slog"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-auth-gateway/internal/domain"
	"github.com/go-auth-gateway/internal/pkg/id"
)

// Publisher delivers one event envelope to the message bus. Implementations
// are selected once at startup and injected into the Emitter.
type Publisher interface {
	Publish(ctx context.Context, e *domain.Event) error
}

const publishTimeout = 5 * time.Second

// Emitter is the best-effort boundary around event publication. Emission
// happens after a workflow's authoritative side effect has already committed,
// so a publish failure is logged and swallowed — it must never alter the
// decided outcome of the request.
type Emitter struct {
	publisher Publisher
	logger    *slog.Logger
}

func NewEmitter(p Publisher, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{publisher: p, logger: logger}
}

// Emit publishes a single event on a detached task. The envelope is built
// synchronously (trace id comes from the request context); delivery is
// fire-and-forget relative to the HTTP response.
func (e *Emitter) Emit(ctx context.Context, eventType string, data map[string]any) {
	e.EmitAll(ctx, NewEvent(ctx, eventType, data))
}

// EmitAll publishes the given events sequentially on one detached task,
// preserving their order. Each publish is independently best-effort: one
// failing does not block the next.
func (e *Emitter) EmitAll(ctx context.Context, evts ...*domain.Event) {
	detached := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.Error("event publish panicked", "panic", r)
			}
		}()
		for _, evt := range evts {
			pubCtx, cancel := context.WithTimeout(detached, publishTimeout)
			if err := e.publisher.Publish(pubCtx, evt); err != nil {
				e.logger.Warn("event publish failed",
					"event_type", evt.EventType,
					"event_id", evt.EventID,
					"err", err,
				)
			}
			cancel()
		}
	}()
}

// NewEvent builds an envelope for the given type, pulling the trace id from
// the chi request id in ctx.
func NewEvent(ctx context.Context, eventType string, data map[string]any) *domain.Event {
	return &domain.Event{
		EventID:   id.New(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Source:    domain.EventSource,
		Data:      data,
		Metadata: domain.EventMetadata{
			TraceID: chimiddleware.GetReqID(ctx),
			Version: domain.EventVersion,
		},
	}
}

// LogPublisher is the development backend: events go to the structured log
// instead of a bus.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(_ context.Context, e *domain.Event) error {
	p.logger.Info("event published",
		"event_type", e.EventType,
		"event_id", e.EventID,
		"trace_id", e.Metadata.TraceID,
	)
	return nil
}
