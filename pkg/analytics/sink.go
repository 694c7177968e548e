package analytics

import (
	"context"

	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/pkg/events"
	"rag-assistant-be/pkg/nats"
)

// Sink accepts analytics records fire-and-forget. Implementations must never
// let a sink failure affect the request that produced the record.
type Sink interface {
	Append(ctx context.Context, record map[string]interface{})
}

// NatsSink forwards records to the NATS analytics stream.
type NatsSink struct {
	publisher *nats.Publisher
	subject   string
	logger    logger.ILogger
}

func NewNatsSink(publisher *nats.Publisher, subject string, log logger.ILogger) *NatsSink {
	return &NatsSink{
		publisher: publisher,
		subject:   subject,
		logger:    log,
	}
}

func (s *NatsSink) Append(ctx context.Context, record map[string]interface{}) {
	if err := s.publisher.Publish(ctx, s.subject, events.NewInteractionLogged(record)); err != nil {
		s.logger.Warn("analytics", "Failed to append analytics record", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// NoopSink is used when no analytics backend is configured.
type NoopSink struct{}

func (NoopSink) Append(context.Context, map[string]interface{}) {}
