package service

import (
	"context"
	"encoding/json"

	"rag-assistant-be/internal/pkg/logger"
	"rag-assistant-be/pkg/analytics"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IConsumerService drains the in-process interaction topic and forwards each
// record to the analytics sink.
type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	sink      analytics.Sink
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	sink analytics.Sink,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		sink:      sink,
		logger:    log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()
	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var record map[string]interface{}
	if err := json.Unmarshal(msg.Payload, &record); err != nil {
		cs.logger.Error("analytics_consumer", "Failed to unmarshal interaction record", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Ack malformed messages, retrying cannot fix them
		msg.Ack()
		return
	}

	cs.sink.Append(ctx, record)
	msg.Ack()
}
