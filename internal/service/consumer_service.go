package service

import (
	"context"
	"encoding/json"

	"ai-studypartner-be/internal/dto"
	"ai-studypartner-be/internal/pkg/logger"
	"ai-studypartner-be/pkg/events"
	"ai-studypartner-be/pkg/index"
	"ai-studypartner-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the reindex topic: each job replaces one session's
// user-scope index with the freshly uploaded document.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	registry  *index.Registry
	publisher *nats.Publisher
	logger    logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	registry *index.Registry,
	publisher *nats.Publisher,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		registry:  registry,
		publisher: publisher,
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
	var payload dto.PublishIndexDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "failed to unmarshal reindex job", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed jobs would retry forever
		return
	}

	sessionId := payload.ChatSessionId.String()
	cs.logger.Info("CONSUMER", "reindexing uploaded document", map[string]interface{}{
		"session_id": sessionId,
		"source_tag": payload.SourceTag,
	})

	chunkCount, err := cs.registry.IndexUser(ctx, sessionId, payload.Text, payload.SourceTag)
	if err != nil {
		cs.logger.Error("CONSUMER", "reindex failed", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	if cs.publisher != nil {
		event := events.NewDocumentIndexed(sessionId, payload.UserId.String(), payload.SourceTag, chunkCount)
		if err := cs.publisher.Publish(ctx, event); err != nil {
			cs.logger.Warn("CONSUMER", "failed to publish indexed event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	cs.logger.Info("CONSUMER", "reindex complete", map[string]interface{}{
		"session_id": sessionId,
		"chunks":     chunkCount,
	})
	msg.Ack()
}
