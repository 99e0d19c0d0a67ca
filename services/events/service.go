package events

import (
	"context"

	"go.uber.org/zap"

	"github.com/customeros/mailadmin/dto"
	"github.com/customeros/mailadmin/interfaces"
	"github.com/customeros/mailadmin/internal/logger"
)

// NewEventPublisher connects to RabbitMQ, or returns a publisher that drops
// every event when rabbitmqURL is empty.
func NewEventPublisher(rabbitmqURL string, log logger.Logger, publisherConfig *PublisherConfig) (interfaces.EventPublisher, error) {
	if rabbitmqURL == "" {
		log.Info("RABBITMQ_URL not set, mail events are not published")
		return NoopPublisher{log: log}, nil
	}
	return NewRabbitMQPublisher(rabbitmqURL, log, publisherConfig)
}

type NoopPublisher struct {
	log logger.Logger
}

func (p NoopPublisher) PublishMailEvent(_ context.Context, event dto.MailEvent) error {
	if p.log != nil {
		p.log.Debug("mail event dropped", zap.String("event", event.Type.String()), zap.String("user", event.UserEmail))
	}
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
