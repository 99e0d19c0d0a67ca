package interfaces

import (
	"context"

	"github.com/customeros/mailadmin/dto"
)

type EventPublisher interface {
	PublishMailEvent(ctx context.Context, event dto.MailEvent) error
	Close() error
}
