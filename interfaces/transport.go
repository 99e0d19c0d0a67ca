package interfaces

import (
	"context"

	"github.com/customeros/mailadmin/internal/models"
)

// MailTransport is the IMAP side of the mail provider. Implementations hold
// one connection per identity and serialize requests on it.
type MailTransport interface {
	FetchSummaries(ctx context.Context, identity models.Identity, folder string, max int) (*models.FolderFetch, error)
	FetchMessage(ctx context.Context, identity models.Identity, folder string, uid uint32) (*models.RawMessage, error)
	MoveMessage(ctx context.Context, identity models.Identity, uid uint32, source, target string) error
	ExpungeMessage(ctx context.Context, identity models.Identity, folder string, uid uint32) error
	AppendMessage(ctx context.Context, identity models.Identity, folder string, flags []string, raw []byte) error
	FolderStatus(ctx context.Context, identity models.Identity, folder string) (*models.FolderStatus, error)
	Verify(ctx context.Context, identity models.Identity) error
	Close(identity models.Identity)
}

// MessageSender is the SMTP side of the mail provider.
type MessageSender interface {
	Send(ctx context.Context, identity models.Identity, message *models.ComposedMessage) (*models.SendResult, error)
	Verify(ctx context.Context, identity models.Identity) error
}

type MessageComposer interface {
	Compose(from string, email *models.OutgoingEmail, signature *models.Signature) (*models.ComposedMessage, error)
	ComposeDraft(from string, draft *models.OutgoingEmail) (*models.ComposedMessage, error)
}
