package interfaces

import (
	"context"

	"github.com/customeros/mailadmin/internal/models"
)

type ListResult struct {
	Emails    []*models.EmailSummary
	Total     int
	Limit     int
	FromCache bool
}

// MailboxService is the cache-aware mailbox API used by the HTTP layer.
type MailboxService interface {
	ListFolder(ctx context.Context, identity models.Identity, folder string, limit int) (*ListResult, error)
	OpenMessage(ctx context.Context, identity models.Identity, folder string, uid uint32) (*models.EmailDetail, error)
	DownloadAttachment(ctx context.Context, identity models.Identity, folder string, uid uint32, index int) (*models.Attachment, error)

	MoveMessage(ctx context.Context, identity models.Identity, uid uint32, source, target string) error
	DeleteMessage(ctx context.Context, identity models.Identity, folder string, uid uint32) error
	SendMessage(ctx context.Context, identity models.Identity, email *models.OutgoingEmail) (*models.SendResult, error)
	SaveDraft(ctx context.Context, identity models.Identity, draft *models.OutgoingEmail) error
	ClearCache(ctx context.Context, identity models.Identity) int

	FolderStats(ctx context.Context, identity models.Identity) (map[string]models.FolderStats, error)
	Login(ctx context.Context, identity models.Identity) error
	Logout(ctx context.Context, identity models.Identity)
}
