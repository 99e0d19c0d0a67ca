package mail

import (
	"context"
	"sync"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/tracing"
)

// FolderStats reads message and unseen counts of every configured folder
// straight from the server, keyed by folder alias. A folder that cannot be
// opened gets an entry carrying the error; connection and credential
// failures fail the whole call.
func (s *MailService) FolderStats(ctx context.Context, identity models.Identity) (map[string]models.FolderStats, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailService.FolderStats")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	var mu sync.Mutex
	stats := make(map[string]models.FolderStats)

	g, gctx := errgroup.WithContext(ctx)
	for _, folder := range s.folders.All() {
		folder := folder
		g.Go(func() error {
			status, err := s.transport.FolderStatus(gctx, identity, folder.Name)
			entry := models.FolderStats{Name: folder.Name}
			if err != nil {
				if isFatal(err) {
					return err
				}
				entry.Error = err.Error()
			} else {
				entry.Messages = status.Messages
				entry.Unseen = status.Unseen
			}

			mu.Lock()
			stats[folder.Key.String()] = entry
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		tracing.TraceErr(span, err)
		s.logFailure(identity, "folder_stats", err)
		return nil, err
	}

	s.log.Info("folder stats",
		zap.String("user", identity.Key()),
		zap.String("operation", "folder_stats"),
		zap.Int("folders", len(stats)))
	return stats, nil
}

func isFatal(err error) bool {
	return errors.Is(err, mailerrors.ErrAuth) ||
		errors.Is(err, mailerrors.ErrTransportUnavailable) ||
		errors.Is(err, mailerrors.ErrTimeout)
}
