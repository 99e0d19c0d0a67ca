package mail

import (
	"context"
	"sort"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/customeros/mailadmin/interfaces"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/tracing"
)

const defaultFetchTimeout = 60 * time.Second

// ListFolder returns the newest limit entries of a folder and the folder's
// message count. A live cached partition is served without touching the
// server; otherwise the folder is fetched, decoded and cached in full.
func (s *MailService) ListFolder(ctx context.Context, identity models.Identity, folder string, limit int) (*interfaces.ListResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailService.ListFolder")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	canonical, err := s.folders.Resolve(folder)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	tracing.TagFolder(span, canonical)
	limit = s.listLimit(limit)

	partition, fromCache := s.cache.Get(identity, canonical)
	if !fromCache {
		partition, err = s.loadPartition(ctx, identity, canonical)
		if err != nil {
			tracing.TraceErr(span, err)
			s.logFailure(identity, "list_folder", err, zap.String("folder", canonical))
			return nil, err
		}
	}

	result := &interfaces.ListResult{
		Emails:    truncate(partition.Entries, limit),
		Total:     partition.TotalCount,
		Limit:     limit,
		FromCache: fromCache,
	}
	span.SetTag("fromCache", fromCache)
	s.log.Info("list folder",
		zap.String("user", identity.Key()),
		zap.String("operation", "list_folder"),
		zap.String("folder", canonical),
		zap.Int("returned", len(result.Emails)),
		zap.Int("total", result.Total),
		zap.Bool("fromCache", fromCache))
	return result, nil
}

// loadPartition fetches and caches a folder. Concurrent misses for the same
// identity and folder share one fetch when deduplication is enabled. The
// shared fetch is detached from any single caller; each caller stops waiting
// on its own cancellation only.
func (s *MailService) loadPartition(ctx context.Context, identity models.Identity, folder string) (*models.Partition, error) {
	if !s.cfg.DedupeListingFetches {
		return s.fetchPartition(ctx, identity, folder)
	}

	key := identity.Key() + "\x00" + identity.Fingerprint() + "\x00" + folder
	ch := s.fetches.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout())
		defer cancel()
		return s.fetchPartition(fetchCtx, identity, folder)
	})

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.Wrap(mailerrors.ErrTimeout, "waiting for listing fetch")
		}
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			if errors.Is(res.Err, context.DeadlineExceeded) {
				return nil, errors.Wrap(mailerrors.ErrTimeout, res.Err.Error())
			}
			return nil, res.Err
		}
		if res.Shared {
			s.log.Debug("shared listing fetch", zap.String("user", identity.Key()), zap.String("folder", folder))
		}
		return res.Val.(*models.Partition), nil
	}
}

func (s *MailService) fetchTimeout() time.Duration {
	if s.cfg.FetchTimeout > 0 {
		return s.cfg.FetchTimeout
	}
	return defaultFetchTimeout
}

func (s *MailService) fetchPartition(ctx context.Context, identity models.Identity, folder string) (*models.Partition, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailService.fetchPartition")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagFolder(span, folder)

	fetched, err := s.transport.FetchSummaries(ctx, identity, folder, s.cfg.MaxEmailsPerFolder)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	entries := make([]*models.EmailSummary, 0, len(fetched.Messages))
	for _, raw := range fetched.Messages {
		summary, err := s.decoder.DecodeSummary(raw)
		if err != nil {
			s.log.Warn("dropping undecodable message from listing",
				zap.String("user", identity.Key()),
				zap.String("folder", folder),
				zap.Uint32("uid", raw.UID),
				zap.Error(err))
			continue
		}
		entries = append(entries, summary)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})

	span.SetTag("entries", len(entries))
	span.SetTag("dropped", len(fetched.Messages)-len(entries))
	return s.cache.Put(identity, folder, entries, fetched.Total), nil
}

func (s *MailService) listLimit(limit int) int {
	if limit <= 0 {
		limit = s.cfg.DefaultListLimit
	}
	if s.cfg.MaxEmailsPerFolder > 0 && limit > s.cfg.MaxEmailsPerFolder {
		limit = s.cfg.MaxEmailsPerFolder
	}
	return limit
}

func truncate(entries []*models.EmailSummary, limit int) []*models.EmailSummary {
	if limit > len(entries) {
		limit = len(entries)
	}
	result := make([]*models.EmailSummary, limit)
	copy(result, entries[:limit])
	return result
}
