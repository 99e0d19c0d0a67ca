package mail

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/tracing"
)

// OpenMessage returns the full message. A detail already attached to the
// cached listing entry is returned as is; otherwise the message is fetched,
// which marks it seen on the server, and attached to the entry when the
// folder is cached. The cached summary itself is left untouched.
func (s *MailService) OpenMessage(ctx context.Context, identity models.Identity, folder string, uid uint32) (*models.EmailDetail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailService.OpenMessage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUid(span, uid)

	canonical, err := s.folders.Resolve(folder)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	tracing.TagFolder(span, canonical)

	detail, fromCache, err := s.hydrate(ctx, identity, canonical, uid)
	if err != nil {
		tracing.TraceErr(span, err)
		s.logFailure(identity, "open_message", err, zap.String("folder", canonical), zap.Uint32("uid", uid))
		return nil, err
	}

	span.SetTag("fromCache", fromCache)
	s.log.Info("open message",
		zap.String("user", identity.Key()),
		zap.String("operation", "open_message"),
		zap.String("folder", canonical),
		zap.Uint32("uid", uid),
		zap.Int("attachments", len(detail.Attachments)),
		zap.Bool("fromCache", fromCache))
	return detail, nil
}

func (s *MailService) hydrate(ctx context.Context, identity models.Identity, folder string, uid uint32) (*models.EmailDetail, bool, error) {
	if entry, ok := s.cache.FindEntry(identity, folder, uid); ok && entry.Detail != nil {
		return entry.Detail, true, nil
	}

	raw, err := s.transport.FetchMessage(ctx, identity, folder, uid)
	if err != nil {
		return nil, false, err
	}
	detail, err := s.decoder.DecodeMessage(raw)
	if err != nil {
		return nil, false, err
	}

	s.cache.AttachDetail(identity, folder, uid, detail)
	return detail, false, nil
}

// DownloadAttachment returns attachment index of a message, including its
// bytes, hydrating the message first when needed.
func (s *MailService) DownloadAttachment(ctx context.Context, identity models.Identity, folder string, uid uint32, index int) (*models.Attachment, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailService.DownloadAttachment")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUid(span, uid)
	span.SetTag("index", index)

	canonical, err := s.folders.Resolve(folder)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	tracing.TagFolder(span, canonical)

	detail, _, err := s.hydrate(ctx, identity, canonical, uid)
	if err != nil {
		tracing.TraceErr(span, err)
		s.logFailure(identity, "download_attachment", err, zap.String("folder", canonical), zap.Uint32("uid", uid))
		return nil, err
	}

	if index < 0 || index >= len(detail.Attachments) {
		err = errors.Wrapf(mailerrors.ErrInvalidIndex, "index %d of %d attachments", index, len(detail.Attachments))
		tracing.TraceErr(span, err)
		return nil, err
	}
	attachment := detail.Attachments[index]
	if len(attachment.Content) == 0 {
		err = errors.Wrapf(mailerrors.ErrNoContent, "attachment %d of uid %d", index, uid)
		tracing.TraceErr(span, err)
		return nil, err
	}

	s.log.Info("download attachment",
		zap.String("user", identity.Key()),
		zap.String("operation", "download_attachment"),
		zap.String("folder", canonical),
		zap.Uint32("uid", uid),
		zap.String("filename", attachment.Filename),
		zap.Int("size", len(attachment.Content)))
	return &attachment, nil
}
