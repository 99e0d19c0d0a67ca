package mail

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/customeros/mailadmin/dto"
	"github.com/customeros/mailadmin/internal/enum"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/tracing"
)

// MoveMessage moves a message and, once the server confirms, drops the
// cached listings of both folders.
func (s *MailService) MoveMessage(ctx context.Context, identity models.Identity, uid uint32, source, target string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailService.MoveMessage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUid(span, uid)

	sourceFolder, err := s.folders.Resolve(source)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	targetFolder, err := s.folders.Resolve(target)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	tracing.TagFolder(span, sourceFolder)
	span.SetTag("target", targetFolder)

	if sourceFolder == targetFolder {
		err = errors.Wrapf(mailerrors.ErrInvalidRequest, "message is already in %s", targetFolder)
		tracing.TraceErr(span, err)
		return err
	}

	if err = s.move(ctx, identity, uid, sourceFolder, targetFolder); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.publish(ctx, dto.MailEvent{
		Type:      enum.MailEventEmailMoved,
		UserEmail: identity.Key(),
		Folder:    sourceFolder,
		Target:    targetFolder,
		Uid:       uid,
	})
	return nil
}

func (s *MailService) move(ctx context.Context, identity models.Identity, uid uint32, source, target string) error {
	if err := s.transport.MoveMessage(ctx, identity, uid, source, target); err != nil {
		s.logFailure(identity, "move_message", err, zap.String("folder", source), zap.String("target", target), zap.Uint32("uid", uid))
		return err
	}

	s.cache.Invalidate(identity, source)
	s.cache.Invalidate(identity, target)
	s.log.Info("move message",
		zap.String("user", identity.Key()),
		zap.String("operation", "move_message"),
		zap.String("folder", source),
		zap.String("target", target),
		zap.Uint32("uid", uid))
	return nil
}

// DeleteMessage moves a message to Trash, or removes it permanently when it
// already is in Trash.
func (s *MailService) DeleteMessage(ctx context.Context, identity models.Identity, folder string, uid uint32) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailService.DeleteMessage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagUid(span, uid)

	canonical, err := s.folders.Resolve(folder)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	tracing.TagFolder(span, canonical)

	event := dto.MailEvent{
		Type:      enum.MailEventEmailDeleted,
		UserEmail: identity.Key(),
		Folder:    canonical,
		Uid:       uid,
	}

	if !s.folders.IsTrash(canonical) {
		trash := s.folders.Trash()
		if err = s.move(ctx, identity, uid, canonical, trash); err != nil {
			tracing.TraceErr(span, err)
			return err
		}
		event.Target = trash
		s.publish(ctx, event)
		return nil
	}

	span.SetTag("permanent", true)
	if err = s.transport.ExpungeMessage(ctx, identity, canonical, uid); err != nil {
		tracing.TraceErr(span, err)
		s.logFailure(identity, "delete_message", err, zap.String("folder", canonical), zap.Uint32("uid", uid))
		return err
	}
	s.cache.Invalidate(identity, canonical)
	s.log.Info("delete message",
		zap.String("user", identity.Key()),
		zap.String("operation", "delete_message"),
		zap.String("folder", canonical),
		zap.Uint32("uid", uid),
		zap.Bool("permanent", true))

	event.Permanent = true
	s.publish(ctx, event)
	return nil
}

// SendMessage submits an email, then stores a copy in Sent. The send is
// reported successful even when storing the copy fails.
func (s *MailService) SendMessage(ctx context.Context, identity models.Identity, email *models.OutgoingEmail) (*models.SendResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailService.SendMessage")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if email == nil || len(email.To) == 0 {
		err := errors.Wrap(mailerrors.ErrInvalidRequest, "at least one recipient is required")
		tracing.TraceErr(span, err)
		return nil, err
	}

	composed, err := s.composer.Compose(identity.Email, email, s.signature(ctx, identity))
	if err != nil {
		tracing.TraceErr(span, err)
		s.logFailure(identity, "send_message", err)
		return nil, err
	}
	span.SetTag("message.id", composed.MessageID)

	result, err := s.sender.Send(ctx, identity, composed)
	if err != nil {
		tracing.TraceErr(span, err)
		s.logFailure(identity, "send_message", err, zap.String("messageId", composed.MessageID))
		return nil, err
	}

	sent := s.folders.Sent()
	if err = s.transport.AppendMessage(ctx, identity, sent, []string{enum.FlagSeen.String()}, composed.Raw); err != nil {
		span.LogKV("sent.append.error", err.Error())
		s.log.Warn("sent message not copied to sent folder",
			zap.String("user", identity.Key()),
			zap.String("operation", "send_message"),
			zap.String("messageId", composed.MessageID),
			zap.Error(err))
	}
	s.cache.Invalidate(identity, sent)

	s.log.Info("send message",
		zap.String("user", identity.Key()),
		zap.String("operation", "send_message"),
		zap.String("messageId", result.MessageID),
		zap.Int("recipients", len(composed.Recipients)),
		zap.Int("attachments", len(email.Attachments)))

	s.publish(ctx, dto.MailEvent{
		Type:      enum.MailEventEmailSent,
		UserEmail: identity.Key(),
		Folder:    sent,
		MessageId: result.MessageID,
	})
	return result, nil
}

// SaveDraft stores a draft in the drafts folder.
func (s *MailService) SaveDraft(ctx context.Context, identity models.Identity, draft *models.OutgoingEmail) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailService.SaveDraft")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	composed, err := s.composer.ComposeDraft(identity.Email, draft)
	if err != nil {
		tracing.TraceErr(span, err)
		s.logFailure(identity, "save_draft", err)
		return err
	}

	drafts := s.folders.Drafts()
	if err = s.transport.AppendMessage(ctx, identity, drafts, []string{enum.FlagDraft.String()}, composed.Raw); err != nil {
		tracing.TraceErr(span, err)
		s.logFailure(identity, "save_draft", err, zap.String("folder", drafts))
		return err
	}
	s.cache.Invalidate(identity, drafts)
	s.log.Info("save draft",
		zap.String("user", identity.Key()),
		zap.String("operation", "save_draft"),
		zap.String("folder", drafts))

	s.publish(ctx, dto.MailEvent{
		Type:      enum.MailEventDraftSaved,
		UserEmail: identity.Key(),
		Folder:    drafts,
		MessageId: composed.MessageID,
	})
	return nil
}

// signature looks up the sender's signature. A lookup failure sends the
// message without one.
func (s *MailService) signature(ctx context.Context, identity models.Identity) *models.Signature {
	if s.signatures == nil {
		return nil
	}
	signature, err := s.signatures.Signature(ctx, identity.Key())
	if err != nil {
		s.log.Warn("signature unavailable", zap.String("user", identity.Key()), zap.Error(err))
		return nil
	}
	return signature
}
