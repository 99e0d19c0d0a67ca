package imap

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/emersion/go-imap"
	uidplus "github.com/emersion/go-imap-uidplus"
	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailadmin/internal/enum"
	mailerrors "github.com/customeros/mailadmin/internal/errors"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/tracing"
	"github.com/customeros/mailadmin/services/decoder"
)

var headerSection = &imap.BodySectionName{
	BodyPartName: imap.BodyPartName{Specifier: imap.HeaderSpecifier},
	Peek:         true,
}

// entireSection marks the message \Seen when fetched.
var entireSection = &imap.BodySectionName{}

// FetchSummaries returns the newest max messages of a folder by sequence
// number together with the folder's message count.
func (s *IMAPService) FetchSummaries(ctx context.Context, identity models.Identity, folder string, max int) (*models.FolderFetch, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.FetchSummaries")
	defer span.Finish()
	tracing.SetDefaultTransportSpanTags(ctx, span)
	tracing.TagFolder(span, folder)
	span.SetTag("max", max)

	result := &models.FolderFetch{Messages: []*models.RawSummary{}}
	err := s.withClient(ctx, identity, func(c *client.Client) error {
		mbox, err := c.Select(folder, true)
		if err != nil {
			return err
		}
		result.Total = int(mbox.Messages)
		if mbox.Messages == 0 || max <= 0 {
			return nil
		}

		from := uint32(1)
		if mbox.Messages > uint32(max) {
			from = mbox.Messages - uint32(max) + 1
		}
		seqSet := new(imap.SeqSet)
		seqSet.AddRange(from, mbox.Messages)

		items := []imap.FetchItem{
			imap.FetchUid,
			imap.FetchFlags,
			imap.FetchRFC822Size,
			imap.FetchInternalDate,
			imap.FetchBodyStructure,
			headerSection.FetchItem(),
		}

		messages := make(chan *imap.Message, 10)
		done := make(chan error, 1)
		go func() {
			done <- c.Fetch(seqSet, items, messages)
		}()

		for msg := range messages {
			result.Messages = append(result.Messages, &models.RawSummary{
				UID:          msg.Uid,
				Flags:        msg.Flags,
				Size:         msg.Size,
				InternalDate: msg.InternalDate,
				Header:       readSection(msg, imap.HeaderSpecifier),
				Attachments:  decoder.AttachmentsFromStructure(msg.BodyStructure),
			})
		}
		return <-done
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "fetch summaries of %s", folder)
	}

	span.SetTag("fetched", len(result.Messages))
	span.SetTag("total", result.Total)
	return result, nil
}

// FetchMessage downloads the full message. The fetch is not a peek, so the
// server flags the message \Seen.
func (s *IMAPService) FetchMessage(ctx context.Context, identity models.Identity, folder string, uid uint32) (*models.RawMessage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.FetchMessage")
	defer span.Finish()
	tracing.SetDefaultTransportSpanTags(ctx, span)
	tracing.TagFolder(span, folder)
	tracing.TagUid(span, uid)

	var result *models.RawMessage
	err := s.withClient(ctx, identity, func(c *client.Client) error {
		if _, err := c.Select(folder, false); err != nil {
			return err
		}

		seqSet := new(imap.SeqSet)
		seqSet.AddNum(uid)
		items := []imap.FetchItem{
			imap.FetchUid,
			imap.FetchFlags,
			imap.FetchRFC822Size,
			imap.FetchInternalDate,
			entireSection.FetchItem(),
		}

		messages := make(chan *imap.Message, 1)
		done := make(chan error, 1)
		go func() {
			done <- c.UidFetch(seqSet, items, messages)
		}()

		for msg := range messages {
			if msg.Uid != uid || result != nil {
				continue
			}
			result = &models.RawMessage{
				UID:          msg.Uid,
				Flags:        ensureFlag(msg.Flags, enum.FlagSeen.String()),
				Size:         msg.Size,
				InternalDate: msg.InternalDate,
				Body:         readSection(msg, imap.EntireSpecifier),
			}
		}
		return <-done
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "fetch uid %d of %s", uid, folder)
	}
	if result == nil || len(result.Body) == 0 {
		err = errors.Wrapf(mailerrors.ErrNotFound, "uid %d in %s", uid, folder)
		tracing.TraceErr(span, err)
		return nil, err
	}
	return result, nil
}

func (s *IMAPService) MoveMessage(ctx context.Context, identity models.Identity, uid uint32, source, target string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.MoveMessage")
	defer span.Finish()
	tracing.SetDefaultTransportSpanTags(ctx, span)
	tracing.TagFolder(span, source)
	tracing.TagUid(span, uid)
	span.SetTag("target", target)

	err := s.withClient(ctx, identity, func(c *client.Client) error {
		if _, err := c.Select(source, false); err != nil {
			return err
		}
		seqSet := new(imap.SeqSet)
		seqSet.AddNum(uid)
		return c.UidMove(seqSet, target)
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "move uid %d from %s to %s", uid, source, target)
	}
	return nil
}

// ExpungeMessage permanently removes one message.
func (s *IMAPService) ExpungeMessage(ctx context.Context, identity models.Identity, folder string, uid uint32) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.ExpungeMessage")
	defer span.Finish()
	tracing.SetDefaultTransportSpanTags(ctx, span)
	tracing.TagFolder(span, folder)
	tracing.TagUid(span, uid)

	err := s.withClient(ctx, identity, func(c *client.Client) error {
		if _, err := c.Select(folder, false); err != nil {
			return err
		}
		return expungeUid(c, uid)
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "expunge uid %d from %s", uid, folder)
	}
	return nil
}

// expungeUid removes only uid. Servers with UIDPLUS get UID EXPUNGE; on the
// others every other \Deleted message is unflagged around a plain EXPUNGE
// and flagged again afterwards.
func expungeUid(c *client.Client, uid uint32) error {
	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)
	deleted := []interface{}{imap.DeletedFlag}
	if err := c.UidStore(seqSet, imap.FormatFlagsOp(imap.AddFlags, true), deleted, nil); err != nil {
		return err
	}

	uidPlus := uidplus.NewClient(c)
	if ok, err := uidPlus.SupportUidPlus(); err == nil && ok {
		return uidPlus.UidExpunge(seqSet, nil)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithFlags = []string{imap.DeletedFlag}
	flagged, err := c.UidSearch(criteria)
	if err != nil {
		return err
	}
	others := new(imap.SeqSet)
	for _, other := range flagged {
		if other != uid {
			others.AddNum(other)
		}
	}
	if others.Empty() {
		return c.Expunge(nil)
	}

	if err := c.UidStore(others, imap.FormatFlagsOp(imap.RemoveFlags, true), deleted, nil); err != nil {
		return err
	}
	expungeErr := c.Expunge(nil)
	if err := c.UidStore(others, imap.FormatFlagsOp(imap.AddFlags, true), deleted, nil); err != nil && expungeErr == nil {
		return err
	}
	return expungeErr
}

func (s *IMAPService) AppendMessage(ctx context.Context, identity models.Identity, folder string, flags []string, raw []byte) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.AppendMessage")
	defer span.Finish()
	tracing.SetDefaultTransportSpanTags(ctx, span)
	tracing.TagFolder(span, folder)
	span.SetTag("size", len(raw))

	err := s.withClient(ctx, identity, func(c *client.Client) error {
		return c.Append(folder, flags, time.Now(), bytes.NewBuffer(raw))
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(err, "append to %s", folder)
	}
	return nil
}

func (s *IMAPService) FolderStatus(ctx context.Context, identity models.Identity, folder string) (*models.FolderStatus, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.FolderStatus")
	defer span.Finish()
	tracing.SetDefaultTransportSpanTags(ctx, span)
	tracing.TagFolder(span, folder)

	var result *models.FolderStatus
	err := s.withClient(ctx, identity, func(c *client.Client) error {
		status, err := c.Status(folder, []imap.StatusItem{imap.StatusMessages, imap.StatusUnseen})
		if err != nil {
			return err
		}
		result = &models.FolderStatus{Name: folder, Messages: status.Messages, Unseen: status.Unseen}
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "status of %s", folder)
	}
	return result, nil
}

// Verify checks the credentials, opening or reusing the pooled session.
func (s *IMAPService) Verify(ctx context.Context, identity models.Identity) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPService.Verify")
	defer span.Finish()
	tracing.SetDefaultTransportSpanTags(ctx, span)

	err := s.withClient(ctx, identity, func(c *client.Client) error {
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

// readSection returns the literal of the body section with the given
// specifier, ignoring partial and path sections.
func readSection(msg *imap.Message, specifier imap.PartSpecifier) []byte {
	for section, literal := range msg.Body {
		if literal == nil || len(section.Path) != 0 || section.Partial != nil {
			continue
		}
		if section.Specifier != specifier {
			continue
		}
		data, err := io.ReadAll(literal)
		if err != nil {
			return nil
		}
		return data
	}
	return nil
}

func ensureFlag(flags []string, flag string) []string {
	for _, f := range flags {
		if f == flag {
			return flags
		}
	}
	return append(append([]string{}, flags...), flag)
}
