// Package mail is the cache-aware mailbox API: folder listings served from
// the listing cache, on-demand hydration of opened messages, and mutations
// that keep the cache consistent with the server.
package mail

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/customeros/mailadmin/config"
	"github.com/customeros/mailadmin/dto"
	"github.com/customeros/mailadmin/interfaces"
	"github.com/customeros/mailadmin/internal/enum"
	"github.com/customeros/mailadmin/internal/folders"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/internal/models"
	"github.com/customeros/mailadmin/internal/tracing"
)

type MailService struct {
	cfg        *config.MailConfig
	log        logger.Logger
	folders    *folders.Resolver
	cache      interfaces.ListingCache
	transport  interfaces.MailTransport
	sender     interfaces.MessageSender
	composer   interfaces.MessageComposer
	decoder    interfaces.MessageDecoder
	signatures interfaces.SignatureProvider
	events     interfaces.EventPublisher

	fetches singleflight.Group
}

type Option func(*MailService)

func WithSignatures(provider interfaces.SignatureProvider) Option {
	return func(s *MailService) {
		s.signatures = provider
	}
}

func WithEventPublisher(publisher interfaces.EventPublisher) Option {
	return func(s *MailService) {
		s.events = publisher
	}
}

func NewMailService(
	cfg *config.MailConfig,
	log logger.Logger,
	resolver *folders.Resolver,
	cache interfaces.ListingCache,
	transport interfaces.MailTransport,
	sender interfaces.MessageSender,
	composer interfaces.MessageComposer,
	decoder interfaces.MessageDecoder,
	opts ...Option,
) *MailService {
	s := &MailService{
		cfg:       cfg,
		log:       log,
		folders:   resolver,
		cache:     cache,
		transport: transport,
		sender:    sender,
		composer:  composer,
		decoder:   decoder,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ interfaces.MailboxService = (*MailService)(nil)

// Login verifies the credentials against the mailbox server. The session
// opened for the check stays pooled for the following requests.
func (s *MailService) Login(ctx context.Context, identity models.Identity) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailService.Login")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if err := s.transport.Verify(ctx, identity); err != nil {
		tracing.TraceErr(span, err)
		s.logFailure(identity, "login", err)
		return err
	}
	s.log.Info("login", zap.String("user", identity.Key()), zap.String("operation", "login"))
	return nil
}

// Logout closes the pooled session and drops every cached listing.
func (s *MailService) Logout(ctx context.Context, identity models.Identity) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailService.Logout")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	s.transport.Close(identity)
	removed := s.cache.InvalidateAll(identity)
	s.log.Info("logout", zap.String("user", identity.Key()), zap.String("operation", "logout"), zap.Int("partitions", removed))
}

// ClearCache drops every cached listing of identity and returns how many
// partitions were removed.
func (s *MailService) ClearCache(ctx context.Context, identity models.Identity) int {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailService.ClearCache")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	removed := s.cache.InvalidateAll(identity)
	span.SetTag("removed", removed)
	s.log.Info("cache cleared", zap.String("user", identity.Key()), zap.String("operation", "clear_cache"), zap.Int("partitions", removed))

	s.publish(ctx, dto.MailEvent{Type: enum.MailEventCacheCleared, UserEmail: identity.Key()})
	return removed
}

// publish sends a change event. Failures are logged and never reach the caller.
func (s *MailService) publish(ctx context.Context, event dto.MailEvent) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.events.PublishMailEvent(ctx, event); err != nil {
		s.log.Warn("failed to publish mail event",
			zap.String("user", event.UserEmail),
			zap.String("event", event.Type.String()),
			zap.Error(err))
	}
}

func (s *MailService) logFailure(identity models.Identity, operation string, err error, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("user", identity.Key()),
		zap.String("operation", operation),
		zap.Error(err),
	}, fields...)
	s.log.Error("mail operation failed", fields...)
}
