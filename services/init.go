package services

import (
	"github.com/customeros/mailadmin/config"
	"github.com/customeros/mailadmin/interfaces"
	"github.com/customeros/mailadmin/internal/cache"
	"github.com/customeros/mailadmin/internal/folders"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/services/decoder"
	"github.com/customeros/mailadmin/services/events"
	"github.com/customeros/mailadmin/services/imap"
	"github.com/customeros/mailadmin/services/mail"
	"github.com/customeros/mailadmin/services/profile"
	"github.com/customeros/mailadmin/services/smtp"
	"github.com/customeros/mailadmin/services/storage"
)

type Services struct {
	Folders        *folders.Resolver
	ListingCache   *cache.ListingCache
	IMAPService    *imap.IMAPService
	SMTPService    *smtp.SMTPService
	MailService    interfaces.MailboxService
	ProfileService interfaces.ProfileService
	EventPublisher interfaces.EventPublisher
}

func InitServices(cfg *config.Config, log logger.Logger) (*Services, error) {
	publisher, err := events.NewEventPublisher(cfg.AppConfig.RabbitMQURL, log, events.DefaultPublisherConfig())
	if err != nil {
		return nil, err
	}

	signatureStorage, err := storage.NewStorageService(cfg)
	if err != nil {
		return nil, err
	}
	profiles, err := profile.NewProfileService(cfg.ProfileConfig, log, signatureStorage)
	if err != nil {
		return nil, err
	}

	resolver := folders.NewResolver(cfg.FolderConfig)
	listingCache := cache.NewListingCache(cfg.MailConfig.CacheTTL)
	imapService := imap.NewIMAPService(cfg.IMAPConfig, cfg.MailConfig.ConnectionIdleTimeout, log)
	smtpService := smtp.NewSMTPService(cfg.SMTPConfig, log)

	mailService := mail.NewMailService(
		cfg.MailConfig,
		log,
		resolver,
		listingCache,
		imapService,
		smtpService,
		smtp.NewComposer(),
		decoder.NewDecoder(),
		mail.WithSignatures(profiles),
		mail.WithEventPublisher(publisher),
	)

	return &Services{
		Folders:        resolver,
		ListingCache:   listingCache,
		IMAPService:    imapService,
		SMTPService:    smtpService,
		MailService:    mailService,
		ProfileService: profiles,
		EventPublisher: publisher,
	}, nil
}

// Close releases pooled connections, cached listings and the event publisher.
func (s *Services) Close() error {
	s.IMAPService.Shutdown()
	s.ListingCache.Shutdown()
	return s.EventPublisher.Close()
}
