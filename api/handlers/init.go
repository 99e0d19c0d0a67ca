package handlers

import (
	"time"

	"github.com/customeros/mailadmin/config"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/services"
)

type APIHandlers struct {
	Emails  *EmailsHandler
	Auth    *AuthHandler
	Profile *ProfileHandler
	Health  *HealthHandler
}

func InitHandlers(cfg *config.Config, s *services.Services, log logger.Logger) *APIHandlers {
	return &APIHandlers{
		Emails:  NewEmailsHandler(s.MailService, s.Folders, log),
		Auth:    NewAuthHandler(s.MailService, log),
		Profile: NewProfileHandler(s.ProfileService, s.MailService, log),
		Health:  NewHealthHandler(cfg.AppConfig.Version, time.Now(), s.ListingCache, s.IMAPService),
	}
}
