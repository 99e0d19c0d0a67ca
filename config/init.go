package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	cron_config "github.com/customeros/mailadmin/internal/cron/config"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/internal/tracing"
)

type Config struct {
	AppConfig       *AppConfig
	IMAPConfig      *IMAPConfig
	SMTPConfig      *SMTPConfig
	FolderConfig    *FolderConfig
	MailConfig      *MailConfig
	ProfileConfig   *ProfileConfig
	S3StorageConfig *S3StorageConfig
	R2StorageConfig *R2StorageConfig
	CronConfig      *cron_config.Config
	Logger          *logger.Config
	Tracing         *tracing.JaegerConfig
}

func newConfig() *Config {
	return &Config{
		AppConfig:       &AppConfig{},
		IMAPConfig:      &IMAPConfig{},
		SMTPConfig:      &SMTPConfig{},
		FolderConfig:    &FolderConfig{},
		MailConfig:      &MailConfig{},
		ProfileConfig:   &ProfileConfig{},
		S3StorageConfig: &S3StorageConfig{},
		R2StorageConfig: &R2StorageConfig{},
		CronConfig:      &cron_config.Config{},
		Logger:          &logger.Config{},
		Tracing:         &tracing.JaegerConfig{},
	}
}

func InitConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	return ParseConfig()
}

// ParseConfig reads the configuration from the environment only.
func ParseConfig() (*Config, error) {
	config := newConfig()
	if err := env.Parse(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
