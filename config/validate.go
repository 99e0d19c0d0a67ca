package config

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const (
	SMTPSecurityStartTLS = "starttls"
	SMTPSecurityTLS      = "tls"
	SMTPSecurityNone     = "none"

	SignatureStorageLocal = "local"
	SignatureStorageS3    = "s3"
	SignatureStorageR2    = "r2"
)

func (c *Config) Validate() error {
	var problems []string

	if c.MailConfig.MaxEmailsPerFolder <= 0 {
		problems = append(problems, "MAIL_MAX_EMAILS_PER_FOLDER must be positive")
	}
	if c.MailConfig.DefaultListLimit <= 0 {
		problems = append(problems, "MAIL_DEFAULT_LIST_LIMIT must be positive")
	}
	if c.MailConfig.CacheTTL <= 0 {
		problems = append(problems, "MAIL_CACHE_TTL must be positive")
	}
	if c.MailConfig.ConnectionIdleTimeout <= 0 {
		problems = append(problems, "MAIL_CONNECTION_IDLE_TIMEOUT must be positive")
	}

	switch strings.ToLower(c.SMTPConfig.Security) {
	case SMTPSecurityStartTLS, SMTPSecurityTLS, SMTPSecurityNone:
		c.SMTPConfig.Security = strings.ToLower(c.SMTPConfig.Security)
	default:
		problems = append(problems, fmt.Sprintf("SMTP_SECURITY %q is not one of starttls, tls, none", c.SMTPConfig.Security))
	}

	switch strings.ToLower(c.ProfileConfig.SignatureStorage) {
	case SignatureStorageLocal:
	case SignatureStorageS3:
		if c.S3StorageConfig.AccessKeyID == "" || c.S3StorageConfig.AccessKeySecret == "" {
			problems = append(problems, "AWS_S3_ACCESS_KEY_ID and AWS_S3_ACCESS_KEY_SECRET are required for s3 signature storage")
		}
	case SignatureStorageR2:
		if c.R2StorageConfig.AccountID == "" || c.R2StorageConfig.AccessKeyID == "" || c.R2StorageConfig.AccessKeySecret == "" {
			problems = append(problems, "CLOUDFLARE_R2_* credentials are required for r2 signature storage")
		}
	default:
		problems = append(problems, fmt.Sprintf("SIGNATURE_STORAGE %q is not one of local, s3, r2", c.ProfileConfig.SignatureStorage))
	}
	c.ProfileConfig.SignatureStorage = strings.ToLower(c.ProfileConfig.SignatureStorage)

	if len(problems) > 0 {
		return errors.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
