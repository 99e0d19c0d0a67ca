package config

import "time"

type AppConfig struct {
	APIPort      string        `env:"PORT" envDefault:"3000"`
	GinMode      string        `env:"GIN_MODE" envDefault:"release"`
	StaticDir    string        `env:"STATIC_DIR"`
	MaxBodyMB    int64         `env:"API_MAX_BODY_MB" envDefault:"10"`
	RabbitMQURL  string        `env:"RABBITMQ_URL"`
	Version      string        `env:"APP_VERSION" envDefault:"1.0.0"`
	ShutdownWait time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type IMAPConfig struct {
	Host               string        `env:"IMAP_HOST" envDefault:"imap.hostinger.com"`
	Port               int           `env:"IMAP_PORT" envDefault:"993"`
	Secure             bool          `env:"IMAP_SECURE" envDefault:"true"`
	InsecureSkipVerify bool          `env:"IMAP_INSECURE_SKIP_VERIFY" envDefault:"false"`
	AuthTimeout        time.Duration `env:"IMAP_AUTH_TIMEOUT" envDefault:"30s"`
	ConnTimeout        time.Duration `env:"IMAP_CONN_TIMEOUT" envDefault:"30s"`
	CommandTimeout     time.Duration `env:"IMAP_COMMAND_TIMEOUT" envDefault:"60s"`
}

type SMTPConfig struct {
	Host               string        `env:"SMTP_HOST" envDefault:"smtp.hostinger.com"`
	Port               int           `env:"SMTP_PORT" envDefault:"587"`
	Security           string        `env:"SMTP_SECURITY" envDefault:"starttls"`
	InsecureSkipVerify bool          `env:"SMTP_INSECURE_SKIP_VERIFY" envDefault:"false"`
	Timeout            time.Duration `env:"SMTP_TIMEOUT" envDefault:"30s"`
}

type FolderConfig struct {
	Inbox  string `env:"FOLDER_INBOX" envDefault:"INBOX"`
	Sent   string `env:"FOLDER_SENT" envDefault:"INBOX.Sent"`
	Drafts string `env:"FOLDER_DRAFTS" envDefault:"INBOX.Drafts"`
	Trash  string `env:"FOLDER_TRASH" envDefault:"INBOX.Trash"`
	Junk   string `env:"FOLDER_JUNK" envDefault:"INBOX.Junk"`
}

type MailConfig struct {
	MaxEmailsPerFolder    int           `env:"MAIL_MAX_EMAILS_PER_FOLDER" envDefault:"100"`
	DefaultListLimit      int           `env:"MAIL_DEFAULT_LIST_LIMIT" envDefault:"50"`
	CacheTTL              time.Duration `env:"MAIL_CACHE_TTL" envDefault:"5m"`
	ConnectionIdleTimeout time.Duration `env:"MAIL_CONNECTION_IDLE_TIMEOUT" envDefault:"5m"`
	MaxEmailSize          int64         `env:"MAIL_MAX_EMAIL_SIZE" envDefault:"10485760"`
	DedupeListingFetches  bool          `env:"MAIL_DEDUPE_LISTING_FETCHES" envDefault:"true"`
	FetchTimeout          time.Duration `env:"MAIL_FETCH_TIMEOUT" envDefault:"60s"`
}

type ProfileConfig struct {
	DataDir          string `env:"PROFILE_DATA_DIR" envDefault:"data/profiles"`
	SignatureStorage string `env:"SIGNATURE_STORAGE" envDefault:"local"`
	SignatureDir     string `env:"SIGNATURE_DIR" envDefault:"data/signatures"`
	MaxImageBytes    int    `env:"SIGNATURE_MAX_IMAGE_BYTES" envDefault:"2097152"`
}

type S3StorageConfig struct {
	Region          string `env:"AWS_S3_REGION" envDefault:"eu-west-1"`
	AccessKeyID     string `env:"AWS_S3_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"AWS_S3_ACCESS_KEY_SECRET"`
	Bucket          string `env:"AWS_S3_BUCKET_SIGNATURES" envDefault:"signatures"`
}

type R2StorageConfig struct {
	AccountID       string `env:"CLOUDFLARE_R2_ACCOUNT_ID"`
	AccessKeyID     string `env:"CLOUDFLARE_R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"CLOUDFLARE_R2_ACCESS_KEY_SECRET"`
	Bucket          string `env:"BUCKET_NAME_SIGNATURES" envDefault:"signatures"`
}
