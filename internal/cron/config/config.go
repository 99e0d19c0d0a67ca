package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Listing cache expiry sweep, every minute
	CronScheduleCacheSweep string `env:"CRON_SCHEDULE_CACHE_SWEEP" envDefault:"30 * * * * *"`
	// Idle IMAP connection reaper, every 30 seconds
	CronScheduleConnectionReap string `env:"CRON_SCHEDULE_CONNECTION_REAP" envDefault:"*/30 * * * * *"`
}
