package cron

import (
	"context"
	"os"
	"sync"

	cronv3 "github.com/robfig/cron/v3"
	"go.uber.org/zap"

	cron_config "github.com/customeros/mailadmin/internal/cron/config"
	"github.com/customeros/mailadmin/internal/logger"
	"github.com/customeros/mailadmin/internal/tracing"
)

const (
	// GroupCache is the group for listing cache jobs
	GroupCache = "cache"
	// GroupConnections is the group for pooled connection jobs
	GroupConnections = "connections"
)

var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupCache:       new(sync.Mutex),
		GroupConnections: new(sync.Mutex),
	},
}

// CacheSweeper drops expired listing partitions.
type CacheSweeper interface {
	Sweep() int
	Len() int
}

// ConnectionReaper closes pooled connections idle past their timeout.
type ConnectionReaper interface {
	CloseIdle() int
	Size() int
}

type CronManager struct {
	cfg      *cron_config.Config
	log      logger.Logger
	cron     *cronv3.Cron
	stopCh   chan struct{}
	stopOnce sync.Once
	jobIDs   map[string]cronv3.EntryID
	cache    CacheSweeper
	reaper   ConnectionReaper
}

func NewCronManager(cfg *cron_config.Config, log logger.Logger, cache CacheSweeper, reaper ConnectionReaper) *CronManager {
	return &CronManager{
		cfg:    cfg,
		log:    log,
		stopCh: make(chan struct{}),
		jobIDs: make(map[string]cronv3.EntryID),
		cache:  cache,
		reaper: reaper,
	}
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	cm.stopOnce.Do(func() {
		if cm.cron != nil {
			cm.log.Info("Stopping cron manager")
			ctx := cm.cron.Stop()
			// Wait for jobs to finish
			<-ctx.Done()
		}
		close(cm.stopCh)
	})
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) error {
	if cm.cfg.CronScheduleHeartbeat != "" {
		podName := os.Getenv("POD_NAME")
		if podName == "" {
			podName = "local"
		}
		id, err := c.AddFunc(cm.cfg.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.heartbeat(podName)
		})
		if err != nil {
			return err
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cm.cfg.CronScheduleHeartbeat)
	}

	if cm.cfg.CronScheduleCacheSweep != "" && cm.cache != nil {
		id, err := c.AddFunc(cm.cfg.CronScheduleCacheSweep, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupCache].Lock()
			defer jobLocks.locks[GroupCache].Unlock()
			cm.sweepListingCache()
		})
		if err != nil {
			return err
		}
		cm.jobIDs["cache_sweep"] = id
		cm.log.Infof("Registered cache sweep job with schedule: %s", cm.cfg.CronScheduleCacheSweep)
	}

	if cm.cfg.CronScheduleConnectionReap != "" && cm.reaper != nil {
		id, err := c.AddFunc(cm.cfg.CronScheduleConnectionReap, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupConnections].Lock()
			defer jobLocks.locks[GroupConnections].Unlock()
			cm.reapIdleConnections()
		})
		if err != nil {
			return err
		}
		cm.jobIDs["connection_reap"] = id
		cm.log.Infof("Registered connection reap job with schedule: %s", cm.cfg.CronScheduleConnectionReap)
	}

	return nil
}

// StartCron initializes and starts the cron scheduler
func (cm *CronManager) StartCron() error {
	cm.log.Info("Starting cron manager")
	// seconds field enabled, overlapping runs skipped
	c := cronv3.New(
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	)
	if err := cm.registerJobs(c); err != nil {
		return err
	}
	c.Start()
	cm.cron = c
	return nil
}

func (cm *CronManager) heartbeat(podName string) {
	fields := []zap.Field{zap.String("pod", podName)}
	if cm.cache != nil {
		fields = append(fields, zap.Int("partitions", cm.cache.Len()))
	}
	if cm.reaper != nil {
		fields = append(fields, zap.Int("connections", cm.reaper.Size()))
	}
	cm.log.Info("Cron heartbeat", fields...)
}

func (cm *CronManager) sweepListingCache() {
	span, _ := tracing.StartTracerSpan(context.Background(), "CronManager.sweepListingCache")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	removed := cm.cache.Sweep()
	span.SetTag("removed", removed)
	if removed > 0 {
		cm.log.Info("Swept expired listing partitions", zap.Int("removed", removed), zap.Int("remaining", cm.cache.Len()))
	}
}

func (cm *CronManager) reapIdleConnections() {
	span, _ := tracing.StartTracerSpan(context.Background(), "CronManager.reapIdleConnections")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	closed := cm.reaper.CloseIdle()
	span.SetTag("closed", closed)
	if closed > 0 {
		cm.log.Info("Closed idle mailbox connections", zap.Int("closed", closed), zap.Int("remaining", cm.reaper.Size()))
	}
}
