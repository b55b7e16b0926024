package jobs

import (
	"context"
	"log"
	"time"

	"github.com/jordanlanch/trainhub/pkg/badge"
	"github.com/jordanlanch/trainhub/pkg/cache"
	"github.com/jordanlanch/trainhub/pkg/metrics"
	"github.com/robfig/cron/v3"
)

const badgeJobLock = "badge-aggregation"

// CronManager manages scheduled jobs
type CronManager struct {
	cron    *cron.Cron
	badges  *badge.Service
	cache   *cache.Client
	metrics *metrics.Metrics
	logger  *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(badges *badge.Service, cache *cache.Client, m *metrics.Metrics, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:    cron.New(),
		badges:  badges,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	// Daily at 2 AM: recompute every user's badge summary
	_, err := cm.cron.AddFunc("0 2 * * *", func() {
		cm.RunBadgeAggregation()
	})
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Println("  - Daily at 2 AM: badge aggregation")

	return nil
}

// RunBadgeAggregation executes one badge recalculation run. A Redis
// lock guards against a trigger firing while the previous run is still
// active; the overlapping run is skipped, not queued.
func (cm *CronManager) RunBadgeAggregation() {
	cm.logger.Println("🕐 Running daily badge aggregation job...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	acquired, err := cm.cache.AcquireLock(ctx, badgeJobLock, time.Hour)
	if err != nil {
		cm.logger.Printf("❌ Failed to acquire badge job lock: %v", err)
		cm.metrics.RecordJobRun("badge_aggregation", "lock_error")
		return
	}
	if !acquired {
		cm.logger.Println("⏭  Previous badge aggregation run still active, skipping")
		cm.metrics.RecordJobRun("badge_aggregation", "skipped")
		return
	}
	defer cm.cache.ReleaseLock(context.Background(), badgeJobLock)

	summary, err := cm.badges.CalculateAllUserBadges(ctx)
	if err != nil {
		cm.logger.Printf("❌ Badge aggregation aborted: %v", err)
		cm.metrics.RecordJobRun("badge_aggregation", "error")
		return
	}

	if summary.Failed > 0 {
		cm.logger.Printf("⚠️  Badge aggregation completed with errors: %d processed, %d failed", summary.Processed, summary.Failed)
		cm.metrics.RecordJobRun("badge_aggregation", "partial")
		return
	}

	cm.logger.Printf("✅ Badge aggregation completed: %d users processed", summary.Processed)
	cm.metrics.RecordJobRun("badge_aggregation", "success")
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	cm.cron.Stop()
}
