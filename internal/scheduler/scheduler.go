package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/animestore-backend/config"
	"github.com/ikkim/animestore-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

// NotificationJobs is the part of the notification service the cron jobs drive.
type NotificationJobs interface {
	ScanLowStock(ctx context.Context) (int, error)
	PurgeRead(ctx context.Context, olderThan time.Duration) (int64, error)
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	cron          *cron.Cron
	notifications NotificationJobs
	cfg           config.SchedulerConfig
}

func New(notifications NotificationJobs, cfg config.SchedulerConfig) *Scheduler {
	return &Scheduler{
		cron:          cron.New(cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{}))),
		notifications: notifications,
		cfg:           cfg,
	}
}

// Start registers the jobs and starts the cron loop. Invalid specs are
// reported before anything runs.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.LowStockSpec, s.scanLowStock); err != nil {
		logger.Error("Failed to add low stock job", err, map[string]interface{}{
			"spec": s.cfg.LowStockSpec,
		})
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.PurgeSpec, s.purgeNotifications); err != nil {
		logger.Error("Failed to add notification purge job", err, map[string]interface{}{
			"spec": s.cfg.PurgeSpec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Scheduler started", map[string]interface{}{
		"low_stock_spec": s.cfg.LowStockSpec,
		"purge_spec":     s.cfg.PurgeSpec,
	})
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	logger.Info("Stopping scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Scheduler stopped")
}

func (s *Scheduler) scanLowStock() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	created, err := s.notifications.ScanLowStock(ctx)
	if err != nil {
		logger.Error("Low stock scan failed", err)
		return
	}
	logger.Info("Low stock scan finished", map[string]interface{}{
		"notifications_created": created,
	})
}

func (s *Scheduler) purgeNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	olderThan := time.Duration(s.cfg.PurgeAfterDays) * 24 * time.Hour
	deleted, err := s.notifications.PurgeRead(ctx, olderThan)
	if err != nil {
		logger.Error("Notification purge failed", err)
		return
	}
	logger.Info("Read notifications purged", map[string]interface{}{
		"deleted":    deleted,
		"older_than": olderThan.String(),
	})
}

// cronLogger adapts the package logger to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, kvFields(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, err, kvFields(keysAndValues))
}

func kvFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return fields
}
