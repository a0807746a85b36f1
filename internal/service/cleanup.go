package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/reqtrail/reqtrail/internal/model"
	"github.com/reqtrail/reqtrail/internal/pkg/logger"
	"github.com/reqtrail/reqtrail/internal/pkg/metrics"
)

// DefaultRetentionHours is the retention window applied when neither the
// configuration nor a manual trigger supplies one.
const DefaultRetentionHours = 24

// CleanupService enforces the log retention window. A cron-driven run
// fires on the configured schedule; RunNow executes the identical deletion
// synchronously for operator triggers. Runs are independent and
// idempotent, so an overlapping or repeated run is harmless.
type CleanupService struct {
	logs           *RequestLogService
	cron           *cron.Cron
	cronEntryID    cron.EntryID
	retentionHours int
}

func NewCleanupService(logs *RequestLogService, retentionHours int, schedule string) *CleanupService {
	if retentionHours <= 0 {
		retentionHours = DefaultRetentionHours
	}
	if schedule == "" {
		schedule = "0 2 * * *"
	}

	s := &CleanupService{
		logs:           logs,
		cron:           cron.New(),
		retentionHours: retentionHours,
	}

	entryID, err := s.cron.AddFunc(schedule, s.runScheduled)
	if err != nil {
		logger.Error("invalid cleanup cron expression, falling back to default",
			"schedule", schedule, "error", err)
		// 回退到默认的每天 02:00
		s.cronEntryID, _ = s.cron.AddFunc("0 2 * * *", s.runScheduled)
	} else {
		s.cronEntryID = entryID
	}

	return s
}

func (s *CleanupService) Start() {
	s.cron.Start()
	logger.Info("cleanup scheduler started",
		"retention_hours", s.retentionHours, "next_run", s.NextRun(time.Now()))
}

func (s *CleanupService) Stop() {
	ctx := s.cron.Stop()
	// Let an in-flight run finish before shutdown proceeds.
	<-ctx.Done()
}

func (s *CleanupService) runScheduled() {
	deleted := s.logs.DeleteOldLogs(context.Background(), s.retentionHours)
	metrics.CleanupDeleted.WithLabelValues("scheduled").Add(float64(deleted))
	logger.Info("scheduled cleanup completed", "deleted", deleted,
		"retention_hours", s.retentionHours)
}

// RunNow executes a cleanup immediately. hours <= 0 selects the configured
// retention window, identical to the scheduled path.
func (s *CleanupService) RunNow(ctx context.Context, hours int) int64 {
	if hours <= 0 {
		hours = s.retentionHours
	}
	deleted := s.logs.DeleteOldLogs(ctx, hours)
	metrics.CleanupDeleted.WithLabelValues("manual").Add(float64(deleted))
	return deleted
}

// RetentionHours returns the configured default retention window.
func (s *CleanupService) RetentionHours() int {
	return s.retentionHours
}

// Stats reports the current log volume, the retention window, and when the
// next scheduled run fires.
func (s *CleanupService) Stats(ctx context.Context) (model.CleanupStats, error) {
	logStats, err := s.logs.GetStatistics(ctx)
	if err != nil {
		return model.CleanupStats{}, err
	}
	return model.CleanupStats{
		TotalLogs:      logStats.Total,
		TodayLogs:      logStats.Today,
		RetentionHours: s.retentionHours,
		NextCleanup:    s.NextRun(time.Now()),
	}, nil
}

// NextRun computes the next scheduled firing from the live cron entry,
// falling back to the default daily-02:00 rule when no entry exists.
func (s *CleanupService) NextRun(now time.Time) time.Time {
	entry := s.cron.Entry(s.cronEntryID)
	if entry.ID != 0 && entry.Schedule != nil {
		return entry.Schedule.Next(now)
	}
	return nextDailyRun(now, 2)
}

// nextDailyRun returns the next occurrence of hour o'clock: today if the
// clock has not reached it yet, otherwise tomorrow.
func nextDailyRun(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// TriggerMessage is the operator-facing summary for a manual run.
func TriggerMessage(deleted int64, hours int) string {
	return fmt.Sprintf("cleanup completed: %d logs older than %d hours deleted", deleted, hours)
}
