package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/reqtrail/reqtrail/internal/cache"
	"github.com/reqtrail/reqtrail/internal/model"
	"github.com/reqtrail/reqtrail/internal/pkg/logger"
	"github.com/reqtrail/reqtrail/internal/pkg/metrics"
)

const statsCacheKey = "request_logs:stats"

type RequestLogRepo interface {
	Insert(ctx context.Context, entry *model.RequestLog) error
	List(ctx context.Context, page, limit int) ([]*model.RequestLog, int64, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]*model.RequestLog, int64, error)
	CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Stats(ctx context.Context) (model.RequestLogStats, error)
}

// RequestLogService is the sink for request log records. Writes flow
// through a bounded queue drained by a single consumer goroutine, so the
// request path never waits on storage. Delivery is best-effort and
// at-most-once: a full queue or a failed insert drops the entry after
// diagnostics, never retries and never surfaces to the caller.
type RequestLogService struct {
	logChan   chan *model.RequestLog
	repo      RequestLogRepo
	cache     cache.Cache
	statsTTL  time.Duration
	closing   chan struct{}
	closeOnce sync.Once
	done      chan struct{}
}

func NewRequestLogService(repo RequestLogRepo, c cache.Cache, queueSize int, statsTTL time.Duration) *RequestLogService {
	if queueSize <= 0 {
		queueSize = 1000
	}
	svc := &RequestLogService{
		logChan:  make(chan *model.RequestLog, queueSize),
		repo:     repo,
		cache:    c,
		statsTTL: statsTTL,
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}

	// 启动消费者 goroutine
	go svc.processLogs()

	return svc
}

// Submit hands a record to the sink without blocking. On a full queue or
// after Close the entry is dropped to protect the request path. The queue
// channel itself is never closed, so a late Submit can never panic.
func (s *RequestLogService) Submit(entry *model.RequestLog) {
	if entry == nil {
		return
	}
	select {
	case <-s.closing:
		metrics.RequestLogsDropped.WithLabelValues("shutdown").Inc()
		logger.Warn("request log sink closed, dropping entry",
			"method", entry.Method, "path", entry.Path)
		return
	default:
	}
	select {
	case s.logChan <- entry:
	default:
		metrics.RequestLogsDropped.WithLabelValues("queue_full").Inc()
		logger.Warn("request log queue full, dropping entry",
			"method", entry.Method, "path", entry.Path)
	}
}

func (s *RequestLogService) processLogs() {
	defer close(s.done)
	for {
		select {
		case entry := <-s.logChan:
			s.persist(entry)
		case <-s.closing:
			// Drain whatever is already queued, then exit.
			for {
				select {
				case entry := <-s.logChan:
					s.persist(entry)
				default:
					return
				}
			}
		}
	}
}

func (s *RequestLogService) persist(entry *model.RequestLog) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Insert(context.Background(), entry); err != nil {
		metrics.RequestLogsDropped.WithLabelValues("store_error").Inc()
		logger.Error("failed to persist request log", "error", err,
			"method", entry.Method, "path", entry.Path)
		return
	}
	metrics.RequestLogsWritten.Inc()
}

// Close stops accepting records and waits for the queue to drain. Safe to
// call more than once; Submit after Close is a no-op drop, never a panic.
func (s *RequestLogService) Close() {
	s.closeOnce.Do(func() {
		close(s.closing)
	})
	<-s.done
}

func (s *RequestLogService) GetRequestLogs(ctx context.Context, page, limit int) (*model.PagedRequestLogs, error) {
	page, limit = normalizePage(page, limit)
	records, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return model.NewPagedRequestLogs(records, total, page, limit), nil
}

func (s *RequestLogService) GetUserRequestLogs(ctx context.Context, userID string, page, limit int) (*model.PagedRequestLogs, error) {
	page, limit = normalizePage(page, limit)
	records, total, err := s.repo.ListByUser(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	return model.NewPagedRequestLogs(records, total, page, limit), nil
}

// DeleteOldLogs removes every record strictly older than now minus the
// given number of hours and returns the deleted count. Storage errors are
// logged and reported as zero deletions; a failed cleanup must never crash
// the scheduler or the trigger endpoint.
func (s *RequestLogService) DeleteOldLogs(ctx context.Context, hours int) int64 {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour)

	// 删除前先统计数量, 用于诊断输出
	matched, err := s.repo.CountOlderThan(ctx, cutoff)
	if err != nil {
		logger.Error("failed to count old request logs", "error", err, "cutoff", cutoff)
		return 0
	}
	if matched == 0 {
		logger.Debug("no request logs older than cutoff", "cutoff", cutoff)
		return 0
	}

	deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logger.Error("failed to delete old request logs", "error", err,
			"cutoff", cutoff, "matched", matched)
		return 0
	}

	if s.cache != nil {
		s.cache.Delete(ctx, statsCacheKey)
	}
	logger.Info("deleted old request logs", "deleted", deleted, "hours", hours)
	return deleted
}

// GetStatistics returns aggregate counts over the stored records, served
// through a short-TTL cache when one is configured.
func (s *RequestLogService) GetStatistics(ctx context.Context) (model.RequestLogStats, error) {
	if s.cache == nil || s.statsTTL <= 0 {
		return s.repo.Stats(ctx)
	}

	raw, err := s.cache.GetOrSet(ctx, statsCacheKey, s.statsTTL, func(ctx context.Context) (string, error) {
		stats, err := s.repo.Stats(ctx)
		if err != nil {
			return "", err
		}
		out, err := json.Marshal(stats)
		if err != nil {
			return "", err
		}
		return string(out), nil
	})
	if err != nil {
		return model.RequestLogStats{}, err
	}

	var stats model.RequestLogStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		// Poisoned cache entry, recompute directly.
		s.cache.Delete(ctx, statsCacheKey)
		return s.repo.Stats(ctx)
	}
	return stats, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	return page, limit
}
