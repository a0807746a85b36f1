package repository

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/reqtrail/reqtrail/internal/model"
)

// MemoryRequestLogRepo is a bounded in-memory store used when no database
// is configured, and as a test double. Oldest records are evicted once the
// bound is reached.
type MemoryRequestLogRepo struct {
	mu      sync.RWMutex
	maxSize int
	records []*model.RequestLog
}

func NewMemoryRequestLogRepo(maxSize int) *MemoryRequestLogRepo {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &MemoryRequestLogRepo{
		maxSize: maxSize,
		records: make([]*model.RequestLog, 0),
	}
}

func (r *MemoryRequestLogRepo) Insert(_ context.Context, entry *model.RequestLog) error {
	if entry == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *entry
	r.records = append(r.records, &clone)
	if len(r.records) > r.maxSize {
		r.records = r.records[len(r.records)-r.maxSize:]
	}
	return nil
}

func (r *MemoryRequestLogRepo) List(ctx context.Context, page, limit int) ([]*model.RequestLog, int64, error) {
	return r.list(ctx, "", page, limit)
}

func (r *MemoryRequestLogRepo) ListByUser(ctx context.Context, userID string, page, limit int) ([]*model.RequestLog, int64, error) {
	return r.list(ctx, userID, page, limit)
}

func (r *MemoryRequestLogRepo) list(_ context.Context, userID string, page, limit int) ([]*model.RequestLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	r.mu.RLock()
	matched := make([]*model.RequestLog, 0, len(r.records))
	for _, entry := range r.records {
		if userID != "" && (entry.UserID == nil || *entry.UserID != userID) {
			continue
		}
		matched = append(matched, entry)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []*model.RequestLog{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *MemoryRequestLogRepo) CountOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, entry := range r.records {
		if entry.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

func (r *MemoryRequestLogRepo) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	var deleted int64
	for _, entry := range r.records {
		if entry.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, entry)
	}
	r.records = kept
	return deleted, nil
}

func (r *MemoryRequestLogRepo) Stats(_ context.Context) (model.RequestLogStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stats model.RequestLogStats
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var sum int64
	for _, entry := range r.records {
		stats.Total++
		if !entry.CreatedAt.Before(midnight) {
			stats.Today++
		}
		if entry.StatusCode >= 400 {
			stats.Errors++
		}
		sum += entry.ResponseTime
	}
	if stats.Total > 0 {
		stats.AverageResponseTime = int64(math.Round(float64(sum) / float64(stats.Total)))
	}
	return stats, nil
}
