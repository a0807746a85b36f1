package repository

import (
	"context"
	"math"
	"time"

	"github.com/reqtrail/reqtrail/internal/model"
	"gorm.io/gorm"
)

type PostgresRequestLogRepo struct {
	db *gorm.DB
}

func NewPostgresRequestLogRepo(db *gorm.DB) (*PostgresRequestLogRepo, error) {
	if err := db.AutoMigrate(&model.RequestLog{}); err != nil {
		return nil, err
	}
	return &PostgresRequestLogRepo{db: db}, nil
}

func (r *PostgresRequestLogRepo) Insert(ctx context.Context, entry *model.RequestLog) error {
	if entry == nil {
		return nil
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *PostgresRequestLogRepo) List(ctx context.Context, page, limit int) ([]*model.RequestLog, int64, error) {
	return r.list(ctx, "", page, limit)
}

func (r *PostgresRequestLogRepo) ListByUser(ctx context.Context, userID string, page, limit int) ([]*model.RequestLog, int64, error) {
	return r.list(ctx, userID, page, limit)
}

func (r *PostgresRequestLogRepo) list(ctx context.Context, userID string, page, limit int) ([]*model.RequestLog, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.RequestLog{})
	if userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []*model.RequestLog
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

func (r *PostgresRequestLogRepo) CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RequestLog{}).
		Where("created_at < ?", cutoff).
		Count(&count).Error
	return count, err
}

// DeleteOlderThan removes every record strictly older than cutoff in a
// single set-based DELETE and returns the number of affected rows.
func (r *PostgresRequestLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.RequestLog{})
	return res.RowsAffected, res.Error
}

func (r *PostgresRequestLogRepo) Stats(ctx context.Context) (model.RequestLogStats, error) {
	var stats model.RequestLogStats

	db := r.db.WithContext(ctx).Model(&model.RequestLog{})
	if err := db.Count(&stats.Total).Error; err != nil {
		return stats, err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if err := r.db.WithContext(ctx).Model(&model.RequestLog{}).
		Where("created_at >= ?", midnight).
		Count(&stats.Today).Error; err != nil {
		return stats, err
	}

	if err := r.db.WithContext(ctx).Model(&model.RequestLog{}).
		Where("status_code >= ?", 400).
		Count(&stats.Errors).Error; err != nil {
		return stats, err
	}

	var avg float64
	if err := r.db.WithContext(ctx).Model(&model.RequestLog{}).
		Select("COALESCE(AVG(response_time), 0)").
		Scan(&avg).Error; err != nil {
		return stats, err
	}
	stats.AverageResponseTime = int64(math.Round(avg))

	return stats, nil
}
