package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reqtrail/reqtrail/internal/model"
)

func TestDeleteOlderThanStrictBoundary(t *testing.T) {
	repo := NewMemoryRequestLogRepo(100)
	ctx := context.Background()
	cutoff := time.Now().Add(-24 * time.Hour)

	require.NoError(t, repo.Insert(ctx, &model.RequestLog{ID: "older", CreatedAt: cutoff.Add(-time.Millisecond)}))
	require.NoError(t, repo.Insert(ctx, &model.RequestLog{ID: "boundary", CreatedAt: cutoff}))
	require.NoError(t, repo.Insert(ctx, &model.RequestLog{ID: "newer", CreatedAt: cutoff.Add(time.Millisecond)}))

	matched, err := repo.CountOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	deleted, err := repo.DeleteOlderThan(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	// The record exactly at the cutoff is retained.
	records, total, err := repo.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, entry := range records {
		assert.NotEqual(t, "older", entry.ID)
	}
}

func TestMemoryRepoBound(t *testing.T) {
	repo := NewMemoryRequestLogRepo(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, &model.RequestLog{
			ID:        fmt.Sprintf("r%d", i),
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	records, total, err := repo.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	// Oldest entries were evicted.
	assert.Equal(t, "r4", records[0].ID)
	assert.Equal(t, "r2", records[2].ID)
}

func TestInsertClonesEntry(t *testing.T) {
	repo := NewMemoryRequestLogRepo(10)
	ctx := context.Background()

	entry := &model.RequestLog{ID: "a", Method: "POST", CreatedAt: time.Now()}
	require.NoError(t, repo.Insert(ctx, entry))
	entry.Method = "MUTATED"

	records, _, err := repo.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "POST", records[0].Method)
}

func TestStatsEmptyStore(t *testing.T) {
	repo := NewMemoryRequestLogRepo(10)
	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.AverageResponseTime)
}
