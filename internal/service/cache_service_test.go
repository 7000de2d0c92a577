package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/timetable-recommender-api/pkg/errors"
)

type cacheRepoStub struct {
	getErr  error
	setErr  error
	sets    int
	deleted []string
	lastTTL time.Duration
}

func (s *cacheRepoStub) Get(ctx context.Context, key string, dest interface{}) error {
	return s.getErr
}

func (s *cacheRepoStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets++
	s.lastTTL = ttl
	return s.setErr
}

func (s *cacheRepoStub) Delete(ctx context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	return nil
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &cacheRepoStub{}
	svc := NewCacheService(repo, nil, time.Minute, nil, false)

	var dest []string
	assert.False(t, svc.Get(context.Background(), "k", &dest))
	svc.Set(context.Background(), "k", dest, 0)
	assert.Zero(t, repo.sets)
}

func TestCacheServiceHitMissAndErrors(t *testing.T) {
	metrics := NewMetricsService()
	repo := &cacheRepoStub{}
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()
	var dest []string

	assert.True(t, svc.Get(ctx, "k", &dest))
	repo.getErr = appErrors.ErrCacheMiss
	assert.False(t, svc.Get(ctx, "k", &dest))
	repo.getErr = errors.New("redis down")
	assert.False(t, svc.Get(ctx, "k", &dest))

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(2), snap.CacheMisses)

	repo.setErr = errors.New("redis down")
	svc.Set(ctx, "k", dest, 0)
	assert.Equal(t, time.Minute, repo.lastTTL)

	assert.NoError(t, svc.Invalidate(ctx, "a", "b"))
	assert.Equal(t, []string{"a", "b"}, repo.deleted)
}
