package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/obe-attainment-api/pkg/errors"
)

type stubCacheRepo struct {
	store   map[string][]byte
	ttls    map[string]time.Duration
	deleted []string
	getErr  error
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
		s.ttls = make(map[string]time.Duration)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	s.ttls[key] = ttl
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := &stubCacheRepo{}
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, time.Minute, "obe", zap.NewNop(), true)
	ctx := context.Background()

	var dest map[string]int
	hit, err := cache.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "k", map[string]int{"a": 1}, 0))
	assert.Equal(t, time.Minute, repo.ttls["obe:k"])

	hit, err = cache.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, map[string]int{"a": 1}, dest)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.Equal(t, 0.5, snapshot.CacheHitRatio)
}

func TestCacheServiceGetErrorIsReported(t *testing.T) {
	repo := &stubCacheRepo{getErr: assert.AnError}
	cache := NewCacheService(repo, nil, 0, "", nil, true)

	var dest string
	hit, err := cache.Get(context.Background(), "k", &dest)
	assert.False(t, hit)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &stubCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, "obe", nil, false)
	ctx := context.Background()

	assert.False(t, cache.Enabled())
	require.NoError(t, cache.Set(ctx, "k", "v", 0))
	assert.Empty(t, repo.store)
	require.NoError(t, cache.Invalidate(ctx, "*"))
	assert.Empty(t, repo.deleted)

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
}
