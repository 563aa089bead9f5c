package github

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/cache"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/logger"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/metrics"
)

const (
	defaultCacheTTL = 300 * time.Second
	cacheKeyPrefix  = "github_repos:"
)

// Lister fetches repositories from the upstream API.
type Lister interface {
	ListRepos(ctx context.Context, username string) ([]Repository, error)
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithCacheTTL overrides how long successful listings are cached.
func WithCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithDedupe collapses concurrent cache misses for the same account into one
// upstream fetch.
func WithDedupe(enabled bool) ServiceOption {
	return func(s *Service) {
		s.dedupe = enabled
	}
}

// Service serves repository listings from the shared store, fetching on miss.
// Only successful listings are cached.
type Service struct {
	lister Lister
	store  cache.Store
	ttl    time.Duration
	dedupe bool
	group  singleflight.Group
	log    *zap.Logger
}

// NewService constructs a Service.
func NewService(lister Lister, store cache.Store, opts ...ServiceOption) *Service {
	s := &Service{
		lister: lister,
		store:  store,
		ttl:    defaultCacheTTL,
		log:    logger.WithModule("github"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repos returns the repositories for username from cache or upstream.
func (s *Service) Repos(ctx context.Context, username string) ([]Repository, error) {
	key := cacheKeyPrefix + username

	if repos, ok := s.cached(ctx, key); ok {
		metrics.RepoCacheLookups.WithLabelValues("hit").Inc()
		return repos, nil
	}
	metrics.RepoCacheLookups.WithLabelValues("miss").Inc()

	if !s.dedupe {
		return s.fetchAndStore(ctx, key, username)
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.fetchAndStore(context.WithoutCancel(ctx), key, username)
	})
	if err != nil {
		return nil, err
	}
	return result.([]Repository), nil
}

func (s *Service) fetchAndStore(ctx context.Context, key, username string) ([]Repository, error) {
	repos, err := s.lister.ListRepos(ctx, username)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(repos)
	if err != nil {
		s.log.Warn("encode repository cache entry", zap.Error(err))
		return repos, nil
	}
	if err := s.store.Set(ctx, key, payload, s.ttl); err != nil {
		s.log.Warn("store repository cache entry", zap.String("username", username), zap.Error(err))
	}
	return repos, nil
}

func (s *Service) cached(ctx context.Context, key string) ([]Repository, bool) {
	payload, ok, err := s.store.Get(ctx, key)
	if err != nil {
		s.log.Warn("read repository cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var repos []Repository
	if err := json.Unmarshal(payload, &repos); err != nil {
		s.log.Warn("decode repository cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return repos, true
}
