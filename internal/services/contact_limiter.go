package services

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/cache"
	appErrors "github.com/Yusuf-Siddiqui-08/portfolio/pkg/errors"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/logger"
)

// Rate limit reasons reported to clients.
const (
	ReasonPerMinute = "per_minute"
	ReasonPerHour   = "per_hour"
	ReasonPerDay    = "per_day"
	ReasonDevBurst  = "dev_burst"
	ReasonDevHour   = "dev_per_hour"
	ReasonDevDay    = "dev_per_day"
)

// ContactLimits are the per-client quotas applied to every submission. A
// zero quota disables that window.
type ContactLimits struct {
	PerMinute int
	PerHour   int
	PerDay    int
}

// DevLimits are the stricter quotas applied when CAPTCHA is bypassed.
type DevLimits struct {
	Burst        int
	BurstWindow  time.Duration
	PerHour      int
	PerDay       int
	DedupeWindow time.Duration
}

type quota struct {
	reason string
	limit  int
	window time.Duration
}

// ContactLimiter enforces fixed-window submission quotas on a shared Store.
// Store failures fail open and are logged.
type ContactLimiter struct {
	store  cache.Store
	global []quota
	dev    []quota
	dedupe time.Duration
	log    *zap.Logger
}

// NewContactLimiter constructs a limiter over store.
func NewContactLimiter(store cache.Store, limits ContactLimits, dev DevLimits) *ContactLimiter {
	burstWindow := dev.BurstWindow
	if burstWindow <= 0 {
		burstWindow = time.Minute
	}
	dedupe := dev.DedupeWindow
	if dedupe <= 0 {
		dedupe = 10 * time.Minute
	}
	return &ContactLimiter{
		store: store,
		global: []quota{
			{ReasonPerMinute, limits.PerMinute, time.Minute},
			{ReasonPerHour, limits.PerHour, time.Hour},
			{ReasonPerDay, limits.PerDay, 24 * time.Hour},
		},
		dev: []quota{
			{ReasonDevBurst, dev.Burst, burstWindow},
			{ReasonDevHour, dev.PerHour, time.Hour},
			{ReasonDevDay, dev.PerDay, 24 * time.Hour},
		},
		dedupe: dedupe,
		log:    logger.WithModule("contact"),
	}
}

// CheckGlobal counts one submission for clientKey against every global window.
func (l *ContactLimiter) CheckGlobal(ctx context.Context, clientKey string) error {
	return l.check(ctx, "contact:rl:", clientKey, l.global)
}

// CheckDev counts one submission against the development counters and then
// claims the duplicate window for fingerprint.
func (l *ContactLimiter) CheckDev(ctx context.Context, clientKey, fingerprint string) error {
	if err := l.check(ctx, "contact:dev:", clientKey, l.dev); err != nil {
		return err
	}

	claimed, err := l.store.SetNX(ctx, "contact:dedupe:"+fingerprint, []byte("1"), l.dedupe)
	if err != nil {
		l.log.Warn("dedupe store unavailable", zap.Error(err))
		return nil
	}
	if !claimed {
		return appErrors.ErrDuplicate.WithDetail("retry_after", retrySeconds(l.dedupe))
	}
	return nil
}

func (l *ContactLimiter) check(ctx context.Context, prefix, clientKey string, quotas []quota) error {
	for _, q := range quotas {
		if q.limit <= 0 {
			continue
		}
		count, ttl, err := l.store.IncrementWithTTL(ctx, prefix+q.reason+":"+clientKey, q.window)
		if err != nil {
			l.log.Warn("rate limit store unavailable", zap.String("window", q.reason), zap.Error(err))
			continue
		}
		if count > int64(q.limit) {
			if ttl <= 0 {
				ttl = q.window
			}
			return appErrors.ErrRateLimit.
				WithDetail("reason", q.reason).
				WithDetail("retry_after", retrySeconds(ttl))
		}
	}
	return nil
}

func retrySeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
