package captcha

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/Yusuf-Siddiqui-08/portfolio/pkg/errors"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/logger"
)

// Provider names reported by verifiers and metrics.
const (
	ProviderNone      = "none"
	ProviderTurnstile = "turnstile"
	ProviderHCaptcha  = "hcaptcha"
	ProviderRecaptcha = "recaptcha"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultMinScore  = 0.5
	defaultAction    = "contact"
	turnstileURL     = "https://challenges.cloudflare.com/turnstile/v0/siteverify"
	hcaptchaURL      = "https://hcaptcha.com/siteverify"
	recaptchaURL     = "https://www.google.com/recaptcha/api/siteverify"
	maxResponseBytes = 64 << 10
)

// Failure reasons attached to captcha_failed errors.
const (
	ReasonRejected       = "rejected"
	ReasonLowScore       = "low_score"
	ReasonActionMismatch = "action_mismatch"
	ReasonUnavailable    = "verifier_unavailable"
)

// Verifier checks a client supplied challenge token.
type Verifier interface {
	// Provider names the backing service.
	Provider() string
	// Enabled reports whether verification is enforced at all.
	Enabled() bool
	// Verify returns nil when the token is accepted. Rejections are
	// *errors.AppError values with the captcha_required or captcha_failed code.
	Verify(ctx context.Context, token, remoteIP string) error
}

// Config selects and tunes the verifier.
type Config struct {
	TurnstileSecret    string
	HCaptchaSecret     string
	RecaptchaSecret    string
	RecaptchaMinScore  float64
	RecaptchaAction    string
	Timeout            time.Duration
	TurnstileVerifyURL string
	HCaptchaVerifyURL  string
	RecaptchaVerifyURL string
}

// Option customises verifiers built by New.
type Option func(*siteVerifier)

// WithHTTPClient replaces the HTTP client used to call verification endpoints.
func WithHTTPClient(hc *http.Client) Option {
	return func(v *siteVerifier) {
		if hc != nil {
			v.http = hc
		}
	}
}

// New returns the verifier for the first configured secret in Turnstile,
// hCaptcha, reCAPTCHA order. Without any secret a None verifier is returned.
func New(cfg Config, opts ...Option) Verifier {
	var v *siteVerifier
	switch {
	case strings.TrimSpace(cfg.TurnstileSecret) != "":
		v = newSiteVerifier(ProviderTurnstile, cfg.TurnstileSecret, orDefault(cfg.TurnstileVerifyURL, turnstileURL), cfg.Timeout)
	case strings.TrimSpace(cfg.HCaptchaSecret) != "":
		v = newSiteVerifier(ProviderHCaptcha, cfg.HCaptchaSecret, orDefault(cfg.HCaptchaVerifyURL, hcaptchaURL), cfg.Timeout)
	case strings.TrimSpace(cfg.RecaptchaSecret) != "":
		v = newSiteVerifier(ProviderRecaptcha, cfg.RecaptchaSecret, orDefault(cfg.RecaptchaVerifyURL, recaptchaURL), cfg.Timeout)
		v.check = scoreCheck(cfg.RecaptchaMinScore, cfg.RecaptchaAction)
	default:
		logger.WithModule("captcha").Warn("no captcha secret configured; verification disabled")
		return None{}
	}
	for _, opt := range opts {
		opt(v)
	}
	logger.WithModule("captcha").Info("captcha verifier selected", zap.String("provider", v.provider))
	return v
}

// None accepts every submission.
type None struct{}

// Provider implements Verifier.
func (None) Provider() string { return ProviderNone }

// Enabled implements Verifier.
func (None) Enabled() bool { return false }

// Verify implements Verifier.
func (None) Verify(context.Context, string, string) error { return nil }

func failed(reason string) *appErrors.AppError {
	return appErrors.ErrCaptchaFailed.WithDetail("reason", reason)
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
