package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamAttempts counts repository-listing HTTP attempts by outcome kind (ok|rate_limited|upstream_error|...).
	UpstreamAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_upstream_attempts_total",
			Help: "Total number of upstream repository listing attempts",
		},
		[]string{"outcome"},
	)

	// RepoCacheLookups counts repository cache lookups by result (hit|miss).
	RepoCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_repo_cache_lookups_total",
			Help: "Repository cache lookups",
		},
		[]string{"result"},
	)

	// TopicEnrichmentFailures counts best-effort topic lookups that were swallowed.
	TopicEnrichmentFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_topic_enrichment_failures_total",
			Help: "Topic enrichment requests that failed and yielded an empty topic list",
		},
	)

	// ContactSubmissions counts contact form outcomes (accepted|honeypot|validation_error|rate_limited|...).
	ContactSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_contact_submissions_total",
			Help: "Contact form submissions by outcome",
		},
		[]string{"outcome"},
	)

	// CaptchaVerifications counts CAPTCHA verification results by provider.
	CaptchaVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_captcha_verifications_total",
			Help: "CAPTCHA verification attempts",
		},
		[]string{"provider", "result"},
	)

	// NotificationFailures counts swallowed email notification failures.
	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "portfolio_notification_failures_total",
			Help: "Contact notification emails that failed to send",
		},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_http_latency_seconds",
			Help:    "HTTP endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
