package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/logger"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/metrics"
)

const (
	defaultBaseURL        = "https://api.github.com"
	defaultUserAgent      = "PortfolioApp/1.0"
	defaultPerPage        = 20
	defaultSort           = "updated"
	defaultTimeout        = 7 * time.Second
	defaultTopicsTimeout  = 5 * time.Second
	defaultMaxAttempts    = 3
	defaultInitialBackoff = time.Second
	defaultTopicWorkers   = 4

	acceptHeader = "application/vnd.github+json"
	maxErrorBody = 4 << 10
)

// Config configures the upstream client.
type Config struct {
	BaseURL           string
	Token             string
	UserAgent         string
	PerPage           int
	Sort              string
	Timeout           time.Duration
	TopicsTimeout     time.Duration
	MaxAttempts       int
	InitialBackoff    time.Duration
	EnrichTopics      bool
	TopicsConcurrency int
}

func (c Config) withDefaults() Config {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if strings.TrimSpace(c.UserAgent) == "" {
		c.UserAgent = defaultUserAgent
	}
	if c.PerPage <= 0 {
		c.PerPage = defaultPerPage
	}
	if c.Sort == "" {
		c.Sort = defaultSort
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.TopicsTimeout <= 0 {
		c.TopicsTimeout = defaultTopicsTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = defaultInitialBackoff
	}
	if c.TopicsConcurrency <= 0 {
		c.TopicsConcurrency = defaultTopicWorkers
	}
	return c
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client used for upstream calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimer injects the timer used between retry attempts.
func WithTimer(t backoff.Timer) ClientOption {
	return func(c *Client) {
		c.timer = t
	}
}

// WithNow overrides the clock used to render rate limit reset hints.
func WithNow(now func() time.Time) ClientOption {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// Client lists repositories for an account with bounded retries.
type Client struct {
	cfg   Config
	http  *http.Client
	timer backoff.Timer
	now   func() time.Time
	log   *zap.Logger
}

// NewClient constructs a Client.
func NewClient(cfg Config, opts ...ClientOption) *Client {
	c := &Client{
		cfg:  cfg.withDefaults(),
		http: &http.Client{},
		now:  time.Now,
		log:  logger.WithModule("github"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListRepos fetches the repository list for username. Rate limiting and
// unexpected statuses fail immediately; 5xx responses, timeouts and transport
// faults are retried with exponential backoff until MaxAttempts is reached.
// Every failure is returned as a *FetchError.
func (c *Client) ListRepos(ctx context.Context, username string) ([]Repository, error) {
	var (
		repos   []Repository
		lastErr *FetchError
		attempt int
	)

	operation := func() error {
		attempt++
		result, ferr := c.listOnce(ctx, username)
		if ferr == nil {
			metrics.UpstreamAttempts.WithLabelValues("ok").Inc()
			repos = result
			return nil
		}

		metrics.UpstreamAttempts.WithLabelValues(string(ferr.Kind)).Inc()
		lastErr = ferr
		if !ferr.Retryable() {
			return backoff.Permanent(ferr)
		}
		return ferr
	}

	notify := func(err error, wait time.Duration) {
		c.log.Warn("repository fetch failed, retrying",
			zap.String("username", username),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(c.newBackOff(), uint64(c.cfg.MaxAttempts-1)),
		ctx,
	)
	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, c.timer); err != nil {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, transportError(err)
	}

	if c.cfg.EnrichTopics {
		c.enrichTopics(ctx, username, repos)
	}
	for i := range repos {
		if repos[i].Topics == nil {
			repos[i].Topics = []string{}
		}
	}
	return repos, nil
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialBackoff
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = c.cfg.InitialBackoff << uint(c.cfg.MaxAttempts)
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func (c *Client) listOnce(ctx context.Context, username string) ([]Repository, *FetchError) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.reposURL(username), nil)
	if err != nil {
		return nil, transportError(err)
	}
	c.decorate(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	status := resp.StatusCode
	switch {
	case status == http.StatusOK:
		var repos []Repository
		if err := json.NewDecoder(resp.Body).Decode(&repos); err != nil {
			return nil, transportError(fmt.Errorf("decode repositories: %w", err))
		}
		return repos, nil
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		drain(resp.Body)
		return nil, &FetchError{
			Kind:    KindRateLimited,
			Status:  status,
			Message: c.rateLimitMessage(resp.Header),
		}
	case status >= 500 && status < 600:
		drain(resp.Body)
		return nil, &FetchError{
			Kind:    KindUpstreamError,
			Status:  status,
			Message: fmt.Sprintf("GitHub returned %d", status),
		}
	default:
		drain(resp.Body)
		return nil, &FetchError{
			Kind:    KindBadStatus,
			Status:  status,
			Message: fmt.Sprintf("GitHub returned %d", status),
		}
	}
}

func (c *Client) rateLimitMessage(h http.Header) string {
	msg := "GitHub API rate limit reached"
	if retryAfter := strings.TrimSpace(h.Get("Retry-After")); retryAfter != "" {
		return msg + "; retry after " + retryAfter + "s"
	}
	if reset := strings.TrimSpace(h.Get("X-RateLimit-Reset")); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil {
			wait := epoch - c.now().Unix()
			if wait < 0 {
				wait = 0
			}
			return fmt.Sprintf("%s; retry in ~%ds", msg, wait)
		}
	}
	return msg
}

func (c *Client) reposURL(username string) string {
	query := url.Values{}
	query.Set("per_page", strconv.Itoa(c.cfg.PerPage))
	query.Set("sort", c.cfg.Sort)
	return c.cfg.BaseURL + "/users/" + url.PathEscape(username) + "/repos?" + query.Encode()
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if token := strings.TrimSpace(c.cfg.Token); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func drain(body io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBody))
}
