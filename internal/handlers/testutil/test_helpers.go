package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/api"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/app"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/cache"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/captcha"
	sharedtestutil "github.com/Yusuf-Siddiqui-08/portfolio/internal/database/testutil"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/github"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/handlers"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/middleware"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/services"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/mail"
	"github.com/Yusuf-Siddiqui-08/portfolio/web"
)

const (
	// Username is the default GitHub account served by the test upstream.
	Username = "octocat"
	// CanonicalHost is the production host for contact submissions. Requests
	// to any other host take the development path.
	CanonicalHost = "portfolio.test"
	// PassToken is the only CAPTCHA token the test verifier accepts.
	PassToken = "pass-token"
)

// Env encapsulates a fully-wired router backed by an in-memory database, an
// in-memory cache and fake GitHub and CAPTCHA endpoints.
type Env struct {
	T        *testing.T
	DB       *gorm.DB
	Store    *cache.MemoryStore
	Router   *gin.Engine
	Config   *app.Config
	Upstream *Upstream
	Mailer   *Mailer
}

// Option adjusts the configuration before the router is built.
type Option func(*app.Config)

// NewEnv provisions a fresh handler test environment.
func NewEnv(t *testing.T, opts ...Option) *Env {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db := sharedtestutil.MustOpenTestDB(t, sharedtestutil.WithAutoMigrate())
	store := cache.NewMemoryStore(cache.WithSweepInterval(time.Hour))
	t.Cleanup(func() { _ = store.Close() })

	upstream := NewUpstream(t)
	verifier := newSiteverify(t)

	cfg := &app.Config{
		Server: app.ServerConfig{
			SiteName:     "Test Portfolio",
			AssetVersion: "test-assets",
		},
		GitHub: app.GitHubConfig{
			Username:    Username,
			APIBaseURL:  upstream.URL(),
			Timeout:     time.Second,
			MaxAttempts: 1,
			CacheTTL:    300 * time.Second,
		},
		Contact: app.ContactConfig{
			MinMessageLength: 20,
			Limits:           app.ContactLimitConfig{PerMinute: 3, PerHour: 10, PerDay: 30},
			Dev:              app.DevLimitConfig{Burst: 2, BurstWindow: time.Minute, PerHour: 5, PerDay: 20, DedupeWindow: 10 * time.Minute},
			NotifyTo:         []string{"owner@example.com"},
			FingerprintKey:   "test-fingerprint-key",
		},
		Captcha: app.CaptchaConfig{
			TurnstileSecret:    "turnstile-secret",
			TurnstileSiteKey:   "turnstile-site-key",
			TurnstileVerifyURL: verifier.URL,
			Timeout:            time.Second,
		},
		RateLimit: app.RateLimitConfig{
			Enabled: true,
			API:     app.RateQuota{Requests: 100, Window: time.Minute},
			Feed:    app.RateQuota{Requests: 100, Window: time.Minute},
		},
		Monitoring: app.MonitoringConfig{
			Prometheus: app.PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	client := github.NewClient(cfg.GitHub.ClientConfig())
	repos := github.NewService(client, store,
		github.WithCacheTTL(cfg.GitHub.CacheTTL),
		github.WithDedupe(cfg.GitHub.DedupeFetches),
	)

	mailer := &Mailer{}
	contact, err := services.NewContactService(db, store,
		captcha.New(cfg.Captcha.VerifierConfig()), mailer,
		cfg.Contact.Settings(CanonicalHost),
		services.WithSyncNotify(),
	)
	require.NoError(t, err)

	pages, err := handlers.NewPages(web.Templates(), handlers.PageConfig{
		SiteName:         cfg.Server.SiteName,
		Username:         cfg.GitHub.Username,
		AssetVersion:     cfg.Server.AssetVersion,
		CaptchaProvider:  captcha.ProviderTurnstile,
		CaptchaSiteKey:   cfg.Captcha.TurnstileSiteKey,
		MinMessageLength: cfg.Contact.MinMessageLength,
	})
	require.NoError(t, err)

	static, err := web.Static()
	require.NoError(t, err)

	router, err := api.NewRouter(cfg, api.Dependencies{
		DB:        db,
		Repos:     repos,
		Search:    services.NewSearchService(repos),
		Feed:      services.NewFeedService(repos),
		Contact:   contact,
		Pages:     pages,
		RateStore: middleware.NewStoreRateStore(store),
		Static:    static,
	})
	require.NoError(t, err)

	return &Env{
		T:        t,
		DB:       db,
		Store:    store,
		Router:   router,
		Config:   cfg,
		Upstream: upstream,
		Mailer:   mailer,
	}
}

// Request executes an HTTP request against the test router. Non-nil bodies
// are JSON encoded. A "Host" entry in headers sets the request host.
func (e *Env) Request(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	e.T.Helper()

	var buf *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.T, err)
		buf = bytes.NewBuffer(data)
	} else {
		buf = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.serve(req, headers)
}

// PostForm submits form as application/x-www-form-urlencoded.
func (e *Env) PostForm(path string, form url.Values, headers map[string]string) *httptest.ResponseRecorder {
	e.T.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.serve(req, headers)
}

func (e *Env) serve(req *http.Request, headers map[string]string) *httptest.ResponseRecorder {
	req.RemoteAddr = "203.0.113.10:41000"
	req.Header.Set("User-Agent", "handler-tests/1.0")
	for key, value := range headers {
		if strings.EqualFold(key, "Host") {
			req.Host = value
			continue
		}
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// DecodeJSON parses the response body into a generic map.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

// DecodeInto unmarshals the response body into dest.
func DecodeInto[T any](t *testing.T, w *httptest.ResponseRecorder, dest *T) {
	t.Helper()
	if dest == nil {
		t.Fatal("destination must not be nil")
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

// Upstream is a fake GitHub API serving canned repository listings.
type Upstream struct {
	server *httptest.Server
	calls  atomic.Int64

	mu     sync.Mutex
	repos  map[string][]map[string]any
	status int
}

// NewUpstream starts a fake GitHub API closed via t.Cleanup.
func NewUpstream(t *testing.T) *Upstream {
	t.Helper()

	u := &Upstream{repos: make(map[string][]map[string]any)}
	u.server = httptest.NewServer(http.HandlerFunc(u.serveHTTP))
	t.Cleanup(u.server.Close)
	return u
}

// URL returns the API base URL.
func (u *Upstream) URL() string {
	return u.server.URL
}

// Calls reports how many repository listings were requested.
func (u *Upstream) Calls() int64 {
	return u.calls.Load()
}

// SetRepos replaces the listing returned for username.
func (u *Upstream) SetRepos(username string, repos ...map[string]any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.repos[username] = repos
}

// FailWith makes every listing answer status. Zero restores normal service.
func (u *Upstream) FailWith(status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = status
}

// Repo builds a listing entry in the upstream wire format.
func Repo(name string, stars int, pushedAt time.Time, topics ...string) map[string]any {
	if topics == nil {
		topics = []string{}
	}
	return map[string]any{
		"name":             name,
		"full_name":        Username + "/" + name,
		"html_url":         "https://github.com/" + Username + "/" + name,
		"description":      "The " + name + " project",
		"language":         "Go",
		"stargazers_count": stars,
		"forks_count":      1,
		"pushed_at":        pushedAt.UTC().Format(time.RFC3339),
		"updated_at":       pushedAt.UTC().Format(time.RFC3339),
		"topics":           topics,
	}
}

func (u *Upstream) serveHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if strings.HasSuffix(r.URL.Path, "/topics") {
		_ = json.NewEncoder(w).Encode(map[string]any{"names": []string{}})
		return
	}

	username, ok := strings.CutPrefix(r.URL.Path, "/users/")
	username, ok2 := strings.CutSuffix(username, "/repos")
	if !ok || !ok2 {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		return
	}
	u.calls.Add(1)

	u.mu.Lock()
	status := u.status
	repos, known := u.repos[username]
	u.mu.Unlock()

	switch {
	case status != 0:
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"message":"failure"}`))
	case !known:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"Not Found"}`))
	default:
		_ = json.NewEncoder(w).Encode(repos)
	}
}

// newSiteverify starts a fake CAPTCHA endpoint that accepts PassToken only.
func newSiteverify(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": r.PostForm.Get("response") == PassToken,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

// Mailer records every notification it is asked to send.
type Mailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

// Send records msg.
func (m *Mailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *Mailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}
