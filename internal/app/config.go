package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config represents the runtime configuration for the portfolio service.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Cache       CacheConfig       `mapstructure:"cache"`
	GitHub      GitHubConfig      `mapstructure:"github"`
	Contact     ContactConfig     `mapstructure:"contact"`
	Captcha     CaptchaConfig     `mapstructure:"captcha"`
	RateLimit   RateLimitConfig   `mapstructure:"rate_limit"`
	Email       EmailConfig       `mapstructure:"email"`
	Monitoring  MonitoringConfig  `mapstructure:"monitoring"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	SiteName        string        `mapstructure:"site_name"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	CanonicalHost   string        `mapstructure:"canonical_host"`
	ForceHTTPS      bool          `mapstructure:"force_https"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
	StaticDir       string        `mapstructure:"static_dir"`
	ImagesDir       string        `mapstructure:"images_dir"`
	AssetVersion    string        `mapstructure:"asset_version"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// CacheConfig selects the shared Store backend.
type CacheConfig struct {
	Backend       string           `mapstructure:"backend"`
	SweepInterval time.Duration    `mapstructure:"sweep_interval"`
	Redis         RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// GitHubConfig configures the upstream repository listing client.
type GitHubConfig struct {
	Username          string        `mapstructure:"username"`
	Token             string        `mapstructure:"token"`
	APIBaseURL        string        `mapstructure:"api_base_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	PerPage           int           `mapstructure:"per_page"`
	Sort              string        `mapstructure:"sort"`
	Timeout           time.Duration `mapstructure:"timeout"`
	TopicsTimeout     time.Duration `mapstructure:"topics_timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff"`
	CacheTTL          time.Duration `mapstructure:"cache_ttl"`
	EnrichTopics      bool          `mapstructure:"enrich_topics"`
	TopicsConcurrency int           `mapstructure:"topics_concurrency"`
	DedupeFetches     bool          `mapstructure:"dedupe_fetches"`
}

// ContactConfig tunes the contact submission pipeline.
type ContactConfig struct {
	MinMessageLength int                `mapstructure:"min_message_length"`
	Limits           ContactLimitConfig `mapstructure:"limits"`
	Dev              DevLimitConfig     `mapstructure:"dev"`
	NotifyTo         []string           `mapstructure:"notify_to"`
	FingerprintKey   string             `mapstructure:"fingerprint_key"`
}

// ContactLimitConfig holds the global per-client quotas.
type ContactLimitConfig struct {
	PerMinute int `mapstructure:"per_minute"`
	PerHour   int `mapstructure:"per_hour"`
	PerDay    int `mapstructure:"per_day"`
}

// DevLimitConfig holds the stricter counters applied when CAPTCHA is bypassed.
type DevLimitConfig struct {
	Burst        int           `mapstructure:"burst"`
	BurstWindow  time.Duration `mapstructure:"burst_window"`
	PerHour      int           `mapstructure:"per_hour"`
	PerDay       int           `mapstructure:"per_day"`
	DedupeWindow time.Duration `mapstructure:"dedupe_window"`
}

// CaptchaConfig carries provider secrets. The first configured provider in
// Turnstile, hCaptcha, reCAPTCHA order is used.
type CaptchaConfig struct {
	TurnstileSecret    string        `mapstructure:"turnstile_secret"`
	HCaptchaSecret     string        `mapstructure:"hcaptcha_secret"`
	RecaptchaSecret    string        `mapstructure:"recaptcha_secret"`
	RecaptchaMinScore  float64       `mapstructure:"recaptcha_min_score"`
	RecaptchaAction    string        `mapstructure:"recaptcha_action"`
	Timeout            time.Duration `mapstructure:"timeout"`
	TurnstileVerifyURL string        `mapstructure:"turnstile_verify_url"`
	HCaptchaVerifyURL  string        `mapstructure:"hcaptcha_verify_url"`
	RecaptchaVerifyURL string        `mapstructure:"recaptcha_verify_url"`
	TurnstileSiteKey   string        `mapstructure:"turnstile_site_key"`
	HCaptchaSiteKey    string        `mapstructure:"hcaptcha_site_key"`
	RecaptchaSiteKey   string        `mapstructure:"recaptcha_site_key"`
}

// RateLimitConfig configures request quotas for the JSON API.
type RateLimitConfig struct {
	Enabled bool      `mapstructure:"enabled"`
	API     RateQuota `mapstructure:"api"`
	Feed    RateQuota `mapstructure:"feed"`
}

// RateQuota is a request budget over a fixed window.
type RateQuota struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	SMTP SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// MonitoringConfig enables metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// MaintenanceConfig schedules background cleanup.
type MaintenanceConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	CacheSchedule string `mapstructure:"cache_schedule"`
}

// legacyEnv maps configuration keys to the bare environment variable names the
// service has historically been deployed with. The prefixed name always wins.
var legacyEnv = map[string][]string{
	"server.host":                 {"HOST"},
	"server.port":                 {"PORT"},
	"server.canonical_host":       {"CANONICAL_HOST"},
	"server.force_https":          {"FORCE_HTTPS"},
	"server.asset_version":        {"ASSET_VERSION"},
	"database.path":               {"DB_PATH"},
	"database.dsn":                {"DATABASE_URL"},
	"database.postgres.host":      {"PGHOST"},
	"database.postgres.port":      {"PGPORT"},
	"database.postgres.database":  {"PGDATABASE"},
	"database.postgres.username":  {"PGUSER"},
	"database.postgres.password":  {"PGPASSWORD"},
	"database.postgres.sslmode":   {"PGSSLMODE", "DATABASE_SSLMODE"},
	"cache.redis.address":         {"REDIS_ADDRESS"},
	"github.username":             {"GITHUB_USERNAME"},
	"github.token":                {"GITHUB_TOKEN"},
	"contact.min_message_length":  {"CONTACT_MIN_MESSAGE_LENGTH"},
	"contact.notify_to":           {"CONTACT_NOTIFY_TO"},
	"captcha.turnstile_secret":    {"TURNSTILE_SECRET_KEY"},
	"captcha.hcaptcha_secret":     {"HCAPTCHA_SECRET"},
	"captcha.recaptcha_secret":    {"RECAPTCHA_SECRET"},
	"captcha.recaptcha_min_score": {"RECAPTCHA_MIN_SCORE"},
	"captcha.recaptcha_action":    {"RECAPTCHA_ACTION"},
	"captcha.turnstile_site_key":  {"TURNSTILE_SITE_KEY"},
	"captcha.hcaptcha_site_key":   {"HCAPTCHA_SITE_KEY"},
	"captcha.recaptcha_site_key":  {"RECAPTCHA_SITE_KEY"},
	"email.smtp.host":             {"SMTP_HOST"},
	"email.smtp.port":             {"SMTP_PORT"},
	"email.smtp.username":         {"SMTP_USER"},
	"email.smtp.password":         {"SMTP_PASS"},
	"email.smtp.from":             {"SMTP_FROM"},
}

const envPrefix = "PORTFOLIO"

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding values that are already set. Missing files
// are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := bindLegacyEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	return &config, nil
}

func bindLegacyEnv(v *viper.Viper) error {
	replacer := strings.NewReplacer(".", "_")
	for key, names := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(replacer.Replace(key))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return fmt.Errorf("config: bind env %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.site_name", "Yusuf Siddiqui")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.canonical_host", "")
	v.SetDefault("server.force_https", false)
	v.SetDefault("server.trusted_proxies", []string{})
	v.SetDefault("server.static_dir", "./static")
	v.SetDefault("server.images_dir", "./project_images")
	v.SetDefault("server.asset_version", "")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "auto")
	v.SetDefault("database.path", "./data/portfolio.sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.postgres.host", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.database", "")
	v.SetDefault("database.postgres.username", "")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.sslmode", "")
	v.SetDefault("database.mysql.host", "")
	v.SetDefault("database.mysql.port", 3306)
	v.SetDefault("database.mysql.database", "")
	v.SetDefault("database.mysql.username", "")
	v.SetDefault("database.mysql.password", "")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.sweep_interval", "1m")
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("github.username", "Yusuf-Siddiqui-08")
	v.SetDefault("github.token", "")
	v.SetDefault("github.api_base_url", "https://api.github.com")
	v.SetDefault("github.user_agent", "PortfolioApp/1.0 (+https://yusufsiddiqui.dev)")
	v.SetDefault("github.per_page", 20)
	v.SetDefault("github.sort", "updated")
	v.SetDefault("github.timeout", "7s")
	v.SetDefault("github.topics_timeout", "5s")
	v.SetDefault("github.max_attempts", 3)
	v.SetDefault("github.initial_backoff", "1s")
	v.SetDefault("github.cache_ttl", "300s")
	v.SetDefault("github.enrich_topics", true)
	v.SetDefault("github.topics_concurrency", 4)
	v.SetDefault("github.dedupe_fetches", true)

	v.SetDefault("contact.min_message_length", 20)
	v.SetDefault("contact.limits.per_minute", 3)
	v.SetDefault("contact.limits.per_hour", 10)
	v.SetDefault("contact.limits.per_day", 30)
	v.SetDefault("contact.dev.burst", 2)
	v.SetDefault("contact.dev.burst_window", "60s")
	v.SetDefault("contact.dev.per_hour", 5)
	v.SetDefault("contact.dev.per_day", 20)
	v.SetDefault("contact.dev.dedupe_window", "10m")
	v.SetDefault("contact.notify_to", []string{})
	v.SetDefault("contact.fingerprint_key", "")

	v.SetDefault("captcha.turnstile_secret", "")
	v.SetDefault("captcha.hcaptcha_secret", "")
	v.SetDefault("captcha.recaptcha_secret", "")
	v.SetDefault("captcha.recaptcha_min_score", 0.5)
	v.SetDefault("captcha.recaptcha_action", "contact")
	v.SetDefault("captcha.timeout", "5s")
	v.SetDefault("captcha.turnstile_verify_url", "https://challenges.cloudflare.com/turnstile/v0/siteverify")
	v.SetDefault("captcha.hcaptcha_verify_url", "https://hcaptcha.com/siteverify")
	v.SetDefault("captcha.recaptcha_verify_url", "https://www.google.com/recaptcha/api/siteverify")
	v.SetDefault("captcha.turnstile_site_key", "")
	v.SetDefault("captcha.hcaptcha_site_key", "")
	v.SetDefault("captcha.recaptcha_site_key", "")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.api.requests", 60)
	v.SetDefault("rate_limit.api.window", "1m")
	v.SetDefault("rate_limit.feed.requests", 30)
	v.SetDefault("rate_limit.feed.window", "1m")

	v.SetDefault("email.smtp.enabled", false)
	v.SetDefault("email.smtp.host", "")
	v.SetDefault("email.smtp.port", 587)
	v.SetDefault("email.smtp.username", "")
	v.SetDefault("email.smtp.password", "")
	v.SetDefault("email.smtp.from", "")
	v.SetDefault("email.smtp.use_tls", false)
	v.SetDefault("email.smtp.timeout", "10s")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.cache_schedule", "@every 15m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
