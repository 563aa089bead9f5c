package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/captcha"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/database"
)

func TestLoadConfigFromFile(t *testing.T) {
	cfg, err := LoadConfig("testdata")
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "Test Portfolio", cfg.Server.SiteName)
	require.Equal(t, "portfolio.example.com", cfg.Server.CanonicalHost)
	require.Equal(t, []string{"10.0.0.0/8"}, cfg.Server.TrustedProxies)

	conn := cfg.Database.ConnectionConfig()
	require.Equal(t, database.DriverPostgres, database.ResolveDriver(conn))
	require.Equal(t, "db.example.com", conn.Host)
	require.Equal(t, 5432, conn.Port)
	require.Equal(t, "require", conn.Options["sslmode"])

	require.Equal(t, CacheBackendRedis, cfg.Cache.BackendName())
	require.Equal(t, "cache.example.com:6380", cfg.Cache.RedisClientConfig().Address)

	require.Equal(t, "octocat", cfg.GitHub.Username)
	require.Equal(t, 120*time.Second, cfg.GitHub.CacheTTL)
	require.Equal(t, 3, cfg.GitHub.ClientConfig().MaxAttempts)

	settings := cfg.Contact.Settings(cfg.Server.CanonicalHost)
	require.Equal(t, 30, settings.MinMessageLength)
	require.Equal(t, 4, settings.Dev.Burst)
	require.Equal(t, 10*time.Minute, settings.Dev.DedupeWindow)
	require.Equal(t, []string{"owner@example.com"}, settings.NotifyTo)

	require.Equal(t, "turnstile-site", cfg.Captcha.SiteKey(captcha.ProviderTurnstile))
	require.Equal(t, captcha.ProviderTurnstile, captcha.New(cfg.Captcha.VerifierConfig()).Provider())

	smtp := cfg.Email.SMTPSettings()
	require.True(t, smtp.Enabled, "a configured host enables delivery")
	require.Equal(t, 587, smtp.Port)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, CacheBackendMemory, cfg.Cache.BackendName())
	require.Equal(t, 300*time.Second, cfg.GitHub.CacheTTL)
	require.True(t, cfg.GitHub.DedupeFetches)
	require.Equal(t, 20, cfg.Contact.MinMessageLength)
	require.Equal(t, 3, cfg.Contact.Limits.PerMinute)
	require.Equal(t, 0.5, cfg.Captcha.RecaptchaMinScore)
	require.Equal(t, database.DriverSQLite, database.ResolveDriver(cfg.Database.ConnectionConfig()))
	require.False(t, cfg.Email.SMTPSettings().Enabled)
}

func TestLoadConfigLegacyEnvironment(t *testing.T) {
	t.Setenv("PORT", "5050")
	t.Setenv("GITHUB_USERNAME", "legacy-user")
	t.Setenv("CONTACT_MIN_MESSAGE_LENGTH", "12")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db/portfolio")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 5050, cfg.Server.Port)
	require.Equal(t, "legacy-user", cfg.GitHub.Username)
	require.Equal(t, 12, cfg.Contact.MinMessageLength)
	require.Equal(t, database.DriverPostgres, database.ResolveDriver(cfg.Database.ConnectionConfig()))
}

func TestLoadConfigPrefixedEnvironmentWins(t *testing.T) {
	t.Setenv("PORT", "5050")
	t.Setenv("PORTFOLIO_SERVER_PORT", "6060")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 6060, cfg.Server.Port)
}

func TestLoadConfigNotifyToFromEnvironment(t *testing.T) {
	t.Setenv("CONTACT_NOTIFY_TO", "a@example.com,b@example.com")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Contact.NotifyTo)
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GITHUB_USERNAME=from-dotenv\n"), 0o600))
	t.Setenv("GITHUB_USERNAME", "from-env")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.GitHub.Username)
}
