package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/api"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/app"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/app/maintenance"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/cache"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/captcha"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/database"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/github"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/handlers"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/middleware"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/services"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/logger"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/mail"
	"github.com/Yusuf-Siddiqui-08/portfolio/web"
)

const notificationDrainTimeout = 15 * time.Second

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB      *gorm.DB
	Store   cache.Store
	Cleaner *maintenance.Cleaner
	Contact *services.ContactService
	Router  *gin.Engine

	closers []func() error
}

// bootstrapRuntime initialises the database, shared store, services and the HTTP router.
func bootstrapRuntime(cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(context.Background(), log)
		}
	}()

	// enable gin debug mode
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.Store, err = initialiseStore(cfg, stack, log)
	if err != nil {
		return nil, err
	}

	client := github.NewClient(cfg.GitHub.ClientConfig())
	repos := github.NewService(client, stack.Store,
		github.WithCacheTTL(cfg.GitHub.CacheTTL),
		github.WithDedupe(cfg.GitHub.DedupeFetches),
	)

	verifier := captcha.New(cfg.Captcha.VerifierConfig())
	if verifier.Enabled() {
		log.Info("captcha enabled", zap.String("provider", verifier.Provider()))
	} else {
		log.Warn("no captcha provider configured; contact form relies on development counters")
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		log.Warn("smtp configuration invalid; notifications disabled", zap.Error(err))
		mailer = nil
	}

	stack.Contact, err = services.NewContactService(stack.DB, stack.Store, verifier, mailer,
		cfg.Contact.Settings(cfg.Server.CanonicalHost))
	if err != nil {
		return nil, fmt.Errorf("initialise contact service: %w", err)
	}

	pages, err := handlers.NewPages(web.Templates(), handlers.PageConfig{
		SiteName:         cfg.Server.SiteName,
		Username:         cfg.GitHub.Username,
		AssetVersion:     cfg.Server.AssetVersion,
		CaptchaProvider:  verifier.Provider(),
		CaptchaSiteKey:   cfg.Captcha.SiteKey(verifier.Provider()),
		CaptchaAction:    cfg.Captcha.RecaptchaAction,
		MinMessageLength: cfg.Contact.MinMessageLength,
	})
	if err != nil {
		return nil, fmt.Errorf("load page templates: %w", err)
	}

	static, err := web.Static()
	if err != nil {
		return nil, fmt.Errorf("load static assets: %w", err)
	}

	stack.Router, err = api.NewRouter(cfg, api.Dependencies{
		DB:        stack.DB,
		Repos:     repos,
		Search:    services.NewSearchService(repos),
		Feed:      services.NewFeedService(repos),
		Contact:   stack.Contact,
		Pages:     pages,
		RateStore: middleware.NewStoreRateStore(stack.Store),
		Static:    static,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	if cfg.Maintenance.Enabled {
		var opts []maintenance.Option
		opts = append(opts, maintenance.WithSchedule(cfg.Maintenance.CacheSchedule))
		if dbStore, ok := stack.Store.(*cache.DatabaseStore); ok {
			opts = append(opts, maintenance.WithPurger(app.CacheBackendDatabase, dbStore))
		}
		stack.Cleaner = maintenance.NewCleaner(opts...)
		if err := stack.Cleaner.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	success = true
	return stack, nil
}

// initialiseStore selects the shared Store. An unreachable Redis falls back
// to the database store.
func initialiseStore(cfg *app.Config, stack *runtimeStack, log *zap.Logger) (cache.Store, error) {
	switch cfg.Cache.BackendName() {
	case app.CacheBackendRedis:
		client, err := cache.NewRedisClient(cfg.Cache.RedisClientConfig())
		if err != nil {
			log.Warn("redis unavailable; falling back to database-backed store", zap.Error(err))
			return cache.NewDatabaseStore(stack.DB), nil
		}
		stack.closers = append(stack.closers, client.Close)
		log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		return client, nil
	case app.CacheBackendDatabase:
		return cache.NewDatabaseStore(stack.DB), nil
	default:
		store := cache.NewMemoryStore(cache.WithSweepInterval(cfg.Cache.SweepInterval))
		stack.closers = append(stack.closers, store.Close)
		return store, nil
	}
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Contact != nil {
		drainCtx, cancel := context.WithTimeout(ctx, notificationDrainTimeout)
		if err := s.Contact.Drain(drainCtx); err != nil {
			log.Warn("contact notifications still pending at shutdown", zap.Error(err))
		}
		cancel()
	}

	if s.Cleaner != nil {
		<-s.Cleaner.Stop().Done()
		if err := s.Cleaner.RunOnce(ctx); err != nil {
			log.Warn("maintenance shutdown cleanup failed", zap.Error(err))
		}
	}

	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Warn("store shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", database.DriverName(db)))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if err := database.Close(db); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
