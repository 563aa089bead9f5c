package api

import (
	"fmt"
	"io/fs"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/app"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/handlers"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/middleware"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/services"
)

// Dependencies are the services the router exposes over HTTP.
type Dependencies struct {
	DB        *gorm.DB
	Repos     services.RepoSource
	Search    *services.SearchService
	Feed      *services.FeedService
	Contact   handlers.ContactSubmitter
	Pages     *handlers.Pages
	RateStore middleware.RateStore
	// Static is served under /static when cfg.Server.StaticDir does not exist.
	Static fs.FS
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(cfg *app.Config, deps Dependencies) (*gin.Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if deps.Repos == nil || deps.Search == nil || deps.Feed == nil || deps.Contact == nil {
		return nil, fmt.Errorf("repository, search, feed and contact services must be provided")
	}
	if deps.Pages == nil {
		return nil, fmt.Errorf("pages must be provided")
	}

	r := gin.New()
	if err := r.SetTrustedProxies(trustedProxies(cfg.Server.TrustedProxies)); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// Global middleware
	r.Use(middleware.Recovery(deps.Pages.Error))
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders(""))
	r.Use(middleware.CanonicalRedirect(cfg.Server.CanonicalHost, cfg.Server.ForceHTTPS))

	registerPageRoutes(r, cfg, deps)
	registerAPIRoutes(r, cfg, deps)
	registerHealthRoutes(r, deps.DB)
	registerMonitoringRoutes(r, cfg)

	// NotFound fallback
	r.NoRoute(middleware.NotFound(deps.Pages.Error))

	return r, nil
}

// rateLimit returns the limiter for scope or a pass-through when limiting is
// disabled.
func rateLimit(cfg *app.Config, store middleware.RateStore, scope string, quota app.RateQuota) gin.HandlerFunc {
	if !cfg.RateLimit.Enabled || store == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(store, scope, quota.Requests, quota.Window)
}

func trustedProxies(proxies []string) []string {
	if len(proxies) == 0 {
		return nil
	}
	return proxies
}
