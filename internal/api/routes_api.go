package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/app"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/handlers"
)

func registerAPIRoutes(r *gin.Engine, cfg *app.Config, deps Dependencies) {
	username := cfg.GitHub.Username

	repoHandler := handlers.NewRepoHandler(deps.Repos, username)
	searchHandler := handlers.NewSearchHandler(deps.Search, username)
	contactHandler := handlers.NewContactHandler(deps.Contact)

	api := r.Group("/api")
	api.Use(rateLimit(cfg, deps.RateStore, "api", cfg.RateLimit.API))
	{
		api.GET("/github/repos", repoHandler.List)
		api.GET("/search", searchHandler.Search)
		api.POST("/contact", contactHandler.Submit)
	}
}
