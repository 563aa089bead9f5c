package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/app"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/handlers"
)

func registerPageRoutes(r *gin.Engine, cfg *app.Config, deps Dependencies) {
	r.GET("/", deps.Pages.Home)
	r.GET("/repos", deps.Pages.Repos)
	r.GET("/contact", deps.Pages.Contact)

	feedHandler := handlers.NewFeedHandler(deps.Feed, cfg.GitHub.Username)
	r.GET("/feed.xml", rateLimit(cfg, deps.RateStore, "feed", cfg.RateLimit.Feed), feedHandler.Feed)

	if dir := strings.TrimSpace(cfg.Server.StaticDir); isDir(dir) {
		r.Static("/static", dir)
	} else if deps.Static != nil {
		r.StaticFS("/static", http.FS(deps.Static))
	}

	if dir := strings.TrimSpace(cfg.Server.ImagesDir); isDir(dir) {
		r.Static("/project_images", dir)
	}
}

func isDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
