package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/services"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/logger"
)

const feedCacheControl = "public, max-age=300"

// FeedHandler serves the RSS feed.
type FeedHandler struct {
	feed            *services.FeedService
	defaultUsername string
}

// NewFeedHandler constructs a FeedHandler.
func NewFeedHandler(feed *services.FeedService, defaultUsername string) *FeedHandler {
	return &FeedHandler{feed: feed, defaultUsername: defaultUsername}
}

// Feed handles GET /feed.xml for the configured account.
func (h *FeedHandler) Feed(c *gin.Context) {
	username := h.defaultUsername
	c.Header("Cache-Control", feedCacheControl)

	body, err := h.feed.Render(requestContext(c), username, siteRoot(c))
	if err != nil {
		logger.WithModule("http").Warn("feed unavailable", zap.String("username", username), zap.Error(err))
		c.String(http.StatusServiceUnavailable, "Service Unavailable")
		return
	}

	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(body))
}
