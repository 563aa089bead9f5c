package handlers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/middleware"
)

// requestContext safely returns the request context with a background fallback for tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil {
		return context.Background()
	}
	if req := c.Request; req != nil {
		return req.Context()
	}
	return context.Background()
}

// siteRoot returns the absolute root URL the client used, e.g. https://host/.
func siteRoot(c *gin.Context) string {
	return middleware.RequestScheme(c) + "://" + c.Request.Host + "/"
}

// usernameParam returns the username query parameter or fallback.
func usernameParam(c *gin.Context, fallback string) string {
	if username := strings.TrimSpace(c.Query("username")); username != "" {
		return username
	}
	return fallback
}
