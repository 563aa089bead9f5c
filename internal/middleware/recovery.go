package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/Yusuf-Siddiqui-08/portfolio/pkg/errors"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/logger"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/response"
)

// ErrorPage renders an HTML error page for status on non-API routes.
type ErrorPage func(c *gin.Context, status int)

// IsAPIRequest reports whether the request targets the JSON API.
func IsAPIRequest(c *gin.Context) bool {
	path := c.Request.URL.Path
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

// Recovery converts panics into a 500 response and logs the error. API
// clients receive the JSON envelope; everyone else receives page.
func Recovery(page ErrorPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithModule("http").Error("panic",
					zap.String("path", c.Request.URL.Path),
					zap.Any("error", r),
					zap.Stack("stack"),
				)
				writeError(c, page, http.StatusInternalServerError, appErrors.ErrInternalServer)
				c.Abort()
			}
		}()
		c.Next()
	}
}

// NotFound answers unknown routes with a JSON 404 on the API and page elsewhere.
func NotFound(page ErrorPage) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeError(c, page, http.StatusNotFound, appErrors.ErrNotFound)
	}
}

func writeError(c *gin.Context, page ErrorPage, status int, err *appErrors.AppError) {
	if IsAPIRequest(c) || page == nil {
		response.Error(c, err.WithStatus(status))
		return
	}
	page(c, status)
}
