package handlers

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/Yusuf-Siddiqui-08/portfolio/pkg/errors"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/response"
)

// bindPayload binds a JSON or form encoded body into dest according to the
// request Content-Type. Malformed bodies are answered with bad_request and
// false is returned.
func bindPayload[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBind(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid request payload").WithInternal(err))
		return false
	}
	return true
}

// firstNonEmpty returns the first value that is not blank.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
