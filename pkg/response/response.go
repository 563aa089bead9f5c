package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/Yusuf-Siddiqui-08/portfolio/pkg/errors"
)

// Response mirrors the common fields of every API payload. Endpoint specific
// fields are merged alongside these keys.
type Response struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success writes a JSON success payload. The ok flag is always set to true.
func Success(c *gin.Context, statusCode int, payload gin.H) {
	body := gin.H{}
	for key, value := range payload {
		body[key] = value
	}
	body["ok"] = true
	c.JSON(statusCode, body)
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	ErrorWith(c, err, nil)
}

// ErrorWith writes an error response and merges additional fields into the body.
func ErrorWith(c *gin.Context, err error, extra gin.H) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	body := gin.H{}
	for key, value := range appErr.Details {
		body[key] = value
	}
	for key, value := range extra {
		body[key] = value
	}
	body["ok"] = false
	body["error"] = appErr.Code
	body["message"] = appErr.Message

	c.JSON(status, body)
}

// Abort writes the error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
