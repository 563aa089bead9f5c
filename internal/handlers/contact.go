package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/services"
	appErrors "github.com/Yusuf-Siddiqui-08/portfolio/pkg/errors"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/response"
)

// contactRequest accepts both JSON and form posts. Each CAPTCHA widget posts
// its token under its own field name.
type contactRequest struct {
	Name         string `json:"name" form:"name"`
	Email        string `json:"email" form:"email"`
	Message      string `json:"message" form:"message"`
	Website      string `json:"website" form:"website"`
	CaptchaToken string `json:"captcha_token" form:"captcha_token"`
	Turnstile    string `json:"cf-turnstile-response" form:"cf-turnstile-response"`
	HCaptcha     string `json:"h-captcha-response" form:"h-captcha-response"`
	Recaptcha    string `json:"g-recaptcha-response" form:"g-recaptcha-response"`
}

// ContactSubmitter accepts contact submissions.
type ContactSubmitter interface {
	Submit(ctx context.Context, sub services.ContactSubmission) (*services.ContactResult, error)
}

// ContactHandler receives contact form posts.
type ContactHandler struct {
	contact ContactSubmitter
}

// NewContactHandler constructs a ContactHandler.
func NewContactHandler(contact ContactSubmitter) *ContactHandler {
	return &ContactHandler{contact: contact}
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(c *gin.Context) {
	var req contactRequest
	if !bindPayload(c, &req) {
		return
	}

	result, err := h.contact.Submit(requestContext(c), services.ContactSubmission{
		Name:         req.Name,
		Email:        req.Email,
		Message:      req.Message,
		Website:      req.Website,
		CaptchaToken: firstNonEmpty(req.CaptchaToken, req.Turnstile, req.HCaptcha, req.Recaptcha),
		IP:           c.ClientIP(),
		UserAgent:    c.Request.UserAgent(),
		Host:         c.Request.Host,
	})
	if err != nil {
		appErr := appErrors.FromError(err)
		if retry, ok := appErr.Details["retry_after"].(int); ok {
			c.Header("Retry-After", strconv.Itoa(retry))
		}
		response.Error(c, appErr)
		return
	}

	if !result.Stored {
		response.Success(c, http.StatusOK, nil)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"id":         result.ID,
		"created_at": result.CreatedAt.UTC().Format(time.RFC3339),
	})
}
