package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/github"
	"github.com/Yusuf-Siddiqui-08/portfolio/internal/services"
	appErrors "github.com/Yusuf-Siddiqui-08/portfolio/pkg/errors"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/response"
)

// RepoHandler serves the cached repository listing.
type RepoHandler struct {
	repos           services.RepoSource
	defaultUsername string
}

// NewRepoHandler constructs a RepoHandler.
func NewRepoHandler(repos services.RepoSource, defaultUsername string) *RepoHandler {
	return &RepoHandler{repos: repos, defaultUsername: defaultUsername}
}

// List handles GET /api/github/repos?username=.
func (h *RepoHandler) List(c *gin.Context) {
	username := usernameParam(c, h.defaultUsername)

	repos, err := h.repos.Repos(requestContext(c), username)
	if err != nil {
		response.ErrorWith(c, fetchAppError(err), gin.H{"username": username})
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"username": username,
		"repos":    repos,
	})
}

// fetchAppError maps an upstream failure to its client-facing error.
func fetchAppError(err error) *appErrors.AppError {
	if fe, ok := github.AsFetchError(err); ok {
		return fe.AppError()
	}
	return appErrors.ErrInternalServer.WithInternal(err)
}
