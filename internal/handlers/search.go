package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/services"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/response"
)

// SearchHandler answers repository searches.
type SearchHandler struct {
	search          *services.SearchService
	defaultUsername string
}

// NewSearchHandler constructs a SearchHandler.
func NewSearchHandler(search *services.SearchService, defaultUsername string) *SearchHandler {
	return &SearchHandler{search: search, defaultUsername: defaultUsername}
}

// Search handles GET /api/search?q=&username=. Upstream failures surface as
// 502 regardless of their classification.
func (h *SearchHandler) Search(c *gin.Context) {
	username := usernameParam(c, h.defaultUsername)

	results, err := h.search.Search(requestContext(c), username, c.Query("q"))
	if err != nil {
		response.Error(c, fetchAppError(err).WithStatus(http.StatusBadGateway))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"count":   len(results),
		"results": results,
	})
}
