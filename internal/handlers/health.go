package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Yusuf-Siddiqui-08/portfolio/internal/database"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/logger"
	"github.com/Yusuf-Siddiqui-08/portfolio/pkg/response"
)

// Health reports database reachability by running SELECT 1.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, err := database.SelectOne(requestContext(c), db)
		if err != nil {
			logger.WithModule("http").Error("health check failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
			return
		}
		response.Success(c, http.StatusOK, gin.H{
			"db":      database.DriverName(db),
			"select1": value,
		})
	}
}
