package report

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	reports := r.Group("/reports")
	{
		reports.GET("", handler.GetReports)
		reports.GET("/stats", handler.GetStats)
		reports.POST("/refresh", handler.Refresh)
		reports.POST("/export", handler.Export)
	}
}
