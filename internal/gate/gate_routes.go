package gate

import (
	"go-outpass/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	gate := r.Group("/gate")
	{
		gate.GET("/outpasses/:id/qr", handler.QRCode)
		gate.POST("/scan", middleware.RateLimitByIP(5, 10), handler.Scan)
	}
}
