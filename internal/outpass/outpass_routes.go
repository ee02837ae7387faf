package outpass

import (
	"go-outpass/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rdb *redis.Client,
) {
	outpasses := r.Group("/outpasses")
	{
		outpasses.GET("", handler.GetAll)
		outpasses.GET("/:id", handler.GetById)
		outpasses.POST("", middleware.Idempotency(rdb), handler.Create)
		outpasses.POST("/:id/accept", handler.Accept)
		outpasses.POST("/:id/reject", handler.Reject)
		outpasses.POST("/:id/renew", handler.RequestRenewal)
		outpasses.POST("/:id/approve-renewal", handler.ApproveRenewal)
		outpasses.DELETE("/:id", handler.Delete)
	}
}
