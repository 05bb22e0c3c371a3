package router

import (
	"github.com/gin-gonic/gin"

	"leaseline.app/leaseline/internal/http/handler"
	"leaseline.app/leaseline/internal/service"
)

type RouterConfig struct {
	IsProduction bool
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	ai := router.Group("/ai")
	{
		negotiationHandler := handler.NewNegotiationHandler(services.Negotiations())
		NegotiationRouter(ai, negotiationHandler)

		leaseHandler := handler.NewLeaseHandler(services.Leases())
		LeaseRouter(ai, leaseHandler)
	}
}
