package router

import (
	"github.com/gin-gonic/gin"

	"leaseline.app/leaseline/internal/http/handler"
)

func NegotiationRouter(router *gin.RouterGroup, handler *handler.NegotiationHandler) {
	router.POST("/estimate-rent", handler.EstimateRent)
	router.POST("/start-negotiation", handler.Start)
	router.POST("/continue-negotiation", handler.Continue)
	router.POST("/get-negotiation-context", handler.Context)
}
