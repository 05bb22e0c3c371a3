package router

import (
	"github.com/gin-gonic/gin"

	"leaseline.app/leaseline/internal/http/handler"
)

func LeaseRouter(router *gin.RouterGroup, handler *handler.LeaseHandler) {
	router.POST("/generate-lease", handler.Generate)
	router.GET("/download-lease/:filename", handler.Download)
}
