package routes

import (
	"go-restobook/controllers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func WorkflowRoutes(incomingRoutes *gin.RouterGroup, wc *controllers.WorkflowController) {
	incomingRoutes.GET("/workflows", wc.GetWorkflows())
	incomingRoutes.GET("/workflows/:id", wc.GetWorkflow())
	incomingRoutes.POST("/workflows/:id/resume", wc.ResumeWorkflow())
	incomingRoutes.POST("/maintenance/reconcile", wc.Reconcile())
}

func SystemRoutes(incomingRoutes *gin.RouterGroup, sc *controllers.SystemController, metrics bool) {
	incomingRoutes.GET("/health", sc.Health())
	incomingRoutes.GET("/ws", sc.Feed())
	if metrics {
		incomingRoutes.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}
