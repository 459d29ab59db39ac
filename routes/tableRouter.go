package routes

import (
	"go-restobook/controllers"

	"github.com/gin-gonic/gin"
)

func TableRoutes(incomingRoutes *gin.RouterGroup, tc *controllers.TableController) {
	incomingRoutes.GET("/tables", tc.GetTables())
	incomingRoutes.GET("/tables/search", tc.SearchTables())
	incomingRoutes.GET("/tables/:id", tc.GetTable())
	incomingRoutes.POST("/tables", tc.CreateTable())
	incomingRoutes.PUT("/tables/:id", tc.UpdateTable())
	incomingRoutes.DELETE("/tables/:id", tc.DeleteTable())
	incomingRoutes.GET("/tables/:id/reservations", tc.GetTableReservations())
}
