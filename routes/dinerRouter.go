package routes

import (
	"go-restobook/controllers"

	"github.com/gin-gonic/gin"
)

func DinerRoutes(incomingRoutes *gin.RouterGroup, dc *controllers.DinerController) {
	incomingRoutes.GET("/diners", dc.GetDiners())
	incomingRoutes.GET("/diners/search", dc.SearchDiners())
	incomingRoutes.GET("/diners/:id", dc.GetDiner())
	incomingRoutes.POST("/diners", dc.CreateDiner())
	incomingRoutes.PUT("/diners/:id", dc.UpdateDiner())
	incomingRoutes.DELETE("/diners/:id", dc.DeleteDiner())
	incomingRoutes.GET("/diners/:id/reservations", dc.GetDinerReservations())
	incomingRoutes.POST("/diners/:id/reservations", dc.CreateDinerReservation())
}
