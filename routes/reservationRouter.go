package routes

import (
	"go-restobook/controllers"

	"github.com/gin-gonic/gin"
)

func ReservationRoutes(incomingRoutes *gin.RouterGroup, rc *controllers.ReservationController) {
	incomingRoutes.GET("/reservations", rc.GetReservations())
	incomingRoutes.GET("/reservations/:id", rc.GetReservation())
	incomingRoutes.PUT("/reservations/:id", rc.UpdateReservation())
	incomingRoutes.DELETE("/reservations/:id", rc.DeleteReservation())
	incomingRoutes.PUT("/reservations/:id/tables", rc.AssignTables())
	// Recording a payment has always been a GET with a body; POST is the
	// same operation for clients that cannot send one.
	incomingRoutes.GET("/reservations/:id/payment", rc.RecordPayment())
	incomingRoutes.POST("/reservations/:id/payment", rc.RecordPayment())
	incomingRoutes.PUT("/reservations/:id/payment", rc.UpdatePayment())
}
