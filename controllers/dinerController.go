package controllers

import (
	"net/http"
	"time"

	"go-restobook/helpers"
	"go-restobook/models"
	"go-restobook/services"

	"github.com/gin-gonic/gin"
)

type DinerController struct {
	diners       *services.DinerService
	reservations *services.ReservationService
	timeout      time.Duration
}

func NewDinerController(s *services.Services, timeout time.Duration) *DinerController {
	return &DinerController{diners: s.Diners, reservations: s.Reservations, timeout: timeout}
}

func (dc *DinerController) GetDiners() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := pageQuery(c, helpers.DinerSort)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, dc.timeout)
		defer cancel()

		result, err := dc.diners.List(ctx, q)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (dc *DinerController) SearchDiners() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := pageQuery(c, helpers.DinerSort)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, dc.timeout)
		defer cancel()

		result, err := dc.diners.Search(ctx, q)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (dc *DinerController) GetDiner() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, dc.timeout)
		defer cancel()

		diner, err := dc.diners.Get(ctx, id)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, diner)
	}
}

func (dc *DinerController) CreateDiner() gin.HandlerFunc {
	return func(c *gin.Context) {
		var diner models.Diner
		if !bindJSON(c, &diner, false) {
			return
		}
		ctx, cancel := requestContext(c, dc.timeout)
		defer cancel()

		created, err := dc.diners.Create(ctx, &diner)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func (dc *DinerController) UpdateDiner() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var patch models.DinerPatch
		if !bindJSON(c, &patch, false) {
			return
		}
		ctx, cancel := requestContext(c, dc.timeout)
		defer cancel()

		diner, err := dc.diners.Update(ctx, id, patch)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, diner)
	}
}

func (dc *DinerController) DeleteDiner() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, dc.timeout)
		defer cancel()

		if err := dc.diners.Delete(ctx, id); err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "diner deleted", "_id": id})
	}
}

func (dc *DinerController) GetDinerReservations() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		q, ok := pageQuery(c, helpers.ReservationSort)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, dc.timeout)
		defer cancel()

		result, err := dc.diners.Reservations(ctx, id, q)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (dc *DinerController) CreateDinerReservation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var reservation models.Reservation
		if !bindJSON(c, &reservation, false) {
			return
		}
		ctx, cancel := requestContext(c, dc.timeout)
		defer cancel()

		created, err := dc.reservations.Create(ctx, id, &reservation)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}
