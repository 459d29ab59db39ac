package controllers

import (
	"encoding/json"
	"net/http"
	"time"

	"go-restobook/helpers"
	"go-restobook/models"
	"go-restobook/services"

	"github.com/gin-gonic/gin"
)

type ReservationController struct {
	reservations *services.ReservationService
	timeout      time.Duration
}

func NewReservationController(s *services.Services, timeout time.Duration) *ReservationController {
	return &ReservationController{reservations: s.Reservations, timeout: timeout}
}

func (rc *ReservationController) GetReservations() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := pageQuery(c, helpers.ReservationSort)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, rc.timeout)
		defer cancel()

		result, err := rc.reservations.List(ctx, q)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (rc *ReservationController) GetReservation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, rc.timeout)
		defer cancel()

		view, err := rc.reservations.Get(ctx, id)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func (rc *ReservationController) UpdateReservation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var patch models.ReservationPatch
		if !bindJSON(c, &patch, false) {
			return
		}
		ctx, cancel := requestContext(c, rc.timeout)
		defer cancel()

		view, err := rc.reservations.Update(ctx, id, patch)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func (rc *ReservationController) DeleteReservation() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, rc.timeout)
		defer cancel()

		if err := rc.reservations.Delete(ctx, id); err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "reservation deleted", "_id": id})
	}
}

// AssignTables accepts either a bare array of table ids or {"tables": [...]}.
func (rc *ReservationController) AssignTables() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		raw, err := c.GetRawData()
		if err != nil {
			helpers.AbortWithError(c, models.Invalid("reading request body: %v", err))
			return
		}
		hexes, err := tableIDList(raw)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		tables, err := helpers.ObjectIDs(hexes)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		ctx, cancel := requestContext(c, rc.timeout)
		defer cancel()

		view, err := rc.reservations.AssignTables(ctx, id, tables)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func tableIDList(raw []byte) ([]string, error) {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var body struct {
		Tables []string `json:"tables"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, models.Invalid("body must be a list of table ids")
	}
	return body.Tables, nil
}

// RecordPayment is served on GET and POST; the body may be empty, in which
// case every payment field takes its default.
func (rc *ReservationController) RecordPayment() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input models.PaymentInput
		if !bindJSON(c, &input, true) {
			return
		}
		ctx, cancel := requestContext(c, rc.timeout)
		defer cancel()

		view, err := rc.reservations.RecordPayment(ctx, id, input)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, view)
	}
}

func (rc *ReservationController) UpdatePayment() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var input models.PaymentInput
		if !bindJSON(c, &input, false) {
			return
		}
		ctx, cancel := requestContext(c, rc.timeout)
		defer cancel()

		view, err := rc.reservations.UpdatePayment(ctx, id, input)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
