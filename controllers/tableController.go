package controllers

import (
	"net/http"
	"time"

	"go-restobook/helpers"
	"go-restobook/models"
	"go-restobook/services"

	"github.com/gin-gonic/gin"
)

type TableController struct {
	tables  *services.TableService
	timeout time.Duration
}

func NewTableController(s *services.Services, timeout time.Duration) *TableController {
	return &TableController{tables: s.Tables, timeout: timeout}
}

func (tc *TableController) GetTables() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := pageQuery(c, helpers.TableSort)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, tc.timeout)
		defer cancel()

		result, err := tc.tables.List(ctx, q)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (tc *TableController) SearchTables() gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := pageQuery(c, helpers.TableSort)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, tc.timeout)
		defer cancel()

		result, err := tc.tables.Search(ctx, q)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (tc *TableController) GetTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, tc.timeout)
		defer cancel()

		table, err := tc.tables.Get(ctx, id)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, table)
	}
}

func (tc *TableController) CreateTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		var table models.Table
		if !bindJSON(c, &table, false) {
			return
		}
		ctx, cancel := requestContext(c, tc.timeout)
		defer cancel()

		created, err := tc.tables.Create(ctx, &table)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusCreated, created)
	}
}

func (tc *TableController) UpdateTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		var patch models.TablePatch
		if !bindJSON(c, &patch, false) {
			return
		}
		ctx, cancel := requestContext(c, tc.timeout)
		defer cancel()

		table, err := tc.tables.Update(ctx, id, patch)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, table)
	}
}

func (tc *TableController) DeleteTable() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, tc.timeout)
		defer cancel()

		if err := tc.tables.Delete(ctx, id); err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "table deleted", "_id": id})
	}
}

func (tc *TableController) GetTableReservations() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		q, ok := pageQuery(c, helpers.ReservationSort)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, tc.timeout)
		defer cancel()

		result, err := tc.tables.Reservations(ctx, id, q)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
