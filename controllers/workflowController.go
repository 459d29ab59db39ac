package controllers

import (
	"net/http"
	"time"

	"go-restobook/helpers"
	"go-restobook/models"
	"go-restobook/services"

	"github.com/gin-gonic/gin"
)

// WorkflowController exposes recorded write sequences and the maintenance
// pass that repairs what failed ones leave behind.
type WorkflowController struct {
	reservations *services.ReservationService
	reconciler   *services.Reconciler
	timeout      time.Duration
}

func NewWorkflowController(s *services.Services, timeout time.Duration) *WorkflowController {
	return &WorkflowController{reservations: s.Reservations, reconciler: s.Reconciler, timeout: timeout}
}

func (wc *WorkflowController) GetWorkflows() gin.HandlerFunc {
	return func(c *gin.Context) {
		var state models.WorkflowState
		if raw := c.Query("state"); raw != "" {
			parsed, err := models.ParseWorkflowState(raw)
			if err != nil {
				helpers.AbortWithError(c, err)
				return
			}
			state = parsed
		}
		q, ok := pageQuery(c, helpers.WorkflowSort)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, wc.timeout)
		defer cancel()

		result, err := wc.reservations.Workflows(ctx, state, q)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func (wc *WorkflowController) GetWorkflow() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, wc.timeout)
		defer cancel()

		wf, err := wc.reservations.Workflow(ctx, id)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, wf)
	}
}

func (wc *WorkflowController) ResumeWorkflow() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c)
		if !ok {
			return
		}
		ctx, cancel := requestContext(c, wc.timeout)
		defer cancel()

		wf, err := wc.reservations.Resume(ctx, id)
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, wf)
	}
}

// Reconcile runs without the request timeout; it walks every collection.
func (wc *WorkflowController) Reconcile() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := wc.reconciler.Run(c.Request.Context())
		if err != nil {
			helpers.AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}
