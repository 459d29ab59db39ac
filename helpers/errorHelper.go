package helpers

import (
	"errors"
	"log/slog"
	"net/http"

	"go-restobook/models"

	"github.com/gin-gonic/gin"
)

// StatusFor maps a domain error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicate), errors.Is(err, models.ErrPaymentRecorded):
		return http.StatusConflict
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AbortWithError writes the error envelope and stops the handler chain.
// Step failures and unfinished workflows also report the workflow and step
// so an operator can resume.
func AbortWithError(c *gin.Context, err error) {
	status := StatusFor(err)
	body := gin.H{"error": err.Error()}
	if id := c.GetString(RequestIDKey); id != "" {
		body["requestId"] = id
	}
	var stepErr *models.StepError
	if errors.As(err, &stepErr) {
		body["workflowId"] = stepErr.Workflow
		body["step"] = stepErr.Step
	}
	var pending *models.PendingError
	if errors.As(err, &pending) {
		body["workflowId"] = pending.Workflow
		body["step"] = pending.Step
	}
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.FullPath(), "request_id", c.GetString(RequestIDKey), "error", err)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
