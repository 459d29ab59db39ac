// Package controllers holds the gin handlers. Each handler parses the
// request, calls one service operation under the request timeout and
// renders the result or the error envelope.
package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"go-restobook/helpers"
	"go-restobook/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func requestContext(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), timeout)
}

// pathID parses the :id path parameter, writing a 400 when it is not an
// object id.
func pathID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := helpers.ObjectID(c.Param("id"))
	if err != nil {
		helpers.AbortWithError(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

// bindJSON decodes the request body into v, writing a 400 on malformed
// JSON. An empty body is accepted when optional is set.
func bindJSON(c *gin.Context, v interface{}, optional bool) bool {
	err := c.ShouldBindJSON(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		err = models.Invalid("request body is required")
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		err = models.Invalid("malformed request body: %v", err)
	default:
		err = models.Invalid("%v", err)
	}
	helpers.AbortWithError(c, err)
	return false
}

func pageQuery(c *gin.Context, spec helpers.SortSpec) (models.PageQuery, bool) {
	q, err := helpers.ParsePageQuery(c, spec)
	if err != nil {
		helpers.AbortWithError(c, err)
		return q, false
	}
	return q, true
}
