package controllers

import (
	"context"
	"net/http"
	"time"

	"go-restobook/events"
	"go-restobook/helpers"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type SystemController struct {
	store   Pinger
	hub     *events.Hub
	timeout time.Duration
}

func NewSystemController(store Pinger, hub *events.Hub, timeout time.Duration) *SystemController {
	return &SystemController{store: store, hub: hub, timeout: timeout}
}

func (sc *SystemController) Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c, sc.timeout)
		defer cancel()

		body := gin.H{"status": "ok", "time": time.Now().UTC()}
		if sc.hub != nil {
			body["websocketClients"] = sc.hub.Clients()
		}
		if err := sc.store.Ping(ctx); err != nil {
			body["status"] = "unavailable"
			body["error"] = err.Error()
			body["requestId"] = c.GetString(helpers.RequestIDKey)
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}

// Feed upgrades to a websocket that receives every published event.
func (sc *SystemController) Feed() gin.HandlerFunc {
	return func(c *gin.Context) {
		sc.hub.ServeWS(c.Writer, c.Request)
	}
}
