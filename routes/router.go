package routes

import (
	"net/http"
	"time"

	"go-restobook/controllers"
	"go-restobook/events"
	"go-restobook/middleware"
	"go-restobook/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	CORSOrigins    []string
	Metrics        bool
	RequestTimeout time.Duration
}

// NewRouter builds the engine with the middleware chain and every route
// under /api/v1.
func NewRouter(svc *services.Services, store controllers.Pinger, hub *events.Hub, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Recovery(), middleware.Logger())
	if opts.Metrics {
		router.Use(middleware.Metrics())
	}
	router.Use(cors.New(corsConfig(opts.CORSOrigins)))
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
	})

	api := router.Group("/api/v1")
	DinerRoutes(api, controllers.NewDinerController(svc, opts.RequestTimeout))
	TableRoutes(api, controllers.NewTableController(svc, opts.RequestTimeout))
	ReservationRoutes(api, controllers.NewReservationController(svc, opts.RequestTimeout))
	WorkflowRoutes(api, controllers.NewWorkflowController(svc, opts.RequestTimeout))
	SystemRoutes(api, controllers.NewSystemController(store, hub, opts.RequestTimeout), opts.Metrics)
	return router
}

// corsConfig allows the listed origins with credentials. "*" or an empty
// list allows every origin, without credentials.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"POST", "GET", "PATCH", "DELETE", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
