// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/witsml-transfer/backend/internal/config"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Jobs     JobManager
	Servers  ServerProvider
	PageSize int
	Version  string
}

// Handlers holds all handler instances
type Handlers struct {
	Health  HealthHandler
	Jobs    JobHandler
	Servers ServerHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(deps.Version, deps.Jobs),
		Jobs:    NewJobHandler(deps.Jobs),
		Servers: NewServerHandler(deps.Servers, deps.PageSize),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// Job routes; static paths are matched before :id
	jobGroup := apiGroup.Group("/jobs")
	jobGroup.GET("", handlers.Jobs.HandleListJobs)
	jobGroup.GET("/history", handlers.Jobs.HandleJobHistory)
	jobGroup.POST("/:jobType", handlers.Jobs.HandleSubmitJob)
	jobGroup.GET("/:id", handlers.Jobs.HandleGetJob)
	jobGroup.GET("/:id/msgpack", handlers.Jobs.HandleGetJobMsgpack)
	jobGroup.POST("/:id/cancel", handlers.Jobs.HandleCancelJob)

	// Server routes
	serverGroup := apiGroup.Group("/servers")
	serverGroup.GET("", handlers.Servers.HandleListServers)
	serverGroup.POST("/:server/logs", handlers.Servers.HandleAddLog)
	serverGroup.GET("/:server/logs/:wellUid/:wellboreUid/:logUid/data", handlers.Servers.HandleGetLogData)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, cfg *config.AppConfig) {
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			return c.Request().URL.Path == "/api/health"
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout:      time.Duration(cfg.Server.ReadTimeout) * time.Second,
		ErrorMessage: "Request timeout - query took too long",
	}))

	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	if cfg.Server.EnableCORS {
		origins := strings.Split(cfg.Server.AllowOrigins, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
			origins = []string{"*"}
		}
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}
}
