// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/witsml-transfer/backend/internal/config"
	"github.com/witsml-transfer/backend/internal/jobs"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// JobHandler handles job submission and tracking
type JobHandler interface {
	HandleSubmitJob(c echo.Context) error
	HandleListJobs(c echo.Context) error
	HandleGetJob(c echo.Context) error
	HandleGetJobMsgpack(c echo.Context) error
	HandleCancelJob(c echo.Context) error
	HandleJobHistory(c echo.Context) error
}

// ServerHandler handles the configured stores and reads from them
type ServerHandler interface {
	HandleListServers(c echo.Context) error
	HandleAddLog(c echo.Context) error
	HandleGetLogData(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// JobManager defines the interface for job management
// This allows mocking in tests
type JobManager interface {
	Submit(jobType models.JobType, payload []byte, targetServer, sourceServer string) (jobs.Job, error)
	Get(id string) (jobs.Job, error)
	List() []jobs.Job
	History(limit int) ([]jobs.Job, error)
	Cancel(id string) error
}

// ServerProvider resolves configured servers to store clients
type ServerProvider interface {
	Servers() []config.Server
	Client(server string) (witsml.Client, error)
}
