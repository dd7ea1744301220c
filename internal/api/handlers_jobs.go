// handlers_jobs.go - Job submission and tracking handlers
package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/witsml-transfer/backend/internal/models"
)

const defaultHistoryLimit = 50

// JobHandlerImpl implements the JobHandler interface
type JobHandlerImpl struct {
	jobs JobManager
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobs JobManager) JobHandler {
	return &JobHandlerImpl{jobs: jobs}
}

// HandleSubmitJob starts a job. The body is the job payload; target and source name the servers.
func (h *JobHandlerImpl) HandleSubmitJob(c echo.Context) error {
	jobType := models.JobType(c.Param("jobType"))
	if jobType == "" {
		return NewValidationError("jobType")
	}
	target := c.QueryParam("target")
	if target == "" {
		return NewValidationError("target")
	}

	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewBadRequestError("failed to read request body", err)
	}
	if len(payload) == 0 {
		return NewBadRequestError("job payload is required", nil)
	}

	job, err := h.jobs.Submit(jobType, payload, target, c.QueryParam("source"))
	if err != nil {
		return FromError("failed to submit job", err)
	}
	return c.JSON(http.StatusAccepted, job)
}

// HandleListJobs returns the jobs held in memory, newest first
func (h *JobHandlerImpl) HandleListJobs(c echo.Context) error {
	return c.JSON(http.StatusOK, h.jobs.List())
}

// HandleGetJob returns one job with its result and refresh action
func (h *JobHandlerImpl) HandleGetJob(c echo.Context) error {
	id := c.Param("id")
	job, err := h.jobs.Get(id)
	if err != nil {
		return FromError("job not found: "+id, err)
	}
	return c.JSON(http.StatusOK, job)
}

// HandleGetJobMsgpack returns one job encoded as msgpack
func (h *JobHandlerImpl) HandleGetJobMsgpack(c echo.Context) error {
	id := c.Param("id")
	job, err := h.jobs.Get(id)
	if err != nil {
		return FromError("job not found: "+id, err)
	}

	data, err := msgpack.Marshal(job)
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleCancelJob stops a running job from starting further requests
func (h *JobHandlerImpl) HandleCancelJob(c echo.Context) error {
	id := c.Param("id")
	if err := h.jobs.Cancel(id); err != nil {
		return FromError("failed to cancel job "+id, err)
	}
	return c.JSON(http.StatusAccepted, map[string]string{"id": id, "status": "cancelling"})
}

// HandleJobHistory returns finished jobs from the persistent history
func (h *JobHandlerImpl) HandleJobHistory(c echo.Context) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return NewValidationError("limit")
		}
		limit = n
	}

	history, err := h.jobs.History(limit)
	if err != nil {
		return FromError("failed to read job history", err)
	}
	return c.JSON(http.StatusOK, history)
}
