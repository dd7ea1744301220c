// Package workers executes transfer and delete jobs against remote stores.
package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/witsml-transfer/backend/internal/logdata"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
)

// ErrNoClient is returned when a job needs a store the caller did not provide.
var ErrNoClient = errors.New("no client for server")

// Clients holds the stores one job runs against. Source is nil when the job reads and
// writes the same store.
type Clients struct {
	Target witsml.Client
	Source witsml.Client
}

// SourceOrTarget returns the store to read from.
func (c Clients) SourceOrTarget() witsml.Client {
	if c.Source != nil {
		return c.Source
	}
	return c.Target
}

// Options bound the work a single job may do at once.
type Options struct {
	PageSize               int
	MaxConcurrentTransfers int
	MaxConcurrentDeletes   int
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = logdata.DefaultPageSize
	}
	if o.MaxConcurrentTransfers <= 0 {
		o.MaxConcurrentTransfers = 1
	}
	if o.MaxConcurrentDeletes <= 0 {
		o.MaxConcurrentDeletes = 4
	}
	return o
}

// Executor runs one job type. A returned error means the job was aborted, typically by a
// transport failure; business failures are reported in the WorkerResult.
type Executor[T models.Job] interface {
	Execute(ctx context.Context, clients Clients, job T) (models.WorkerResult, *models.RefreshAction, error)
}

// Worker is an Executor with its job decoding bound, as the job manager drives it.
type Worker interface {
	JobType() models.JobType
	// Decode parses and validates a job payload.
	Decode(payload []byte) (models.Job, error)
	Run(ctx context.Context, clients Clients, job models.Job) (models.WorkerResult, *models.RefreshAction, error)
}

type typedWorker[T models.Job] struct {
	jobType  models.JobType
	executor Executor[T]
}

// Bind adapts a typed executor to a Worker for jobType.
func Bind[T models.Job](jobType models.JobType, executor Executor[T]) Worker {
	return &typedWorker[T]{jobType: jobType, executor: executor}
}

func (w *typedWorker[T]) JobType() models.JobType {
	return w.jobType
}

func (w *typedWorker[T]) Decode(payload []byte) (models.Job, error) {
	var job T
	if err := json.Unmarshal(payload, &job); err != nil {
		return nil, fmt.Errorf("%w: decoding %s job: %v", models.ErrValidation, w.jobType, err)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}

func (w *typedWorker[T]) Run(ctx context.Context, clients Clients, job models.Job) (models.WorkerResult, *models.RefreshAction, error) {
	typed, ok := job.(T)
	if !ok {
		return models.WorkerResult{}, nil, fmt.Errorf("%w: %s worker cannot run %T", models.ErrInvalidState, w.jobType, job)
	}
	if clients.Target == nil {
		return models.WorkerResult{}, nil, fmt.Errorf("%w: target", ErrNoClient)
	}
	return w.executor.Execute(ctx, clients, typed)
}

// failure is a business failure to report in a WorkerResult. It never aborts a job.
type failure struct {
	message     string
	reason      string
	description *models.EntityDescription
}

func (f *failure) Error() string {
	if f.reason == "" {
		return f.message
	}
	return f.message + ": " + f.reason
}

func fail(message, reason string) error {
	return &failure{message: message, reason: reason}
}

// isReportable reports whether err should become a failed WorkerResult rather than abort the job.
func isReportable(err error) bool {
	var f *failure
	return errors.As(err, &f) ||
		errors.Is(err, models.ErrValidation) ||
		errors.Is(err, models.ErrInvalidState) ||
		errors.Is(err, logdata.ErrLogNotFound) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// failureResult turns a reportable error into a failed WorkerResult.
func failureResult(serverUrl, message string, err error) models.WorkerResult {
	var f *failure
	if errors.As(err, &f) {
		if message == "" {
			message = f.message
		}
		return models.NewFailure(serverUrl, message, f.reason, f.description)
	}
	if message == "" {
		message = "Job failed"
	}
	return models.NewFailure(serverUrl, message, err.Error(), nil)
}

// getLogHeader reads a log header without data.
func getLogHeader(ctx context.Context, client witsml.Client, ref models.ObjectReference) (*witsml.Log, error) {
	set, err := client.GetFromStore(ctx, witsml.GetLogByUid(ref.WellUid, ref.WellboreUid, ref.Uid), witsml.OptionsIn{ReturnElements: witsml.ReturnHeaderOnly})
	if err != nil {
		return nil, fmt.Errorf("reading header of log %s: %w", ref.Uid, err)
	}
	l, ok := set.FirstLog()
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", logdata.ErrLogNotFound, ref, client.ServerUrl())
	}
	return l, nil
}
