// Package jobs runs worker jobs asynchronously and keeps their status and results.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/witsml-transfer/backend/internal/logging"
	"github.com/witsml-transfer/backend/internal/models"
	"github.com/witsml-transfer/backend/internal/witsml"
	"github.com/witsml-transfer/backend/internal/workers"
)

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrUnknownJobType = errors.New("unknown job type")
	ErrJobFinished    = errors.New("job already finished")
	ErrShuttingDown   = errors.New("job manager is shutting down")
)

// Status represents the job processing status.
type Status string

const (
	StatusRunning   Status = "running"
	StatusComplete  Status = "complete"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
	StatusError     Status = "error"
)

// Finished reports whether the job has stopped running.
func (s Status) Finished() bool {
	return s != StatusRunning
}

// Job is the record of one submitted job.
type Job struct {
	ID           string                `json:"id" msgpack:"id"`
	JobType      models.JobType        `json:"jobType" msgpack:"jobType"`
	Description  string                `json:"description" msgpack:"description"`
	TargetServer string                `json:"targetServer" msgpack:"targetServer"`
	SourceServer string                `json:"sourceServer,omitempty" msgpack:"sourceServer,omitempty"`
	Status       Status                `json:"status" msgpack:"status"`
	Result       *models.WorkerResult  `json:"result,omitempty" msgpack:"result,omitempty"`
	Refresh      *models.RefreshAction `json:"refresh,omitempty" msgpack:"refresh,omitempty"`
	Error        string                `json:"error,omitempty" msgpack:"error,omitempty"`
	CreatedAt    time.Time             `json:"createdAt" msgpack:"createdAt"`
	CompletedAt  *time.Time            `json:"completedAt,omitempty" msgpack:"completedAt,omitempty"`

	cancel context.CancelFunc
}

// ClientProvider resolves a server name or url to a store client.
type ClientProvider interface {
	Client(server string) (witsml.Client, error)
}

// Manager handles async job execution.
type Manager struct {
	jobs    map[string]*Job
	mu      sync.RWMutex
	wg      sync.WaitGroup
	workers map[models.JobType]workers.Worker
	clients ClientProvider
	history *History
	closed  bool
	log     *log.Logger
}

// NewManager creates a job manager. history may be nil, in which case finished jobs live only
// in memory.
func NewManager(registry map[models.JobType]workers.Worker, clients ClientProvider, history *History) *Manager {
	return &Manager{
		jobs:    make(map[string]*Job),
		workers: registry,
		clients: clients,
		history: history,
		log:     logging.New("jobs"),
	}
}

func newJobID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// Submit validates a job payload and starts it in the background. sourceServer may be empty
// when the job reads and writes the same store.
func (m *Manager) Submit(jobType models.JobType, payload []byte, targetServer, sourceServer string) (Job, error) {
	worker, ok := m.workers[jobType]
	if !ok {
		return Job{}, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}
	job, err := worker.Decode(payload)
	if err != nil {
		return Job{}, err
	}

	var clients workers.Clients
	if clients.Target, err = m.clients.Client(targetServer); err != nil {
		return Job{}, err
	}
	if sourceServer != "" && sourceServer != targetServer {
		if clients.Source, err = m.clients.Client(sourceServer); err != nil {
			return Job{}, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	record := &Job{
		ID:           newJobID(),
		JobType:      jobType,
		Description:  job.Description(),
		TargetServer: clients.Target.ServerUrl(),
		Status:       StatusRunning,
		CreatedAt:    time.Now(),
		cancel:       cancel,
	}
	if clients.Source != nil {
		record.SourceServer = clients.Source.ServerUrl()
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		return Job{}, ErrShuttingDown
	}
	m.jobs[record.ID] = record
	snapshot := *record
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(ctx, record, worker, job, clients)

	return snapshot, nil
}

func (m *Manager) run(ctx context.Context, record *Job, worker workers.Worker, job models.Job, clients workers.Clients) {
	defer m.wg.Done()
	defer record.cancel()

	m.log.Infof("[Job %s] Starting %s", record.ID[:8], record.Description)
	result, refresh, err := worker.Run(ctx, clients, job)

	m.mu.Lock()
	now := time.Now()
	record.CompletedAt = &now
	switch {
	case err != nil:
		record.Status = StatusError
		record.Error = err.Error()
	case result.IsSuccess:
		record.Status = StatusComplete
	case ctx.Err() != nil:
		record.Status = StatusCancelled
	default:
		record.Status = StatusFailed
	}
	if err == nil {
		record.Result = &result
		record.Refresh = refresh
	}
	snapshot := *record
	m.mu.Unlock()

	if err != nil {
		m.log.Errorf("[Job %s] Error: %v", record.ID[:8], err)
	} else {
		m.log.Infof("[Job %s] %s: %s", record.ID[:8], snapshot.Status, result.Message)
	}

	if m.history != nil {
		if err := m.history.Put(snapshot); err != nil {
			m.log.Warnf("[Job %s] Failed to record history: %v", record.ID[:8], err)
		}
	}
}

// Get retrieves a job by ID, falling back to the history for jobs no longer held in memory.
func (m *Manager) Get(id string) (Job, error) {
	m.mu.RLock()
	job, ok := m.jobs[id]
	var snapshot Job
	if ok {
		snapshot = *job
	}
	m.mu.RUnlock()
	if ok {
		return snapshot, nil
	}
	if m.history != nil {
		return m.history.Get(id)
	}
	return Job{}, ErrJobNotFound
}

// List returns the jobs held in memory, newest first.
func (m *Manager) List() []Job {
	m.mu.RLock()
	out := make([]Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		out = append(out, *job)
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// History returns up to limit finished jobs from the persistent history, newest first.
func (m *Manager) History(limit int) ([]Job, error) {
	if m.history == nil {
		return nil, nil
	}
	return m.history.List(limit)
}

// Cancel stops a running job from starting further remote calls. Calls already in flight finish.
func (m *Manager) Cancel(id string) error {
	m.mu.RLock()
	job, ok := m.jobs[id]
	var finished bool
	if ok {
		finished = job.Status.Finished()
	}
	m.mu.RUnlock()

	if !ok {
		return ErrJobNotFound
	}
	if finished {
		return ErrJobFinished
	}
	m.log.Infof("[Job %s] Cancel requested", id[:8])
	job.cancel()
	return nil
}

// Wait blocks until every submitted job has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Shutdown refuses new jobs, cancels every running job and waits for them to record their
// results. Remote calls in flight finish first. It returns ctx.Err() if ctx ends before the
// jobs do.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	running := 0
	for _, job := range m.jobs {
		if !job.Status.Finished() {
			job.cancel()
			running++
		}
	}
	m.mu.Unlock()
	if running > 0 {
		m.log.Infof("Cancelling %d running jobs", running)
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CleanupOldJobs removes finished jobs older than maxAge from memory. They remain in the history.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for id, job := range m.jobs {
		if job.Status.Finished() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, id)
		}
	}
}
