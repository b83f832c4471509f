// Package scheduler runs background maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// JobStatus is the state of a job after its last run.
type JobStatus string

const (
	JobStatusScheduled JobStatus = "scheduled"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobInfo is a snapshot of a job's bookkeeping.
type JobInfo struct {
	ID         string
	Name       string
	Schedule   string
	Status     JobStatus
	LastRun    time.Time
	NextRun    time.Time
	RunCount   int
	ErrorCount int
	LastError  string
}

// JobFunc is the body of a job.
type JobFunc func(ctx context.Context) error

type job struct {
	info  JobInfo
	fn    JobFunc
	gjob  gocron.Job
	first bool
}

// Scheduler wraps a gocron scheduler and tracks job runs.
type Scheduler struct {
	gocron gocron.Scheduler
	logger gocronLogger

	mu   sync.Mutex
	jobs map[string]*job

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a stopped scheduler.
func New() (*Scheduler, error) {
	logger := newLogger()
	g, err := gocron.NewScheduler(gocron.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		gocron: g,
		logger: logger,
		jobs:   make(map[string]*job),
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// AddJob registers a singleton job. With runOnStart the job also runs once
// right after Start.
func (s *Scheduler) AddJob(id, name, schedule string, def gocron.JobDefinition, fn JobFunc, runOnStart bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; ok {
		return fmt.Errorf("job %s already registered", id)
	}

	j := &job{
		info:  JobInfo{ID: id, Name: name, Schedule: schedule, Status: JobStatusScheduled},
		fn:    fn,
		first: runOnStart,
	}
	gj, err := s.gocron.NewJob(def,
		gocron.NewTask(func() { s.run(id) }),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create job %s: %w", id, err)
	}
	j.gjob = gj
	s.jobs[id] = j

	s.logger.Info("added job", "id", id, "schedule", schedule)
	return nil
}

// Start starts the scheduler and triggers jobs registered with runOnStart.
func (s *Scheduler) Start() {
	s.gocron.Start()
	s.logger.Info("job scheduler started")

	s.mu.Lock()
	var immediate []string
	for id, j := range s.jobs {
		if next, err := j.gjob.NextRun(); err == nil {
			j.info.NextRun = next
		}
		if j.first {
			immediate = append(immediate, id)
		}
	}
	s.mu.Unlock()

	for _, id := range immediate {
		if err := s.RunJobNow(id); err != nil {
			s.logger.Error("failed to run job after start", "id", id, "error", err)
		}
	}
}

// Stop cancels running jobs and shuts the scheduler down.
func (s *Scheduler) Stop() error {
	s.logger.Info("stopping job scheduler")
	s.cancel()
	return s.gocron.Shutdown()
}

// RunJobNow triggers a job outside its schedule.
func (s *Scheduler) RunJobNow(id string) error {
	s.mu.Lock()
	j, ok := s.jobs[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	if err := j.gjob.RunNow(); err != nil {
		return fmt.Errorf("failed to trigger job %s: %w", id, err)
	}
	return nil
}

// GetJob returns a snapshot of the job's bookkeeping.
func (s *Scheduler) GetJob(id string) (JobInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return JobInfo{}, false
	}
	return j.info, true
}

func (s *Scheduler) run(id string) {
	s.mu.Lock()
	j, ok := s.jobs[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	j.info.Status = JobStatusRunning
	j.info.LastRun = time.Now()
	j.info.RunCount++
	fn := j.fn
	s.mu.Unlock()

	s.logger.Debug("running job", "id", id)
	err := fn(s.ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.logger.Error("job failed", "id", id, "error", err)
		j.info.Status = JobStatusFailed
		j.info.ErrorCount++
		j.info.LastError = err.Error()
	} else {
		j.info.Status = JobStatusCompleted
		j.info.LastError = ""
	}
	if next, err := j.gjob.NextRun(); err == nil {
		j.info.NextRun = next
	}
}
