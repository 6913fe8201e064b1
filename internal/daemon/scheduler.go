package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/Muadiv/connection-down-detector/internal/util"
)

// Job represents a scheduled job. A job is never run concurrently with
// itself: while one invocation is in flight the scheduler skips the
// slot, which is what keeps probes for a single host sequential.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error

	// State
	lastRun    time.Time
	nextRun    time.Time
	lastError  error
	errorCount int
	running    bool
	mu         sync.RWMutex
}

// JobStatus represents the status of a job.
type JobStatus struct {
	Name       string        `json:"name"`
	Interval   time.Duration `json:"interval"`
	LastRun    time.Time     `json:"last_run"`
	NextRun    time.Time     `json:"next_run"`
	LastError  string        `json:"last_error,omitempty"`
	ErrorCount int           `json:"error_count"`
	Running    bool          `json:"running"`
}

// Scheduler manages scheduled jobs.
type Scheduler struct {
	ctx    context.Context
	daemon *Daemon
	jobs   []*Job
	mu     sync.RWMutex
	wg     sync.WaitGroup
}

// NewScheduler creates a new scheduler.
func NewScheduler(ctx context.Context, daemon *Daemon) *Scheduler {
	return &Scheduler{
		ctx:    ctx,
		daemon: daemon,
		jobs:   make([]*Job, 0),
	}
}

// AddJob adds a job to the scheduler.
func (s *Scheduler) AddJob(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.nextRun = time.Now().Add(time.Second) // initial delay
	s.jobs = append(s.jobs, job)
}

// Run starts the scheduler and blocks until the context is cancelled
// and every in-flight job invocation has returned, so shutdown work
// that follows sees no concurrent mutations.
func (s *Scheduler) Run() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	util.Info("Scheduler started with %d jobs", len(s.jobs))

	for {
		select {
		case <-s.ctx.Done():
			util.Info("Scheduler stopping")
			s.wg.Wait()
			return
		case now := <-ticker.C:
			s.checkJobs(now)
		}
	}
}

func (s *Scheduler) checkJobs(now time.Time) {
	s.mu.RLock()
	jobs := s.jobs
	s.mu.RUnlock()

	for _, job := range jobs {
		job.mu.RLock()
		shouldRun := !job.running && now.After(job.nextRun)
		job.mu.RUnlock()

		if shouldRun {
			s.wg.Add(1)
			go func(j *Job) {
				defer s.wg.Done()
				s.runJob(j)
			}(job)
		}
	}
}

func (s *Scheduler) runJob(job *Job) {
	job.mu.Lock()
	if job.running {
		job.mu.Unlock()
		return
	}
	job.running = true
	job.lastRun = time.Now()
	job.mu.Unlock()

	util.Debug("Running job: %s", job.Name)

	ctx, cancel := context.WithTimeout(s.ctx, job.Interval)
	defer cancel()

	err := job.Run(ctx)

	job.mu.Lock()
	job.running = false
	if err != nil {
		job.lastError = err
		job.errorCount++
		util.Warn("Job %s failed: %v", job.Name, err)
	} else {
		job.lastError = nil
	}
	job.nextRun = time.Now().Add(job.Interval)
	job.mu.Unlock()
}

// GetJobStatuses returns the status of all jobs.
func (s *Scheduler) GetJobStatuses() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]JobStatus, len(s.jobs))
	for i, job := range s.jobs {
		job.mu.RLock()
		status := JobStatus{
			Name:       job.Name,
			Interval:   job.Interval,
			LastRun:    job.lastRun,
			NextRun:    job.nextRun,
			ErrorCount: job.errorCount,
			Running:    job.running,
		}
		if job.lastError != nil {
			status.LastError = job.lastError.Error()
		}
		job.mu.RUnlock()
		statuses[i] = status
	}

	return statuses
}
