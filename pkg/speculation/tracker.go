// Package speculation tracks background itinerary pre-generation jobs.
//
// The tracker is bookkeeping only: it holds lifecycle records (who is
// generating, how far along, when it started) while the actual work and its
// results live with the caller. Records are only ever freed by Sweep, so the
// host must invoke it on a recurring cadence.
package speculation

import (
	"sync"
	"time"
)

// Status is the lifecycle state of a speculative job. Complete and Aborted
// are terminal; no operation transitions out of them.
type Status string

const (
	StatusRunning  Status = "running"
	StatusComplete Status = "complete"
	StatusAborted  Status = "aborted"
)

// Job is a snapshot of one tracked speculative generation.
type Job struct {
	TripID        string    `json:"trip_id"`
	StartedAt     time.Time `json:"started_at"`
	Status        Status    `json:"status"`
	DaysGenerated int       `json:"days_generated"`
}

// Stats aggregates over all currently retained jobs, terminal ones included.
// Monitoring data only, never used for correctness decisions.
type Stats struct {
	ActiveJobs         int `json:"active_jobs"`
	CompletedJobs      int `json:"completed_jobs"`
	TotalDaysGenerated int `json:"total_days_generated"`
}

// Config carries the externally tunable knobs. Non-positive fields fall back
// to the defaults.
type Config struct {
	TriggerThreshold int           // minimum feasibility score, default 80
	MaxDays          int           // days after which a job auto-completes, default 3
	Retention        time.Duration // age at which Sweep frees a record, default 10m
}

const (
	DefaultTriggerThreshold = 80
	DefaultMaxDays          = 3
	DefaultRetention        = 10 * time.Minute
)

func (c Config) withDefaults() Config {
	if c.TriggerThreshold <= 0 {
		c.TriggerThreshold = DefaultTriggerThreshold
	}
	if c.MaxDays <= 0 {
		c.MaxDays = DefaultMaxDays
	}
	if c.Retention <= 0 {
		c.Retention = DefaultRetention
	}
	return c
}

// Tracker is a mutex-guarded registry of speculative jobs keyed by trip ID.
// Every operation is total: unknown trips and terminal records yield no-ops
// or neutral results, never errors.
type Tracker struct {
	mu   sync.Mutex
	cfg  Config
	jobs map[string]*Job

	now func() time.Time
}

// NewTracker builds a tracker with cfg, filling unset fields with defaults.
func NewTracker(cfg Config) *Tracker {
	return &Tracker{
		cfg:  cfg.withDefaults(),
		jobs: make(map[string]*Job),
		now:  time.Now,
	}
}

// Configure swaps the tunable knobs at runtime. Existing records are not
// retrofitted; the new values apply from the next operation on.
func (t *Tracker) Configure(cfg Config) {
	t.mu.Lock()
	t.cfg = cfg.withDefaults()
	t.mu.Unlock()
}

// Settings returns the effective configuration.
func (t *Tracker) Settings() Config {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cfg
}

// ShouldTrigger decides whether a feasibility outcome warrants speculative
// generation: an affirmative verdict with a score at or above the threshold.
func (t *Tracker) ShouldTrigger(verdict string, score int) bool {
	t.mu.Lock()
	threshold := t.cfg.TriggerThreshold
	t.mu.Unlock()
	return verdict == "yes" && score >= threshold
}

// Start registers a Running record for tripID. A prior record for the same
// trip, whatever its status, is overwritten: a restart wins over history.
// Callers must Start before launching the worker, otherwise the worker's
// first Update lands on an absent record and is lost.
func (t *Tracker) Start(tripID string) {
	t.mu.Lock()
	t.jobs[tripID] = &Job{
		TripID:    tripID,
		StartedAt: t.now(),
		Status:    StatusRunning,
	}
	t.mu.Unlock()
}

// Update records the worker's progress. Absent or terminal records ignore
// the call, so a late worker cannot resurrect a finished job. Reaching the
// configured maximum transitions the job to Complete.
func (t *Tracker) Update(tripID string, daysGenerated int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[tripID]
	if !ok || job.Status != StatusRunning {
		return
	}

	job.DaysGenerated = daysGenerated
	if daysGenerated >= t.cfg.MaxDays {
		job.Status = StatusComplete
	}
}

// HasJob reports whether tripID has generation in flight right now.
// Terminal records answer false; they are history, not activity.
func (t *Tracker) HasJob(tripID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[tripID]
	return ok && job.Status == StatusRunning
}

// GetJob returns the record for tripID in any status, or false if the trip
// never entered speculative flow or was already swept.
func (t *Tracker) GetJob(tripID string) (Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[tripID]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Complete marks a Running job as finished before it reaches the configured
// day maximum. Hosts use it when the trip itself is shorter than the cap and
// there is nothing left to generate. Absent or terminal records are no-ops.
func (t *Tracker) Complete(tripID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[tripID]
	if !ok || job.Status != StatusRunning {
		return
	}
	job.Status = StatusComplete
}

// Abort cancels a Running job. Any other state is left untouched: completed
// jobs stay Complete and a second Abort is simply idempotent.
func (t *Tracker) Abort(tripID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[tripID]
	if !ok || job.Status != StatusRunning {
		return
	}
	job.Status = StatusAborted
}

// Sweep frees every record older than the retention window, regardless of
// status, and returns how many were removed. This is the only path that
// releases tracker memory; it is pure and idempotent so hosts and tests can
// call it directly without a timer.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.cfg.Retention)
	removed := 0
	for id, job := range t.jobs {
		if job.StartedAt.Before(cutoff) {
			delete(t.jobs, id)
			removed++
		}
	}
	return removed
}

// Stats aggregates the retained records: Running count, Complete count, and
// the day total across every record including aborted partial progress.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	var s Stats
	for _, job := range t.jobs {
		switch job.Status {
		case StatusRunning:
			s.ActiveJobs++
		case StatusComplete:
			s.CompletedJobs++
		}
		s.TotalDaysGenerated += job.DaysGenerated
	}
	return s
}
