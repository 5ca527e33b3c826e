package tripmonitor

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Stages recorded by the planner pipeline.
const (
	StageFeasibility = "feasibility"
	StageSpeculation = "speculation_start"
	StageDay         = "day_generated"
	StageComplete    = "speculation_complete"
	StageAbort       = "speculation_abort"
	StageCacheHit    = "cache_hit"
	StageCacheMiss   = "cache_miss"
	StageSweep       = "sweep"
)

type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	TripID     string            `json:"trip_id"`
	Provider   string            `json:"provider"`
	Stage      string            `json:"stage"`
	Subject    string            `json:"subject"` // directions | imagery | day number
	Status     string            `json:"status"`  // ok | error | skipped
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	DurationMs int64             `json:"duration_ms"`
}

type Stats struct {
	TotalFeasibility   int64   `json:"total_feasibility"`
	TotalSpeculations  int64   `json:"total_speculations"`
	TotalDaysGenerated int64   `json:"total_days_generated"`
	TotalCacheHits     int64   `json:"total_cache_hits"`
	TotalCacheMisses   int64   `json:"total_cache_misses"`
	TotalErrors        int64   `json:"total_errors"`
	RecentEvents       []Event `json:"recent_events"`
}

// Monitor keeps a fixed ring of recent pipeline events plus running totals.
// One instance is wired through the app; handlers read it for the dashboard.
type Monitor struct {
	eventsMu sync.Mutex
	events   []Event
	idx      int
	count    int
	ttl      time.Duration

	totalFeasibility   int64
	totalSpeculations  int64
	totalDaysGenerated int64
	totalCacheHits     int64
	totalCacheMisses   int64
	totalErrors        int64
}

// New builds a monitor with the given ring size. A size <= 0 falls back to
// TRIP_MONITOR_BUFFER (default 200); TRIP_MONITOR_TTL bounds how old an
// event may be and still show up in RecentEvents (0 = no bound).
func New(size int) *Monitor {
	if size <= 0 {
		size = envInt("TRIP_MONITOR_BUFFER", 200)
	}
	if size <= 0 {
		size = 200
	}
	return &Monitor{
		events: make([]Event, size),
		ttl:    envDuration("TRIP_MONITOR_TTL", 0),
	}
}

func (m *Monitor) Record(e Event) {
	e.Timestamp = time.Now().UTC()

	switch e.Stage {
	case StageFeasibility:
		atomic.AddInt64(&m.totalFeasibility, 1)
	case StageSpeculation:
		atomic.AddInt64(&m.totalSpeculations, 1)
	case StageDay:
		if e.Status == "ok" {
			atomic.AddInt64(&m.totalDaysGenerated, 1)
		}
	case StageCacheHit:
		atomic.AddInt64(&m.totalCacheHits, 1)
	case StageCacheMiss:
		atomic.AddInt64(&m.totalCacheMisses, 1)
	}

	if e.Status == "error" {
		atomic.AddInt64(&m.totalErrors, 1)
	}

	m.eventsMu.Lock()
	m.events[m.idx] = e
	m.idx = (m.idx + 1) % len(m.events)
	if m.count < len(m.events) {
		m.count++
	}
	m.eventsMu.Unlock()
}

func (m *Monitor) GetStats() Stats {
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()

	res := make([]Event, 0, m.count)
	cutoff := time.Time{}
	if m.ttl > 0 {
		cutoff = time.Now().UTC().Add(-m.ttl)
	}
	start := (m.idx - m.count) % len(m.events)
	if start < 0 {
		start += len(m.events)
	}
	for i := 0; i < m.count; i++ {
		e := m.events[(start+i)%len(m.events)]
		if !cutoff.IsZero() && !e.Timestamp.IsZero() && e.Timestamp.Before(cutoff) {
			continue
		}
		res = append(res, e)
	}

	return Stats{
		TotalFeasibility:   atomic.LoadInt64(&m.totalFeasibility),
		TotalSpeculations:  atomic.LoadInt64(&m.totalSpeculations),
		TotalDaysGenerated: atomic.LoadInt64(&m.totalDaysGenerated),
		TotalCacheHits:     atomic.LoadInt64(&m.totalCacheHits),
		TotalCacheMisses:   atomic.LoadInt64(&m.totalCacheMisses),
		TotalErrors:        atomic.LoadInt64(&m.totalErrors),
		RecentEvents:       res,
	}
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err == nil {
		return d
	}
	sec, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	if sec <= 0 {
		return 0
	}
	return time.Duration(sec) * time.Second
}
