package speculation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func newTestTracker(cfg Config) (*Tracker, *fakeClock) {
	tr := NewTracker(cfg)
	clock := newFakeClock()
	tr.now = clock.Now
	return tr, clock
}

func TestConfigDefaults(t *testing.T) {
	tr := NewTracker(Config{})
	cfg := tr.Settings()

	assert.Equal(t, DefaultTriggerThreshold, cfg.TriggerThreshold)
	assert.Equal(t, DefaultMaxDays, cfg.MaxDays)
	assert.Equal(t, DefaultRetention, cfg.Retention)
}

func TestShouldTrigger(t *testing.T) {
	tr, _ := newTestTracker(Config{})

	cases := []struct {
		verdict string
		score   int
		want    bool
	}{
		{"yes", 80, true},
		{"yes", 100, true},
		{"yes", 79, false},
		{"yes", 0, false},
		{"maybe", 95, false},
		{"no", 100, false},
		{"", 90, false},
	}
	for _, tc := range cases {
		got := tr.ShouldTrigger(tc.verdict, tc.score)
		assert.Equalf(t, tc.want, got, "verdict=%q score=%d", tc.verdict, tc.score)
	}
}

func TestShouldTriggerHonorsConfiguredThreshold(t *testing.T) {
	tr, _ := newTestTracker(Config{TriggerThreshold: 60})

	assert.True(t, tr.ShouldTrigger("yes", 60))
	assert.False(t, tr.ShouldTrigger("yes", 59))

	tr.Configure(Config{TriggerThreshold: 90})
	assert.False(t, tr.ShouldTrigger("yes", 75))
	assert.True(t, tr.ShouldTrigger("yes", 90))
}

func TestStartRegistersRunningJob(t *testing.T) {
	tr, clock := newTestTracker(Config{})

	tr.Start("trip-7")

	job, ok := tr.GetJob("trip-7")
	require.True(t, ok)
	assert.Equal(t, "trip-7", job.TripID)
	assert.Equal(t, StatusRunning, job.Status)
	assert.Equal(t, 0, job.DaysGenerated)
	assert.Equal(t, clock.Now(), job.StartedAt)
	assert.True(t, tr.HasJob("trip-7"))
}

// Restart semantics: a second Start replaces the existing record wholesale,
// progress included.
func TestStartOverwritesExistingRecord(t *testing.T) {
	tr, clock := newTestTracker(Config{})

	tr.Start("trip-1")
	tr.Update("trip-1", 2)
	clock.Advance(time.Minute)

	tr.Start("trip-1")

	job, ok := tr.GetJob("trip-1")
	require.True(t, ok)
	assert.Equal(t, StatusRunning, job.Status)
	assert.Equal(t, 0, job.DaysGenerated, "restart discards prior progress")
	assert.Equal(t, clock.Now(), job.StartedAt)
}

func TestStartOverwritesTerminalRecord(t *testing.T) {
	tr, _ := newTestTracker(Config{MaxDays: 2})

	tr.Start("trip-1")
	tr.Update("trip-1", 2)
	job, _ := tr.GetJob("trip-1")
	require.Equal(t, StatusComplete, job.Status)

	tr.Start("trip-1")
	assert.True(t, tr.HasJob("trip-1"))
}

func TestUpdateUnknownTripIsNoop(t *testing.T) {
	tr, _ := newTestTracker(Config{})

	tr.Update("ghost", 2)

	_, ok := tr.GetJob("ghost")
	assert.False(t, ok)
	assert.Equal(t, Stats{}, tr.Stats())
}

func TestUpdateProgressAndAutoComplete(t *testing.T) {
	tr, _ := newTestTracker(Config{MaxDays: 3})

	tr.Start("trip-7")

	tr.Update("trip-7", 1)
	job, _ := tr.GetJob("trip-7")
	assert.Equal(t, StatusRunning, job.Status)
	assert.Equal(t, 1, job.DaysGenerated)

	tr.Update("trip-7", 3)
	job, _ = tr.GetJob("trip-7")
	assert.Equal(t, StatusComplete, job.Status)
	assert.Equal(t, 3, job.DaysGenerated)
	assert.False(t, tr.HasJob("trip-7"), "completed jobs are not in progress")
}

func TestUpdateIsLastWriteWins(t *testing.T) {
	tr, _ := newTestTracker(Config{MaxDays: 10})

	tr.Start("trip-1")
	tr.Update("trip-1", 5)
	tr.Update("trip-1", 2)

	job, _ := tr.GetJob("trip-1")
	assert.Equal(t, 2, job.DaysGenerated)
}

func TestUpdateAfterTerminalIsNoop(t *testing.T) {
	tr, _ := newTestTracker(Config{MaxDays: 3})

	tr.Start("trip-1")
	tr.Abort("trip-1")
	tr.Update("trip-1", 1)

	job, _ := tr.GetJob("trip-1")
	assert.Equal(t, StatusAborted, job.Status)
	assert.Equal(t, 0, job.DaysGenerated)

	tr.Start("trip-2")
	tr.Update("trip-2", 3) // completes
	tr.Update("trip-2", 9)

	job, _ = tr.GetJob("trip-2")
	assert.Equal(t, StatusComplete, job.Status)
	assert.Equal(t, 3, job.DaysGenerated)
}

func TestAbortTransitions(t *testing.T) {
	tr, _ := newTestTracker(Config{MaxDays: 3})

	// Unknown trip: nothing happens.
	tr.Abort("ghost")
	_, ok := tr.GetJob("ghost")
	assert.False(t, ok)

	tr.Start("trip-1")
	tr.Update("trip-1", 1)
	tr.Abort("trip-1")

	job, _ := tr.GetJob("trip-1")
	assert.Equal(t, StatusAborted, job.Status)
	assert.Equal(t, 1, job.DaysGenerated, "abort keeps the partial progress")
	assert.False(t, tr.HasJob("trip-1"))

	// Idempotent.
	tr.Abort("trip-1")
	job, _ = tr.GetJob("trip-1")
	assert.Equal(t, StatusAborted, job.Status)

	// Complete stays Complete.
	tr.Start("trip-2")
	tr.Update("trip-2", 3)
	tr.Abort("trip-2")
	job, _ = tr.GetJob("trip-2")
	assert.Equal(t, StatusComplete, job.Status)
}

func TestCompleteFinishesRunningJobEarly(t *testing.T) {
	tr, _ := newTestTracker(Config{MaxDays: 3})

	// Unknown trip: nothing happens.
	tr.Complete("ghost")
	_, ok := tr.GetJob("ghost")
	assert.False(t, ok)

	// A two-day trip finishes below the cap; the host closes the job.
	tr.Start("short-trip")
	tr.Update("short-trip", 2)
	tr.Complete("short-trip")

	job, _ := tr.GetJob("short-trip")
	assert.Equal(t, StatusComplete, job.Status)
	assert.Equal(t, 2, job.DaysGenerated)

	// Terminal records are untouched.
	tr.Start("stopped")
	tr.Abort("stopped")
	tr.Complete("stopped")
	job, _ = tr.GetJob("stopped")
	assert.Equal(t, StatusAborted, job.Status)
}

func TestHasJobOnlyCountsRunning(t *testing.T) {
	tr, _ := newTestTracker(Config{MaxDays: 2})

	assert.False(t, tr.HasJob("none"))

	tr.Start("running")
	tr.Start("done")
	tr.Update("done", 2)
	tr.Start("stopped")
	tr.Abort("stopped")

	assert.True(t, tr.HasJob("running"))
	assert.False(t, tr.HasJob("done"))
	assert.False(t, tr.HasJob("stopped"))
}

func TestSweepRemovesAgedJobsAnyStatus(t *testing.T) {
	tr, clock := newTestTracker(Config{Retention: 10 * time.Minute, MaxDays: 2})

	tr.Start("old-running")
	tr.Start("old-done")
	tr.Update("old-done", 2)
	tr.Start("old-aborted")
	tr.Abort("old-aborted")

	clock.Advance(11 * time.Minute)
	tr.Start("fresh")

	removed := tr.Sweep()
	assert.Equal(t, 3, removed)

	for _, id := range []string{"old-running", "old-done", "old-aborted"} {
		_, ok := tr.GetJob(id)
		assert.Falsef(t, ok, "%s should have been swept", id)
	}
	_, ok := tr.GetJob("fresh")
	assert.True(t, ok)
}

func TestSweepRetentionBoundary(t *testing.T) {
	tr, clock := newTestTracker(Config{Retention: 10 * time.Minute})

	tr.Start("trip-1")

	// Exactly at the retention age the job survives.
	clock.Advance(10 * time.Minute)
	assert.Equal(t, 0, tr.Sweep())
	_, ok := tr.GetJob("trip-1")
	assert.True(t, ok)

	// Past it, it is freed.
	clock.Advance(time.Nanosecond)
	assert.Equal(t, 1, tr.Sweep())
	_, ok = tr.GetJob("trip-1")
	assert.False(t, ok)
}

func TestSweepIsIdempotent(t *testing.T) {
	tr, clock := newTestTracker(Config{Retention: time.Minute})

	tr.Start("trip-1")
	clock.Advance(2 * time.Minute)

	assert.Equal(t, 1, tr.Sweep())
	assert.Equal(t, 0, tr.Sweep())
}

func TestStatsAggregation(t *testing.T) {
	tr, _ := newTestTracker(Config{MaxDays: 3})

	tr.Start("a") // running, 1 day
	tr.Update("a", 1)
	tr.Start("b") // complete, 3 days
	tr.Update("b", 3)
	tr.Start("c") // aborted, 2 days: partial progress still counts
	tr.Update("c", 2)
	tr.Abort("c")
	tr.Start("d") // running, 0 days

	stats := tr.Stats()
	assert.Equal(t, 2, stats.ActiveJobs)
	assert.Equal(t, 1, stats.CompletedJobs)
	assert.Equal(t, 6, stats.TotalDaysGenerated)
}

func TestStatsAfterSweepExcludesFreedJobs(t *testing.T) {
	tr, clock := newTestTracker(Config{Retention: time.Minute, MaxDays: 3})

	tr.Start("old")
	tr.Update("old", 2)
	clock.Advance(2 * time.Minute)
	tr.Start("new")
	tr.Update("new", 1)

	tr.Sweep()

	stats := tr.Stats()
	assert.Equal(t, 1, stats.ActiveJobs)
	assert.Equal(t, 1, stats.TotalDaysGenerated)
}

func TestConcurrentOperationsStayConsistent(t *testing.T) {
	tr := NewTracker(Config{MaxDays: 3})

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < 300; i++ {
				id := fmt.Sprintf("trip-%d", (seed+i)%20)
				switch i % 5 {
				case 0:
					tr.Start(id)
				case 1:
					tr.Update(id, i%4)
				case 2:
					tr.HasJob(id)
				case 3:
					tr.Abort(id)
				case 4:
					tr.Stats()
				}
			}
		}(g)
	}
	wg.Wait()

	// Every retained record must hold an internally consistent state.
	for _, id := range func() []string {
		ids := make([]string, 0, 20)
		for i := 0; i < 20; i++ {
			ids = append(ids, fmt.Sprintf("trip-%d", i))
		}
		return ids
	}() {
		job, ok := tr.GetJob(id)
		if !ok {
			continue
		}
		assert.Contains(t, []Status{StatusRunning, StatusComplete, StatusAborted}, job.Status)
		assert.GreaterOrEqual(t, job.DaysGenerated, 0)
		assert.LessOrEqual(t, job.DaysGenerated, 3)
	}
}
