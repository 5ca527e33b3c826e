package tripmonitor

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonitorCountsByStage(t *testing.T) {
	m := New(10)

	m.Record(Event{TripID: "t1", Stage: StageFeasibility, Status: "ok"})
	m.Record(Event{TripID: "t1", Stage: StageSpeculation, Status: "ok"})
	m.Record(Event{TripID: "t1", Stage: StageDay, Subject: "1", Status: "ok"})
	m.Record(Event{TripID: "t1", Stage: StageDay, Subject: "2", Status: "ok"})
	m.Record(Event{TripID: "t1", Stage: StageDay, Subject: "3", Status: "error", Error: "provider timeout"})
	m.Record(Event{TripID: "t2", Stage: StageCacheHit, Subject: "directions"})
	m.Record(Event{TripID: "t2", Stage: StageCacheMiss, Subject: "directions"})

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats.TotalFeasibility)
	assert.Equal(t, int64(1), stats.TotalSpeculations)
	assert.Equal(t, int64(2), stats.TotalDaysGenerated, "failed day must not count as generated")
	assert.Equal(t, int64(1), stats.TotalCacheHits)
	assert.Equal(t, int64(1), stats.TotalCacheMisses)
	assert.Equal(t, int64(1), stats.TotalErrors)
	assert.Len(t, stats.RecentEvents, 7)
}

func TestMonitorRingKeepsNewest(t *testing.T) {
	m := New(3)

	for i := 1; i <= 5; i++ {
		m.Record(Event{TripID: "t1", Stage: StageDay, Subject: strconv.Itoa(i), Status: "ok"})
	}

	stats := m.GetStats()
	assert.Len(t, stats.RecentEvents, 3)
	// Oldest first within the ring; events 1 and 2 were overwritten.
	assert.Equal(t, "3", stats.RecentEvents[0].Subject)
	assert.Equal(t, "5", stats.RecentEvents[2].Subject)
	// Totals are not bounded by the ring.
	assert.Equal(t, int64(5), stats.TotalDaysGenerated)
}

func TestMonitorTTLFiltersRecentEvents(t *testing.T) {
	m := New(10)
	m.ttl = 50 * time.Millisecond

	m.Record(Event{TripID: "t1", Stage: StageSweep, Status: "ok"})
	time.Sleep(60 * time.Millisecond)
	m.Record(Event{TripID: "t2", Stage: StageSweep, Status: "ok"})

	stats := m.GetStats()
	assert.Len(t, stats.RecentEvents, 1)
	assert.Equal(t, "t2", stats.RecentEvents[0].TripID)
}

func TestMonitorStampsTimestamps(t *testing.T) {
	m := New(4)
	before := time.Now().UTC()
	m.Record(Event{TripID: "t1", Stage: StageComplete, Status: "ok"})

	stats := m.GetStats()
	assert.Len(t, stats.RecentEvents, 1)
	got := stats.RecentEvents[0].Timestamp
	assert.False(t, got.Before(before))
	assert.False(t, got.After(time.Now().UTC()))
}
