package planner

import (
	"context"
	"time"

	"github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
)

// FeasibilityReport is the provider's judgement on whether a trip as
// described can actually be planned.
type FeasibilityReport struct {
	Verdict  string   `json:"verdict"` // yes | no | maybe
	Score    int      `json:"score"`   // 0..100 confidence
	Summary  string   `json:"summary"`
	Concerns []string `json:"concerns,omitempty"`
}

// DayPlan is the provider output for a single itinerary day.
type DayPlan struct {
	DayNumber  int             `json:"day_number"`
	Summary    string          `json:"summary"`
	Activities []trip.Activity `json:"activities"`
}

// Provider generates feasibility verdicts and day plans. Implementations
// live in infrastructure/planner.
type Provider interface {
	Name() string
	CheckFeasibility(ctx context.Context, t trip.Trip) (FeasibilityReport, error)
	GenerateDay(ctx context.Context, t trip.Trip, dayNumber int, previous []trip.ItineraryDay) (DayPlan, error)
}

// SpeculationState is the wire form of a tracked speculative job.
type SpeculationState struct {
	TripID        string    `json:"trip_id"`
	Status        string    `json:"status"` // running | complete | aborted
	DaysGenerated int       `json:"days_generated"`
	StartedAt     time.Time `json:"started_at"`
}

// SpeculationStats aggregates all retained jobs for the dashboard.
type SpeculationStats struct {
	ActiveJobs         int `json:"active_jobs"`
	CompletedJobs      int `json:"completed_jobs"`
	TotalDaysGenerated int `json:"total_days_generated"`
}

type FeasibilityResponse struct {
	TripID             string            `json:"trip_id"`
	Report             FeasibilityReport `json:"report"`
	SpeculationStarted bool              `json:"speculation_started"`
}

type IPlannerUsecase interface {
	// EvaluateFeasibility runs the provider check and, when the verdict
	// clears the trigger threshold, kicks off speculative generation.
	EvaluateFeasibility(ctx context.Context, tripID string) (FeasibilityResponse, error)

	// GenerateItinerary produces the full itinerary, reusing any days the
	// speculative job already generated.
	GenerateItinerary(ctx context.Context, tripID string) ([]trip.ItineraryDay, error)

	SpeculationStatus(ctx context.Context, tripID string) (SpeculationState, bool)
	CancelSpeculation(ctx context.Context, tripID string) error
	SweepJobs() int
	SpeculationStatistics() SpeculationStats
	StartBackgroundSweep(ctx context.Context)
}
