package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domainPlanner "github.com/slaxmankiran/aitravel-app-sub008/domains/planner"
	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
	"github.com/slaxmankiran/aitravel-app-sub008/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
)

type fakePlannerService struct {
	state   domainPlanner.SpeculationState
	tracked bool
	aborted []string
}

func (f *fakePlannerService) EvaluateFeasibility(ctx context.Context, tripID string) (domainPlanner.FeasibilityResponse, error) {
	return domainPlanner.FeasibilityResponse{TripID: tripID}, nil
}

func (f *fakePlannerService) GenerateItinerary(ctx context.Context, tripID string) ([]domainTrip.ItineraryDay, error) {
	return nil, nil
}

func (f *fakePlannerService) SpeculationStatus(ctx context.Context, tripID string) (domainPlanner.SpeculationState, bool) {
	return f.state, f.tracked
}

func (f *fakePlannerService) CancelSpeculation(ctx context.Context, tripID string) error {
	f.aborted = append(f.aborted, tripID)
	return nil
}

func (f *fakePlannerService) SweepJobs() int { return 0 }

func (f *fakePlannerService) SpeculationStatistics() domainPlanner.SpeculationStats {
	return domainPlanner.SpeculationStats{}
}

func (f *fakePlannerService) StartBackgroundSweep(ctx context.Context) {}

func newPlannerTestApp(service domainPlanner.IPlannerUsecase) *fiber.App {
	app := fiber.New()
	app.Use(middleware.Recovery())
	InitRestPlanner(app, service)
	return app
}

func TestSpeculationStatus_NotTracked(t *testing.T) {
	app := newPlannerTestApp(&fakePlannerService{tracked: false})

	req := httptest.NewRequest(http.MethodGet, "/trips/trip-9/speculation", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if envelope.Code != "NOT_FOUND" || envelope.Message != "No speculative job tracked for this trip" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
}

func TestSpeculationStatus_Tracked(t *testing.T) {
	service := &fakePlannerService{
		tracked: true,
		state: domainPlanner.SpeculationState{
			TripID:        "trip-9",
			Status:        "running",
			DaysGenerated: 2,
			StartedAt:     time.Now(),
		},
	}
	app := newPlannerTestApp(service)

	req := httptest.NewRequest(http.MethodGet, "/trips/trip-9/speculation", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Code    string                 `json:"code"`
		Results map[string]interface{} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if envelope.Code != "SUCCESS" {
		t.Fatalf("unexpected code %q", envelope.Code)
	}
	if v, ok := envelope.Results["status"].(string); !ok || v != "running" {
		t.Fatalf("expected running status, got %#v", envelope.Results["status"])
	}
	if v, ok := envelope.Results["days_generated"].(float64); !ok || int(v) != 2 {
		t.Fatalf("expected days_generated 2, got %#v", envelope.Results["days_generated"])
	}
}

func TestCancelSpeculation_ReachesService(t *testing.T) {
	service := &fakePlannerService{}
	app := newPlannerTestApp(service)

	req := httptest.NewRequest(http.MethodDelete, "/trips/trip-9/speculation", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if len(service.aborted) != 1 || service.aborted[0] != "trip-9" {
		t.Fatalf("expected abort for trip-9, got %v", service.aborted)
	}
}
