package mcp

import (
	"context"
	"fmt"

	domainPlanner "github.com/slaxmankiran/aitravel-app-sub008/domains/planner"
	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type TripsHandler struct {
	tripService    domainTrip.ITripUsecase
	plannerService domainPlanner.IPlannerUsecase
}

func InitMcpTrips(tripService domainTrip.ITripUsecase, plannerService domainPlanner.IPlannerUsecase) *TripsHandler {
	return &TripsHandler{
		tripService:    tripService,
		plannerService: plannerService,
	}
}

func (h *TripsHandler) AddTripTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(h.toolListTrips(), h.handleListTrips)
	mcpServer.AddTool(h.toolTripStatus(), h.handleTripStatus)
	mcpServer.AddTool(h.toolGenerateItinerary(), h.handleGenerateItinerary)
}

func (h *TripsHandler) toolListTrips() mcp.Tool {
	return mcp.NewTool(
		"travel_list_trips",
		mcp.WithDescription("Retrieve every stored trip with its destination, dates and planning status."),
		mcp.WithTitleAnnotation("List Trips"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)
}

func (h *TripsHandler) handleListTrips(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	_ = request
	trips, err := h.tripService.List(ctx)
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("Found %d trips", len(trips))
	return mcp.NewToolResultStructured(trips, fallback), nil
}

func (h *TripsHandler) toolTripStatus() mcp.Tool {
	return mcp.NewTool(
		"travel_trip_status",
		mcp.WithDescription("Inspect one trip: planning status, persisted itinerary days and any speculative generation in flight."),
		mcp.WithTitleAnnotation("Trip Status"),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("trip_id",
			mcp.Description("The ID of the trip to inspect."),
			mcp.Required(),
		),
	)
}

func (h *TripsHandler) handleTripStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tripID, err := request.RequireString("trip_id")
	if err != nil {
		return nil, err
	}

	trip, err := h.tripService.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	days, err := h.tripService.GetItinerary(ctx, tripID)
	if err != nil {
		return nil, err
	}

	result := map[string]any{
		"trip_id":        trip.ID,
		"title":          trip.Title,
		"destination":    trip.Destination,
		"status":         trip.Status,
		"duration_days":  trip.DurationDays(),
		"days_persisted": len(days),
		"days":           days,
	}
	if state, ok := h.plannerService.SpeculationStatus(ctx, tripID); ok {
		result["speculation"] = state
	}

	fallback := fmt.Sprintf("Trip %q is %s with %d of %d days persisted",
		trip.Title, trip.Status, len(days), trip.DurationDays())
	return mcp.NewToolResultStructured(result, fallback), nil
}

func (h *TripsHandler) toolGenerateItinerary() mcp.Tool {
	return mcp.NewTool(
		"travel_generate_itinerary",
		mcp.WithDescription("Generate the full itinerary for a trip, reusing any speculatively generated days. Blocks until the itinerary is complete."),
		mcp.WithTitleAnnotation("Generate Itinerary"),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithString("trip_id",
			mcp.Description("The ID of the trip to plan."),
			mcp.Required(),
		),
	)
}

func (h *TripsHandler) handleGenerateItinerary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tripID, err := request.RequireString("trip_id")
	if err != nil {
		return nil, err
	}

	days, err := h.plannerService.GenerateItinerary(ctx, tripID)
	if err != nil {
		return nil, err
	}

	fallback := fmt.Sprintf("Itinerary ready: %d days generated", len(days))
	return mcp.NewToolResultStructured(days, fallback), nil
}
