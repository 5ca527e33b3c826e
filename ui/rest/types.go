package rest

import (
	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
)

// TripSummaryResponse is the trimmed card view the frontend trip list
// consumes; itinerary days are omitted to keep the payload small.
type TripSummaryResponse struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Destination  string `json:"destination"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DurationDays int    `json:"duration_days"`
	Travelers    int    `json:"travelers"`
	Budget       string `json:"budget,omitempty"`
	CoverImage   string `json:"cover_image,omitempty"`
	Status       string `json:"status"`
}

func toTripSummary(t domainTrip.Trip) TripSummaryResponse {
	return TripSummaryResponse{
		ID:           t.ID,
		Title:        t.Title,
		Destination:  t.Destination,
		StartDate:    t.StartDate.Format("2006-01-02"),
		EndDate:      t.EndDate.Format("2006-01-02"),
		DurationDays: t.DurationDays(),
		Travelers:    t.Travelers,
		Budget:       t.Budget,
		CoverImage:   t.CoverImage,
		Status:       string(t.Status),
	}
}
