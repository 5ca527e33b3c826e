package trip

import (
	"context"
	"time"
)

type Status string

const (
	StatusDraft    Status = "DRAFT"    // created, no itinerary yet
	StatusPlanning Status = "PLANNING" // generation in progress
	StatusReady    Status = "READY"    // full itinerary available
)

type Trip struct {
	ID          string         `json:"ID"`
	Title       string         `json:"title"`
	Destination string         `json:"destination"`
	StartDate   time.Time      `json:"start_date"`
	EndDate     time.Time      `json:"end_date"`
	Travelers   int            `json:"travelers"`
	Budget      string         `json:"budget,omitempty"` // low | medium | high
	Interests   []string       `json:"interests,omitempty"`
	CoverImage  string         `json:"cover_image,omitempty"`
	Status      Status         `json:"status"`
	Days        []ItineraryDay `json:"days,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// DurationDays is the inclusive day count of the trip.
func (t Trip) DurationDays() int {
	if t.EndDate.Before(t.StartDate) {
		return 0
	}
	return int(t.EndDate.Sub(t.StartDate).Hours()/24) + 1
}

type ItineraryDay struct {
	ID          string     `json:"ID"`
	TripID      string     `json:"trip_id"`
	DayNumber   int        `json:"day_number"` // 1-based
	Date        time.Time  `json:"date"`
	Summary     string     `json:"summary"`
	Activities  []Activity `json:"activities"`
	Speculative bool       `json:"speculative"` // generated ahead of user confirmation
	CreatedAt   time.Time  `json:"created_at"`
}

type Activity struct {
	Time     string  `json:"time"` // "09:00"
	Title    string  `json:"title"`
	Category string  `json:"category,omitempty"` // food | sight | transit | lodging
	Notes    string  `json:"notes,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lng      float64 `json:"lng,omitempty"`
}

type CreateTripRequest struct {
	Title       string   `json:"title" form:"title"`
	Destination string   `json:"destination" form:"destination"`
	StartDate   string   `json:"start_date" form:"start_date"` // YYYY-MM-DD
	EndDate     string   `json:"end_date" form:"end_date"`
	Travelers   int      `json:"travelers" form:"travelers"`
	Budget      string   `json:"budget" form:"budget"`
	Interests   []string `json:"interests" form:"interests"`
}

type UpdateTripRequest struct {
	ID          string   `json:"-"`
	Title       string   `json:"title" form:"title"`
	Destination string   `json:"destination" form:"destination"`
	StartDate   string   `json:"start_date" form:"start_date"`
	EndDate     string   `json:"end_date" form:"end_date"`
	Travelers   int      `json:"travelers" form:"travelers"`
	Budget      string   `json:"budget" form:"budget"`
	Interests   []string `json:"interests" form:"interests"`
}

type ITripUsecase interface {
	Create(ctx context.Context, request CreateTripRequest) (Trip, error)
	List(ctx context.Context) ([]Trip, error)
	GetByID(ctx context.Context, id string) (Trip, error)
	Update(ctx context.Context, request UpdateTripRequest) (Trip, error)
	Delete(ctx context.Context, id string) error
	SetCoverImage(ctx context.Context, id string, path string) (Trip, error)
	GetItinerary(ctx context.Context, id string) ([]ItineraryDay, error)
}

type ITripRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, t Trip) error
	List(ctx context.Context) ([]Trip, error)
	GetByID(ctx context.Context, id string) (Trip, error)
	Update(ctx context.Context, t Trip) error
	Delete(ctx context.Context, id string) error

	SaveDay(ctx context.Context, day ItineraryDay) error
	DaysByTrip(ctx context.Context, tripID string) ([]ItineraryDay, error)
	DeleteDays(ctx context.Context, tripID string) error
	MarkDaysConfirmed(ctx context.Context, tripID string) error
}
