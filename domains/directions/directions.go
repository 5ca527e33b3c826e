package directions

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Mode string

const (
	ModeDriving Mode = "driving"
	ModeWalking Mode = "walking"
	ModeCycling Mode = "cycling"
)

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type RouteRequest struct {
	Mode      Mode     `json:"mode" form:"mode"`
	Waypoints []LatLng `json:"waypoints"`
}

// CacheKey is the canonical fingerprint for a route lookup. Coordinates are
// rounded to 4 decimals (~11m) so jittery GPS input still hits the cache.
// Every cache consumer must key through here.
func (r RouteRequest) CacheKey() string {
	var b strings.Builder
	b.WriteString(string(r.Mode))
	for _, w := range r.Waypoints {
		fmt.Fprintf(&b, "|%.4f,%.4f", w.Lat, w.Lng)
	}
	return b.String()
}

type RouteLeg struct {
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

type Route struct {
	Mode            Mode       `json:"mode"`
	DistanceMeters  float64    `json:"distance_meters"`
	DurationSeconds float64    `json:"duration_seconds"`
	Geometry        string     `json:"geometry,omitempty"` // polyline6
	Legs            []RouteLeg `json:"legs,omitempty"`
	FetchedAt       time.Time  `json:"fetched_at"`
}

type IDirectionsUsecase interface {
	GetRoute(ctx context.Context, request RouteRequest) (Route, error)
	FlushCache() int
}

// IRoutingClient talks to the external routing engine.
type IRoutingClient interface {
	FetchRoute(ctx context.Context, request RouteRequest) (Route, error)
}
