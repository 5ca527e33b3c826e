package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/slaxmankiran/aitravel-app-sub008/config"
	domainDirections "github.com/slaxmankiran/aitravel-app-sub008/domains/directions"
	"github.com/sirupsen/logrus"
)

// OSRMClient fetches routes from an OSRM-compatible routing engine.
type OSRMClient struct {
	baseURL string
	client  *http.Client
}

func NewOSRMClient() *OSRMClient {
	return &OSRMClient{
		baseURL: strings.TrimRight(config.RoutingBaseURL, "/"),
		client:  &http.Client{Timeout: time.Duration(config.RoutingTimeoutSeconds) * time.Second},
	}
}

// Internal shapes for the OSRM response.
type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64   `json:"distance"`
	Duration float64   `json:"duration"`
	Geometry string    `json:"geometry"`
	Legs     []osrmLeg `json:"legs"`
}

type osrmLeg struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
}

// FetchRoute calls /route/v1/{profile}/{lon,lat;...}. OSRM wants lon,lat
// order, the opposite of our domain structs.
func (c *OSRMClient) FetchRoute(ctx context.Context, request domainDirections.RouteRequest) (domainDirections.Route, error) {
	if len(request.Waypoints) < 2 {
		return domainDirections.Route{}, fmt.Errorf("route needs at least 2 waypoints, got %d", len(request.Waypoints))
	}

	coords := make([]string, len(request.Waypoints))
	for i, w := range request.Waypoints {
		coords[i] = fmt.Sprintf("%f,%f", w.Lng, w.Lat)
	}

	url := fmt.Sprintf("%s/route/v1/%s/%s?overview=full&geometries=polyline6&alternatives=false",
		c.baseURL, profileFor(request.Mode), strings.Join(coords, ";"))

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return domainDirections.Route{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domainDirections.Route{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return domainDirections.Route{}, fmt.Errorf("routing engine returned status %d", resp.StatusCode)
	}

	var raw osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return domainDirections.Route{}, fmt.Errorf("failed to decode routing response: %v", err)
	}

	if raw.Code != "Ok" || len(raw.Routes) == 0 {
		return domainDirections.Route{}, fmt.Errorf("routing engine rejected request: %s %s", raw.Code, raw.Message)
	}

	best := raw.Routes[0]
	route := domainDirections.Route{
		Mode:            request.Mode,
		DistanceMeters:  best.Distance,
		DurationSeconds: best.Duration,
		Geometry:        best.Geometry,
		Legs:            make([]domainDirections.RouteLeg, 0, len(best.Legs)),
		FetchedAt:       time.Now().UTC(),
	}
	for _, leg := range best.Legs {
		route.Legs = append(route.Legs, domainDirections.RouteLeg{
			DistanceMeters:  leg.Distance,
			DurationSeconds: leg.Duration,
		})
	}

	logrus.WithFields(logrus.Fields{
		"mode":      request.Mode,
		"waypoints": len(request.Waypoints),
		"meters":    route.DistanceMeters,
	}).Debug("[ROUTING] Route fetched")

	return route, nil
}

func profileFor(mode domainDirections.Mode) string {
	switch mode {
	case domainDirections.ModeWalking:
		return "walking"
	case domainDirections.ModeCycling:
		return "cycling"
	default:
		return "driving"
	}
}
