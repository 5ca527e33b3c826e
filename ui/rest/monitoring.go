package rest

import (
	"strconv"

	domainPlanner "github.com/slaxmankiran/aitravel-app-sub008/domains/planner"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/planworker"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/tripmonitor"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type MonitoringHandler struct {
	monitor *tripmonitor.Monitor
	pool    *planworker.PlanWorkerPool
	planner domainPlanner.IPlannerUsecase
}

// InitRestMonitoring registra los endpoints unificados de monitoreo del sistema
func InitRestMonitoring(app fiber.Router, monitor *tripmonitor.Monitor, pool *planworker.PlanWorkerPool, planner domainPlanner.IPlannerUsecase) {
	h := &MonitoringHandler{monitor: monitor, pool: pool, planner: planner}

	g := app.Group("/monitoring")

	g.Get("/events", h.GetRecentEvents)
	g.Get("/stats", h.GetPipelineStats)
	g.Get("/workers", h.GetWorkerStats)
	g.Get("/speculation", h.GetSpeculationStats)
}

// GetRecentEvents devuelve el feed de eventos, filtrable por trip y etapa.
func (h *MonitoringHandler) GetRecentEvents(c *fiber.Ctx) error {
	stats := h.monitor.GetStats()

	tripID := c.Query("trip_id")
	stage := c.Query("stage")
	limit, _ := strconv.Atoi(c.Query("limit"))

	events := stats.RecentEvents
	if tripID != "" || stage != "" {
		filtered := make([]tripmonitor.Event, 0, len(events))
		for _, e := range events {
			if tripID != "" && e.TripID != tripID {
				continue
			}
			if stage != "" && e.Stage != stage {
				continue
			}
			filtered = append(filtered, e)
		}
		events = filtered
	}
	if limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Pipeline events fetched",
		Results: events,
	})
}

func (h *MonitoringHandler) GetPipelineStats(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Pipeline stats fetched",
		Results: h.monitor.GetStats(),
	})
}

func (h *MonitoringHandler) GetWorkerStats(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Worker pool stats fetched",
		Results: h.pool.GetStats(),
	})
}

func (h *MonitoringHandler) GetSpeculationStats(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Speculation stats fetched",
		Results: h.planner.SpeculationStatistics(),
	})
}
