package rest

import (
	domainPlanner "github.com/slaxmankiran/aitravel-app-sub008/domains/planner"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Planner struct {
	Service domainPlanner.IPlannerUsecase
}

func InitRestPlanner(app fiber.Router, service domainPlanner.IPlannerUsecase) Planner {
	rest := Planner{Service: service}
	app.Post("/trips/:id/feasibility", rest.EvaluateFeasibility)
	app.Post("/trips/:id/itinerary/await", rest.GenerateItinerary)
	app.Get("/trips/:id/speculation", rest.SpeculationStatus)
	app.Delete("/trips/:id/speculation", rest.CancelSpeculation)
	return rest
}

func (controller *Planner) EvaluateFeasibility(c *fiber.Ctx) error {
	response, err := controller.Service.EvaluateFeasibility(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Feasibility evaluated",
		Results: response,
	})
}

// GenerateItinerary bloquea hasta tener el itinerario completo: si hay una
// generación especulativa en curso la espera y reutiliza sus días.
func (controller *Planner) GenerateItinerary(c *fiber.Ctx) error {
	days, err := controller.Service.GenerateItinerary(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Itinerary generated",
		Results: days,
	})
}

func (controller *Planner) SpeculationStatus(c *fiber.Ctx) error {
	state, ok := controller.Service.SpeculationStatus(c.UserContext(), c.Params("id"))
	if !ok {
		return c.Status(404).JSON(utils.ResponseData{
			Status:  404,
			Code:    "NOT_FOUND",
			Message: "No speculative job tracked for this trip",
			Results: nil,
		})
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Speculation status fetched",
		Results: state,
	})
}

func (controller *Planner) CancelSpeculation(c *fiber.Ctx) error {
	err := controller.Service.CancelSpeculation(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Speculation canceled",
		Results: nil,
	})
}
