package rest

import (
	domainDirections "github.com/slaxmankiran/aitravel-app-sub008/domains/directions"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Directions struct {
	Service domainDirections.IDirectionsUsecase
}

func InitRestDirections(app fiber.Router, service domainDirections.IDirectionsUsecase) Directions {
	rest := Directions{Service: service}
	app.Post("/directions", rest.GetRoute)
	app.Post("/directions/flush", rest.FlushCache)
	return rest
}

func (controller *Directions) GetRoute(c *fiber.Ctx) error {
	var request domainDirections.RouteRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
			Results: nil,
		})
	}

	route, err := controller.Service.GetRoute(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Route fetched",
		Results: route,
	})
}

func (controller *Directions) FlushCache(c *fiber.Ctx) error {
	removed := controller.Service.FlushCache()

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Expired routes flushed",
		Results: map[string]any{"removed": removed},
	})
}
