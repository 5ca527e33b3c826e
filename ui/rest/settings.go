package rest

import (
	domainAppSettings "github.com/slaxmankiran/aitravel-app-sub008/domains/appsettings"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Settings struct {
	Service domainAppSettings.ISettingsUsecase
}

func InitRestSettings(app fiber.Router, service domainAppSettings.ISettingsUsecase) Settings {
	rest := Settings{Service: service}
	app.Get("/planner/settings", rest.GetSettings)
	app.Post("/planner/settings", rest.UpdateSettings)
	return rest
}

func (controller *Settings) GetSettings(c *fiber.Ctx) error {
	settings, err := controller.Service.Get(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Planner settings fetched",
		Results: settings,
	})
}

// UpdateSettings aplica solo los campos presentes en el cuerpo; los campos
// omitidos conservan su valor actual.
func (controller *Settings) UpdateSettings(c *fiber.Ctx) error {
	var request domainAppSettings.UpdateSettingsRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
			Results: nil,
		})
	}

	settings, err := controller.Service.Update(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Planner settings updated",
		Results: settings,
	})
}
