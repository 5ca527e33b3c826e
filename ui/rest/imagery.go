package rest

import (
	"net/url"

	domainImagery "github.com/slaxmankiran/aitravel-app-sub008/domains/imagery"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Imagery struct {
	Service domainImagery.IImageryUsecase
}

func InitRestImagery(app fiber.Router, service domainImagery.IImageryUsecase) Imagery {
	rest := Imagery{Service: service}
	app.Get("/imagery/:destination", rest.GetImages)
	app.Post("/imagery/flush", rest.FlushCache)
	return rest
}

func (controller *Imagery) GetImages(c *fiber.Ctx) error {
	destination := c.Params("destination")
	if decoded, err := url.PathUnescape(destination); err == nil {
		destination = decoded
	}

	images, err := controller.Service.GetImages(c.UserContext(), destination)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Imagery fetched",
		Results: images,
	})
}

func (controller *Imagery) FlushCache(c *fiber.Ctx) error {
	removed := controller.Service.FlushCache()

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Expired imagery flushed",
		Results: map[string]any{"removed": removed},
	})
}
