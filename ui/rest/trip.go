package rest

import (
	"fmt"
	"os"

	"github.com/slaxmankiran/aitravel-app-sub008/config"
	domainTrip "github.com/slaxmankiran/aitravel-app-sub008/domains/trip"
	"github.com/slaxmankiran/aitravel-app-sub008/pkg/utils"
	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	fiberUtils "github.com/gofiber/fiber/v2/utils"
	"github.com/valyala/fasthttp"
)

type Trip struct {
	Service domainTrip.ITripUsecase
}

func InitRestTrip(app fiber.Router, service domainTrip.ITripUsecase) Trip {
	rest := Trip{Service: service}
	app.Post("/trips", rest.CreateTrip)
	app.Get("/trips", rest.ListTrips)
	app.Get("/trips/:id", rest.GetTrip)
	app.Put("/trips/:id", rest.UpdateTrip)
	app.Delete("/trips/:id", rest.DeleteTrip)
	app.Post("/trips/:id/cover", rest.UploadCover)
	app.Get("/trips/:id/itinerary", rest.GetItinerary)
	return rest
}

func (controller *Trip) CreateTrip(c *fiber.Ctx) error {
	var request domainTrip.CreateTripRequest
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	trip, err := controller.Service.Create(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Trip created",
		Results: trip,
	})
}

func (controller *Trip) ListTrips(c *fiber.Ctx) error {
	trips, err := controller.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	results := make([]TripSummaryResponse, 0, len(trips))
	for _, t := range trips {
		results = append(results, toTripSummary(t))
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Trips fetched",
		Results: results,
	})
}

func (controller *Trip) GetTrip(c *fiber.Ctx) error {
	trip, err := controller.Service.GetByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Trip fetched",
		Results: trip,
	})
}

func (controller *Trip) UpdateTrip(c *fiber.Ctx) error {
	var request domainTrip.UpdateTripRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
			Results: nil,
		})
	}
	request.ID = c.Params("id")

	trip, err := controller.Service.Update(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Trip updated",
		Results: trip,
	})
}

func (controller *Trip) DeleteTrip(c *fiber.Ctx) error {
	err := controller.Service.Delete(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Trip deleted",
		Results: nil,
	})
}

func (controller *Trip) UploadCover(c *fiber.Ctx) error {
	id := c.Params("id")

	fileHeader, err := c.FormFile("cover")
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "cover: file is required.",
			Results: nil,
		})
	}

	if fileHeader.Size > int64(config.TripMaxCoverSizeMB)*1024*1024 {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: fmt.Sprintf("cover: file exceeds the %d MB limit.", config.TripMaxCoverSizeMB),
			Results: nil,
		})
	}

	utils.PanicIfNeeded(utils.CreateFolder(config.PathCovers))

	// Guardamos el archivo subido con nombre temporal y generamos la
	// versión final redimensionada con nombre determinista por viaje.
	uploadPath := fmt.Sprintf("%s/upload-%s", config.PathCovers, fiberUtils.UUIDv4())
	err = fasthttp.SaveMultipartFile(fileHeader, uploadPath)
	utils.PanicIfNeeded(err)
	defer func() {
		_ = os.Remove(uploadPath)
	}()

	srcImage, err := imaging.Open(uploadPath)
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: "cover: unsupported image format.",
			Results: nil,
		})
	}

	resized := imaging.Resize(srcImage, 1280, 0, imaging.Lanczos)
	coverPath := fmt.Sprintf("%s/%s.jpg", config.PathCovers, id)
	err = imaging.Save(resized, coverPath)
	utils.PanicIfNeeded(err)

	trip, err := controller.Service.SetCoverImage(c.UserContext(), id, "/"+coverPath)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cover image updated",
		Results: trip,
	})
}

func (controller *Trip) GetItinerary(c *fiber.Ctx) error {
	trip, err := controller.Service.GetByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Itinerary fetched",
		Results: map[string]any{
			"trip_id": trip.ID,
			"status":  trip.Status,
			"days":    trip.Days,
		},
	})
}
