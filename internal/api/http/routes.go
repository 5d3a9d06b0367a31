package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/breeze-weather/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/view", func(c *fiber.Ctx) error {
		return c.JSON(service.View())
	})

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(service.State())
	})

	v1.Post("/place/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if _, err := service.Search(c.UserContext(), req.Name); err != nil {
			return toHTTPError(err)
		}
		return c.JSON(service.View())
	})

	v1.Post("/place/locate", func(c *fiber.Ctx) error {
		if _, err := service.Locate(c.UserContext()); err != nil {
			return toHTTPError(err)
		}
		return c.JSON(service.View())
	})

	v1.Put("/units", func(c *fiber.Ctx) error {
		var req unitsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := service.SetUnits(c.UserContext(), weather.UnitSystem(req.Units)); err != nil {
			return toHTTPError(err)
		}
		return c.JSON(service.View())
	})

	v1.Post("/units/toggle", func(c *fiber.Ctx) error {
		if _, err := service.ToggleUnits(c.UserContext()); err != nil {
			return toHTTPError(err)
		}
		return c.JSON(service.View())
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		if _, err := service.Refresh(c.UserContext()); err != nil {
			return toHTTPError(err)
		}
		return c.JSON(service.View())
	})
}

type searchRequest struct {
	Name string `json:"name" validate:"required"`
}

type unitsRequest struct {
	Units string `json:"units" validate:"required,oneof=metric imperial"`
}

// toHTTPError maps domain errors onto status codes. Messages pass through
// unchanged so clients can show them as-is.
func toHTTPError(err error) error {
	switch {
	case weather.IsNotFound(err):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case weather.IsLocationUnavailable(err):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case weather.IsNetwork(err):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, weather.ErrSuperseded), errors.Is(err, weather.ErrNoPlace):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
