package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/forecast-aggregation/internal/forecast"
	"github.com/i474232898/forecast-aggregation/internal/views"
)

var validate = validator.New()

// Panels are the presentation models served by the API.
type Panels struct {
	Current *views.CurrentPanel
	Daily   *views.DailyPanel
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *forecast.Service, panels Panels) {
	v1 := app.Group("/api/v1/forecast")

	v1.Get("/current", func(c *fiber.Ctx) error {
		return c.JSON(panels.Current.State())
	})

	v1.Get("/daily", func(c *fiber.Ctx) error {
		return c.JSON(panels.Daily.State())
	})

	v1.Get("/hourly", func(c *fiber.Ctx) error {
		var q hourlyQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{
			"location": service.Location(),
			"entries":  nonNil(service.Hourly(q.Hours...)),
		})
	})

	v1.Get("/days", func(c *fiber.Ctx) error {
		var q daysQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(fiber.Map{
			"location": service.Location(),
			"entries":  nonNil(service.Daily(q.Days)),
		})
	})

	v1.Get("/series", func(c *fiber.Ctx) error {
		series := service.Series()
		if series.Records == nil {
			series.Records = []forecast.Record{}
		}
		return c.JSON(series)
	})

	v1.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"location": service.Location(),
			"state":    service.State().String(),
			"hasData":  service.HasData(),
		})
	})

	v1.Post("/load", func(c *fiber.Ctx) error {
		var req loadRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
			}
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if !service.Load(c.UserContext(), req.Location) {
			return fiber.NewError(fiber.StatusBadGateway, "failed to load forecast")
		}

		series := service.Series()
		return c.JSON(fiber.Map{
			"location": series.Location,
			"records":  len(series.Records),
			"loadedAt": series.LoadedAt,
		})
	})

	v1.Delete("/", func(c *fiber.Ctx) error {
		service.ClearData()
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// loadRequest is the body of POST /load. An empty location reloads the
// current one.
type loadRequest struct {
	Location string `json:"location" validate:"max=100"`
}

// hourlyQuery holds query parameters for the hourly endpoint.
type hourlyQuery struct {
	Hours []int `validate:"max=24,dive,min=0,max=23"`
}

func (q *hourlyQuery) bind(c *fiber.Ctx) error {
	raw := strings.TrimSpace(c.Query("hours"))
	if raw == "" {
		return nil
	}
	for _, part := range strings.Split(raw, ",") {
		h, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return errors.New("hours must be a comma-separated list of integers")
		}
		q.Hours = append(q.Hours, h)
	}
	return nil
}

// daysQuery holds query parameters for the days endpoint.
type daysQuery struct {
	Days int `validate:"required,min=1,max=7"`
}

func (q *daysQuery) bind(c *fiber.Ctx) error {
	raw := c.Query("days")
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return errors.New("days must be an integer")
	}
	q.Days = n
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
