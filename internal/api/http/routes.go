package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-notify/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-notify",
		})
	})

	v1 := app.Group("/api/v1")

	// Preview the message a run would send, without sending it.
	v1.Get("/report", func(c *fiber.Ctx) error {
		q, err := parseModeQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx := weather.WithRunID(c.UserContext())
		msg, err := service.Report(ctx, weather.SelectionForMode(q.mode()))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to build weather report")
		}

		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(msg)
	})

	v1.Post("/push", func(c *fiber.Ctx) error {
		q, err := parseModeQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ctx := weather.WithRunID(c.UserContext())
		msg, delivered, err := service.Run(ctx, weather.SelectionForMode(q.mode()))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to push weather report")
		}

		status := fiber.StatusOK
		if !delivered {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{
			"runId":     weather.RunID(ctx),
			"delivered": delivered,
			"message":   msg,
		})
	})

	v1.Post("/check-rain", func(c *fiber.Ctx) error {
		ctx := weather.WithRunID(c.UserContext())
		sent, err := service.CheckRain(ctx)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"runId": weather.RunID(ctx),
			"sent":  sent,
		})
	})
}

// modeQuery holds the optional single-section selector.
type modeQuery struct {
	Mode string `validate:"omitempty,oneof=now rain forecast life"`
}

func (q modeQuery) mode() weather.Mode {
	return weather.Mode(q.Mode)
}

func parseModeQuery(c *fiber.Ctx) (modeQuery, error) {
	q := modeQuery{Mode: c.Query("mode")}
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}
