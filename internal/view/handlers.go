package view

import (
	"errors"

	"backend-mapty/internal/shared/geo"
	"backend-mapty/internal/workout"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Get("/view", func(c *fiber.Ctx) error {
		return c.JSON(svc.Snapshot())
	})

	r.Post("/view/resync", authMiddleware, func(c *fiber.Ctx) error {
		svc.Resync()
		return c.JSON(svc.Snapshot())
	})

	r.Post("/map/click", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Lat *float64 `json:"lat"`
			Lng *float64 `json:"lng"`
		}
		if err := c.BodyParser(&body); err != nil || body.Lat == nil || body.Lng == nil {
			return fiber.NewError(fiber.StatusBadRequest, "lat and lng required")
		}
		err := svc.Canvas.Click(geo.Coords{*body.Lat, *body.Lng})
		switch {
		case errors.Is(err, ErrMapNotReady):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case errors.Is(err, workout.ErrInvalidInput):
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		case err != nil:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Post("/map/fit", authMiddleware, func(c *fiber.Ctx) error {
		moved := svc.Sync.FitAll()
		return c.JSON(fiber.Map{"moved": moved, "view": svc.Canvas.Snapshot()})
	})
}
