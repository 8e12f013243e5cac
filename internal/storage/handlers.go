package storage

import (
	"context"
	"fmt"

	"backend-mapty/internal/workout"

	"github.com/gofiber/fiber/v2"
)

// Reloader rebuilds the live collection from the slot after an import.
type Reloader func(ctx context.Context) error

// RegisterRoutes exposes the raw slot value for backup and restore.
func RegisterRoutes(r fiber.Router, slot Slot, reload Reloader, authMiddleware fiber.Handler) {
	r.Get("/export", authMiddleware, func(c *fiber.Ctx) error {
		data, ok, err := slot.Get(c.Context())
		if err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		if !ok {
			data = []byte("[]")
		}
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="workouts.json"`)
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(data)
	})

	r.Put("/import", authMiddleware, func(c *fiber.Ctx) error {
		body := c.Body()
		records, err := workout.DecodeRecords(body)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "body must be a JSON array of workouts")
		}
		if err := validateRecords(records); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := slot.Set(c.Context(), body); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		}
		if reload != nil {
			if err := reload(c.Context()); err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		return c.JSON(fiber.Map{"imported": len(records)})
	})
}

// validateRecords rejects the whole import when any record would be skipped
// on load.
func validateRecords(records []workout.Record) error {
	seen := make(map[string]struct{}, len(records))
	for i, rec := range records {
		if _, err := workout.Reconstruct(rec); err != nil {
			return fmt.Errorf("workout %d: %w", i, err)
		}
		if _, dup := seen[rec.ID]; dup {
			return fmt.Errorf("workout %d: duplicate id %s", i, rec.ID)
		}
		seen[rec.ID] = struct{}{}
	}
	return nil
}
