package form

import (
	"errors"

	"backend-mapty/internal/workout"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the form and workout routes. Reads are public,
// mutations go through authMiddleware.
func RegisterRoutes(r fiber.Router, ctrl *Controller, store *workout.Store, authMiddleware fiber.Handler) {
	r.Get("/form", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.Snapshot())
	})

	r.Post("/form/kind", authMiddleware, func(c *fiber.Ctx) error {
		var body struct {
			Type string `json:"type"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		kind, err := workout.ParseKind(body.Type)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ctrl.SelectKind(kind)
		return c.JSON(ctrl.Snapshot())
	})

	r.Post("/form/cancel", authMiddleware, func(c *fiber.Ctx) error {
		ctrl.Cancel()
		return c.JSON(ctrl.Snapshot())
	})

	r.Get("/workouts", func(c *fiber.Ctx) error {
		field, err := workout.ParseSortField(c.Query("sort"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(workout.Sorted(store.All(), field))
	})

	r.Get("/workouts/:id", func(c *fiber.Ctx) error {
		w, err := store.Get(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, "workout not found")
		}
		return c.JSON(w)
	})

	r.Post("/workouts", authMiddleware, func(c *fiber.Ctx) error {
		var in Input
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		w, err := ctrl.Submit(c.Context(), in)
		if err != nil && w == nil {
			return mutationError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(result(w, err))
	})

	r.Post("/workouts/:id/edit", authMiddleware, func(c *fiber.Ctx) error {
		if err := ctrl.OpenEdit(c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(ctrl.Snapshot())
	})

	r.Post("/workouts/:id/close", authMiddleware, func(c *fiber.Ctx) error {
		ctrl.CloseEdit(c.Params("id"))
		return c.JSON(ctrl.Snapshot())
	})

	r.Put("/workouts/:id", authMiddleware, func(c *fiber.Ctx) error {
		var in Input
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid payload")
		}
		w, err := ctrl.SubmitEdit(c.Context(), c.Params("id"), in)
		if err != nil && w == nil {
			return mutationError(err)
		}
		if w == nil {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(result(w, err))
	})

	r.Post("/workouts/:id/select", authMiddleware, func(c *fiber.Ctx) error {
		w, err := ctrl.Select(c.Context(), c.Params("id"))
		if err != nil && w == nil {
			return mutationError(err)
		}
		if w == nil {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(result(w, err))
	})

	r.Delete("/workouts/:id", authMiddleware, func(c *fiber.Ctx) error {
		removed, err := ctrl.Delete(c.Context(), c.Params("id"))
		if err != nil && !errors.Is(err, workout.ErrPersistenceUnavailable) {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if err != nil {
			return c.JSON(fiber.Map{"removed": removed, "warning": err.Error()})
		}
		return c.JSON(fiber.Map{"removed": removed})
	})

	r.Delete("/workouts", authMiddleware, func(c *fiber.Ctx) error {
		if err := ctrl.Reset(c.Context()); err != nil {
			if errors.Is(err, workout.ErrPersistenceUnavailable) {
				return c.JSON(fiber.Map{"warning": err.Error()})
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func result(w workout.Workout, err error) fiber.Map {
	body := fiber.Map{"workout": w}
	if err != nil {
		body["warning"] = err.Error()
	}
	return body
}

func mutationError(err error) error {
	switch {
	case errors.Is(err, workout.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNoPendingForm):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}
