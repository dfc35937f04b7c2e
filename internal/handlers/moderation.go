package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/onthisday/internal/model"
	"github.com/jjenkins/onthisday/internal/service"
	"github.com/jjenkins/onthisday/internal/store"
)

func SubmitEventHandler(moderation *service.ModerationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SubmitEventInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid request body",
			})
		}

		event, err := moderation.Submit(c.UserContext(), in)
		if err != nil {
			return errorResponse(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"event":   event,
		})
	}
}

func PendingEventsHandler(moderation *service.ModerationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		events, err := moderation.Pending(c.UserContext())
		if err != nil {
			return errorResponse(c, err)
		}
		if events == nil {
			events = []model.LocalEvent{}
		}

		return c.JSON(fiber.Map{
			"success": true,
			"events":  events,
		})
	}
}

func ApproveEventHandler(moderation *service.ModerationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := moderation.Approve(c.UserContext(), c.Params("id")); err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

func DenyEventHandler(moderation *service.ModerationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := moderation.Deny(c.UserContext(), c.Params("id")); err != nil {
			return errorResponse(c, err)
		}
		return c.JSON(fiber.Map{"success": true})
	}
}

// errorResponse maps service and store errors onto HTTP statuses
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, service.ErrInvalidEvent), errors.Is(err, service.ErrInvalidSuggestion):
		status = fiber.StatusBadRequest
		message = err.Error()
	case errors.Is(err, store.ErrNotFound):
		status = fiber.StatusNotFound
		message = "Not found"
	case errors.Is(err, store.ErrAlreadyReviewed):
		status = fiber.StatusConflict
		message = err.Error()
	default:
		slog.Error("request failed", "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}
