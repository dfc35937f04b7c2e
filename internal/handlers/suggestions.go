package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/onthisday/internal/model"
	"github.com/jjenkins/onthisday/internal/service"
)

type reviewRequest struct {
	AdminNotes string `json:"admin_notes"`
}

func SubmitSuggestionHandler(moderation *service.ModerationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SubmitSuggestionInput
		if err := c.BodyParser(&in); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid request body",
			})
		}

		suggestion, err := moderation.Suggest(c.UserContext(), in)
		if err != nil {
			return errorResponse(c, err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":    true,
			"suggestion": suggestion,
		})
	}
}

// SuggestionsHandler lists suggestions, filtered by ?status= when given
func SuggestionsHandler(moderation *service.ModerationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := model.SuggestionStatus(c.Query("status"))

		suggestions, err := moderation.Suggestions(c.UserContext(), status)
		if err != nil {
			return errorResponse(c, err)
		}
		if suggestions == nil {
			suggestions = []model.Suggestion{}
		}

		return c.JSON(fiber.Map{
			"success":     true,
			"suggestions": suggestions,
		})
	}
}

func ApproveSuggestionHandler(moderation *service.ModerationService) fiber.Handler {
	return reviewSuggestionHandler(moderation, true)
}

func RejectSuggestionHandler(moderation *service.ModerationService) fiber.Handler {
	return reviewSuggestionHandler(moderation, false)
}

func reviewSuggestionHandler(moderation *service.ModerationService, approve bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req reviewRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"error":   "Invalid request body",
				})
			}
		}

		suggestion, err := moderation.ReviewSuggestion(c.UserContext(), c.Params("id"), approve, req.AdminNotes)
		if err != nil {
			return errorResponse(c, err)
		}

		return c.JSON(fiber.Map{
			"success":    true,
			"suggestion": suggestion,
		})
	}
}
