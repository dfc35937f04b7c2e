package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jjenkins/onthisday/internal/service"
)

func StatsHandler(metrics *service.MetricsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := metrics.Calculate(c.UserContext())
		if err != nil {
			return errorResponse(c, err)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"stats":   stats,
		})
	}
}
