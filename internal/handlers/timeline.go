package handlers

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jjenkins/onthisday/internal/model"
	"github.com/jjenkins/onthisday/internal/service"
	"github.com/jjenkins/onthisday/internal/templates"
)

// Clock returns the current time; handlers default the date to today
type Clock func() time.Time

var defaultClock Clock = time.Now

func TimelineHandler(latest *service.LatestSearch, categorizer *service.Categorizer, now Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		spec := parseSearchSpec(c, now())

		result, err := latest.Search(ctx, "", spec)
		if err != nil {
			slog.Error("timeline search failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading events")
		}
		bounds := latest.Engine().Bounds(ctx, spec.Month, spec.Day, spec.IncludeAPI, spec.IncludeLocal, now().Year())

		page := templates.Timeline(templates.TimelinePage{
			Month:        spec.Month,
			Day:          spec.Day,
			Year:         c.Query("year"),
			Category:     spec.Category,
			Keywords:     spec.Keywords,
			IncludeAPI:   spec.IncludeAPI,
			IncludeLocal: spec.IncludeLocal,
			Categories:   categorizer.Names(),
			Events:       result.Events,
			Bounds:       bounds,
			APIStatus:    string(result.APIStatus),
			Warnings:     result.Warnings,
		})
		handler := adaptor.HTTPHandler(templ.Handler(page))

		return handler(c)
	}
}

// EventsAPIHandler serves GET /api/events. A "client" query key enables
// last-write-wins: an older search for the same key answers 409.
func EventsAPIHandler(latest *service.LatestSearch, now Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		spec := parseSearchSpec(c, now())

		result, err := latest.Search(ctx, c.Query("client"), spec)
		if errors.Is(err, service.ErrStaleSearch) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"success": false,
				"stale":   true,
				"error":   err.Error(),
			})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"success": false,
				"error":   "Error loading events",
			})
		}

		bounds := latest.Engine().Bounds(ctx, spec.Month, spec.Day, spec.IncludeAPI, spec.IncludeLocal, now().Year())

		return c.JSON(fiber.Map{
			"success":   true,
			"events":    result.Events,
			"apiStatus": result.APIStatus,
			"warnings":  result.Warnings,
			"bounds":    bounds,
		})
	}
}

// BoundsHandler serves the year range for a date, with an optional year
// clamped into it
func BoundsHandler(engine *service.SearchEngine, now Clock) fiber.Handler {
	return func(c *fiber.Ctx) error {
		spec := parseSearchSpec(c, now())
		bounds := engine.Bounds(c.UserContext(), spec.Month, spec.Day, spec.IncludeAPI, spec.IncludeLocal, now().Year())

		response := fiber.Map{
			"success": true,
			"bounds":  bounds,
			"midYear": service.MidYear(bounds),
		}
		if spec.Year != nil {
			response["year"] = service.ClampYear(*spec.Year, bounds)
		}
		return c.JSON(response)
	}
}

func CategoriesHandler(categorizer *service.Categorizer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"success":    true,
			"categories": categorizer.Names(),
		})
	}
}

// parseSearchSpec reads the filter from the query string. Missing month and
// day default to today; an explicit 0 means any. Unparseable numbers are
// treated as absent.
func parseSearchSpec(c *fiber.Ctx, today time.Time) service.SearchSpec {
	spec := service.SearchSpec{
		Month:        int(today.Month()),
		Day:          today.Day(),
		Category:     c.Query("category", service.CategoryAll),
		Keywords:     c.Query("q"),
		IncludeAPI:   c.QueryBool("api", true),
		IncludeLocal: c.QueryBool("local", true),
	}

	if v, ok := queryInt(c, "month"); ok {
		spec.Month = v
	}
	if v, ok := queryInt(c, "day"); ok {
		spec.Day = v
	}
	if v, ok := queryInt(c, "year"); ok {
		spec.Year = &v
	}

	zoomMin, okMin := queryInt(c, "zoom_min")
	zoomMax, okMax := queryInt(c, "zoom_max")
	if okMin && okMax {
		spec.Zoom = &model.YearBounds{MinYear: zoomMin, MaxYear: zoomMax}
	}

	return spec
}

func queryInt(c *fiber.Ctx, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
