package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jjenkins/onthisday/internal/service"
)

// Dependencies are the services the routes are bound to
type Dependencies struct {
	Latest      *service.LatestSearch
	Categorizer *service.Categorizer
	Moderation  *service.ModerationService
	Metrics     *service.MetricsService
	Registry    *prometheus.Registry
	Now         Clock
}

// Register mounts every route on app
func Register(app *fiber.App, d Dependencies) {
	now := d.Now
	if now == nil {
		now = defaultClock
	}

	app.Get("/", TimelineHandler(d.Latest, d.Categorizer, now))

	api := app.Group("/api")
	api.Get("/events", EventsAPIHandler(d.Latest, now))
	api.Get("/bounds", BoundsHandler(d.Latest.Engine(), now))
	api.Get("/categories", CategoriesHandler(d.Categorizer))

	// Moderation
	api.Post("/events", SubmitEventHandler(d.Moderation))
	api.Get("/events/pending", PendingEventsHandler(d.Moderation))
	api.Post("/events/:id/approve", ApproveEventHandler(d.Moderation))
	api.Delete("/events/:id", DenyEventHandler(d.Moderation))

	// Edit suggestions
	api.Post("/suggestions", SubmitSuggestionHandler(d.Moderation))
	api.Get("/suggestions", SuggestionsHandler(d.Moderation))
	api.Post("/suggestions/:id/approve", ApproveSuggestionHandler(d.Moderation))
	api.Post("/suggestions/:id/reject", RejectSuggestionHandler(d.Moderation))

	api.Get("/stats", StatsHandler(d.Metrics))

	if d.Registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}
}
