package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/cobra"

	"github.com/jjenkins/onthisday/internal/handlers"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the On This Day web server",
	Long: `Start the web server that serves the timeline page, the JSON search
API, the moderation endpoints and prometheus metrics.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to run the server on")
	_ = v.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := newComponents(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	app := fiber.New(fiber.Config{
		AppName: "On This Day",
	})

	app.Use(fiberlogger.New())

	handlers.Register(app, handlers.Dependencies{
		Latest:      deps.latest,
		Categorizer: deps.categorizer,
		Moderation:  deps.moderation,
		Metrics:     deps.metrics,
		Registry:    deps.registry,
	})

	go func() {
		<-ctx.Done()
		logger.Info("shutting down server")
		_ = app.Shutdown()
	}()

	logger.Info("starting server", "port", cfg.Server.Port, "store", cfg.Store.Driver)
	return app.Listen(":" + cfg.Server.Port)
}
