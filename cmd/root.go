// Package cmd contains the onthisday CLI commands
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jjenkins/onthisday/internal/config"
	"github.com/jjenkins/onthisday/internal/service"
	"github.com/jjenkins/onthisday/internal/store"
)

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *slog.Logger
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "onthisday",
	Short: "Historical events timeline for any day of the year",
	Long: `onthisday merges events from the public "on this day" API with
community-submitted events and serves them as a searchable timeline.

Example usage:
  onthisday serve                        # Start the web server
  onthisday search --month 7 --day 20    # Print the timeline for July 20
  onthisday import --file export.json    # Import a browser export
  onthisday moderate pending             # List events awaiting review`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./onthisday.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("store", "", "local event store: postgres or memory")

	_ = v.BindPFlag("store.driver", rootCmd.PersistentFlags().Lookup("store"))
}

func initConfig() error {
	var err error

	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Debug("configuration loaded",
		"store", cfg.Store.Driver,
		"api", cfg.API.BaseURL,
		"sample_fallback", cfg.API.SampleFallback,
	)
	return nil
}

// components is the service graph shared by the commands
type components struct {
	events      service.EventStore
	suggestions service.SuggestionStore
	categorizer *service.Categorizer
	normalizer  *service.Normalizer
	engine      *service.SearchEngine
	latest      *service.LatestSearch
	moderation  *service.ModerationService
	metrics     *service.MetricsService
	registry    *prometheus.Registry
	db          *sql.DB
}

func (c *components) Close() {
	if c.db != nil {
		c.db.Close()
	}
}

func newComponents(ctx context.Context) (*components, error) {
	c := &components{registry: prometheus.NewRegistry()}
	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	categorizer := service.DefaultCategorizer
	if cfg.Categories.File != "" {
		loaded, err := service.LoadCategorizer(cfg.Categories.File)
		if err != nil {
			return nil, err
		}
		categorizer = loaded
	}
	c.categorizer = categorizer

	switch cfg.Store.Driver {
	case config.DriverMemory:
		events := store.NewMemoryEventStore()
		c.events = events
		c.suggestions = store.NewMemorySuggestionStore(events)
	default:
		logger.Debug("connecting to database")
		db, err := store.NewDB(cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := store.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		c.db = db
		c.events = store.NewEventStore(db)
		c.suggestions = store.NewSuggestionStore(db)
	}

	instruments := service.NewInstruments(c.registry)
	client := service.NewOnThisDayClient(service.ClientConfig{
		BaseURL:       cfg.API.BaseURL,
		Timeout:       cfg.API.Timeout,
		MaxRetries:    cfg.API.MaxRetries,
		Backoff:       cfg.API.Backoff,
		RatePerSecond: cfg.API.RatePerSecond,
		Burst:         cfg.API.Burst,
		CacheTTL:      cfg.API.CacheTTL,
		CacheSize:     cfg.API.CacheSize,
	}, instruments, logger)

	var fetcher service.APIFetcher = client
	if cfg.API.SampleFallback {
		fetcher = service.SampleFallback{Fetcher: client, Logger: logger}
	}

	c.normalizer = service.NewNormalizer(categorizer, service.IDScheme(cfg.API.IDScheme))
	c.engine = service.NewSearchEngine(fetcher, c.events, c.normalizer, instruments, logger)
	c.latest = service.NewLatestSearch(c.engine)
	c.moderation = service.NewModerationService(c.events, c.suggestions, categorizer, logger)
	c.metrics = service.NewMetricsService(c.events, c.suggestions, c.normalizer, logger)

	return c, nil
}
