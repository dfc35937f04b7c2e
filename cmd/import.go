package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jjenkins/onthisday/internal/service"
)

var importFile string
var importKeepApproval bool

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import community events exported from the browser",
	Long: `Import reads the JSON export of locally added events (the browser's
local_events_v1 storage key) and stores them for moderation.

Events whose id already exists are skipped. Invalid events are reported and
counted as failed. Imported events wait for approval unless --keep-approval
is given.

Examples:
  # Import an export file
  onthisday import --file local_events.json

  # Read the export from stdin and keep its approval flags
  cat local_events.json | onthisday import --keep-approval`,
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "f", "-", "Export file to import ('-' reads stdin)")
	importCmd.Flags().BoolVar(&importKeepApproval, "keep-approval", false, "Keep the approved flag from the export")
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("received interrupt signal, shutting down")
		cancel()
	}()

	var r io.Reader = cmd.InOrStdin()
	if importFile != "-" {
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("failed to open export: %w", err)
		}
		defer f.Close()
		r = f
	}

	deps, err := newComponents(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	importer := service.NewImporter(deps.events, deps.categorizer, logger)

	logger.Info("starting import", "file", importFile, "keep_approval", importKeepApproval)
	stats, err := importer.Import(ctx, r, importKeepApproval)
	if err != nil {
		if ctx.Err() != nil {
			logger.Warn("import cancelled")
			if stats != nil {
				importer.PrintSummary(cmd.OutOrStdout(), stats)
			}
		}
		return fmt.Errorf("import failed: %w", err)
	}
	importer.PrintSummary(cmd.OutOrStdout(), stats)

	if stats.Failed > 0 {
		return fmt.Errorf("%d events failed to import", stats.Failed)
	}
	return nil
}
