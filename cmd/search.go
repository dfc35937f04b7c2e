package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/jjenkins/onthisday/internal/model"
	"github.com/jjenkins/onthisday/internal/service"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Print the timeline for a date",
	Long: `Search merges API and community events for a date, applies the
filters and prints the result newest first.

Examples:
  onthisday search                              # Today
  onthisday search --month 7 --day 20           # July 20
  onthisday search -m 7 -d 20 --category Science
  onthisday search -m 7 -d 20 -q "moon landing" --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	now := time.Now()
	searchCmd.Flags().IntP("month", "m", int(now.Month()), "month (1-12, 0 for any)")
	searchCmd.Flags().IntP("day", "d", now.Day(), "day of month (1-31, 0 for any)")
	searchCmd.Flags().Int("year", 0, "only events from this year")
	searchCmd.Flags().StringP("category", "c", service.CategoryAll, "category filter")
	searchCmd.Flags().StringP("query", "q", "", "keyword filter")
	searchCmd.Flags().Int("zoom-min", 0, "lower year of the zoom window")
	searchCmd.Flags().Int("zoom-max", 0, "upper year of the zoom window")
	searchCmd.Flags().Bool("no-api", false, "exclude events from the on-this-day API")
	searchCmd.Flags().Bool("no-local", false, "exclude community events")
	searchCmd.Flags().Bool("json", false, "output as JSON")
}

func runSearch(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	spec := service.SearchSpec{}
	spec.Month, _ = flags.GetInt("month")
	spec.Day, _ = flags.GetInt("day")
	spec.Category, _ = flags.GetString("category")
	spec.Keywords, _ = flags.GetString("query")
	noAPI, _ := flags.GetBool("no-api")
	noLocal, _ := flags.GetBool("no-local")
	spec.IncludeAPI = !noAPI
	spec.IncludeLocal = !noLocal

	if flags.Changed("year") {
		year, _ := flags.GetInt("year")
		spec.Year = &year
	}
	if flags.Changed("zoom-min") && flags.Changed("zoom-max") {
		lo, _ := flags.GetInt("zoom-min")
		hi, _ := flags.GetInt("zoom-max")
		spec.Zoom = &model.YearBounds{MinYear: lo, MaxYear: hi}
	}

	ctx := cmd.Context()
	deps, err := newComponents(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()

	result := deps.engine.Search(ctx, spec)
	bounds := deps.engine.Bounds(ctx, spec.Month, spec.Day, spec.IncludeAPI, spec.IncludeLocal, time.Now().Year())

	if jsonOutput, _ := flags.GetBool("json"); jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			*service.SearchResult
			Bounds model.YearBounds `json:"bounds"`
		}{result, bounds})
	}

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}

	out := cmd.OutOrStdout()
	renderEvents(out, result.Events)
	fmt.Fprintf(out, "\n%d events, years %d to %d, api %s\n", len(result.Events), bounds.MinYear, bounds.MaxYear, result.APIStatus)
	return nil
}

func renderEvents(w io.Writer, events []model.CombinedEvent) {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)

	table.Header([]string{"YEAR", "TITLE", "CATEGORY", "SOURCE"})

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.YearDisplay,
			e.Title,
			strings.Join(e.Category, ", "),
			string(e.Source),
		})
	}
	_ = table.Bulk(rows)
	_ = table.Render()
}

func renderLocalEvents(w io.Writer, events []model.LocalEvent) {
	table := tablewriter.NewTable(w,
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
		}),
	)
	table.Header([]string{"ID", "DATE", "YEAR", "TITLE", "CATEGORY", "BY"})

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.ID,
			fmt.Sprintf("%02d/%02d", e.Month, e.Day),
			strconv.Itoa(e.Year),
			e.Title,
			e.Category,
			e.CreatedBy,
		})
	}
	_ = table.Bulk(rows)
	_ = table.Render()
}
