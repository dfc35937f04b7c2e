package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show moderation statistics for community events",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	deps, err := newComponents(cmd.Context())
	if err != nil {
		return err
	}
	defer deps.Close()

	stats, err := deps.metrics.Calculate(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== Community Events ===")
	fmt.Fprintf(out, "Total events:         %d\n", stats.TotalEvents)
	fmt.Fprintf(out, "Approved:             %d\n", stats.ApprovedEvents)
	fmt.Fprintf(out, "Pending:              %d\n", stats.PendingEvents)
	fmt.Fprintf(out, "Pending suggestions:  %d\n", stats.PendingSuggests)
	if stats.HasApprovedYears {
		fmt.Fprintf(out, "Year span:            %d to %d\n", stats.OldestYear, stats.NewestYear)
	}

	if len(stats.CategoryCounts) > 0 {
		names := make([]string, 0, len(stats.CategoryCounts))
		for name := range stats.CategoryCounts {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(out)
		fmt.Fprintln(out, "=== By Category ===")
		for _, name := range names {
			fmt.Fprintf(out, "%-20s  %d\n", name, stats.CategoryCounts[name])
		}
	}
	return nil
}
