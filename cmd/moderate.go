package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jjenkins/onthisday/internal/model"
)

var moderateCmd = &cobra.Command{
	Use:   "moderate",
	Short: "Review community submissions",
	Long: `Moderate lists, approves and denies submitted events and their edit
suggestions.

Examples:
  onthisday moderate pending
  onthisday moderate approve 3f1c...
  onthisday moderate deny 3f1c...
  onthisday moderate suggestions --status pending
  onthisday moderate review 9ab2... --approve --notes "checked source"`,
}

var moderatePendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List events awaiting approval",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		events, err := deps.moderation.Pending(cmd.Context())
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No events awaiting approval")
			return nil
		}
		renderLocalEvents(cmd.OutOrStdout(), events)
		return nil
	},
}

var moderateApproveCmd = &cobra.Command{
	Use:   "approve <event-id>...",
	Short: "Approve submitted events",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		for _, id := range args {
			if err := deps.moderation.Approve(cmd.Context(), id); err != nil {
				return fmt.Errorf("approving %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "approved %s\n", id)
		}
		return nil
	},
}

var moderateDenyCmd = &cobra.Command{
	Use:   "deny <event-id>...",
	Short: "Deny and remove submitted events",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := newComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		for _, id := range args {
			if err := deps.moderation.Deny(cmd.Context(), id); err != nil {
				return fmt.Errorf("denying %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "denied %s\n", id)
		}
		return nil
	},
}

var moderateSuggestionsCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "List edit suggestions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		deps, err := newComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		suggestions, err := deps.moderation.Suggestions(cmd.Context(), model.SuggestionStatus(status))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(suggestions) == 0 {
			fmt.Fprintln(out, "No suggestions")
			return nil
		}
		for _, sg := range suggestions {
			fmt.Fprintf(out, "%s  event=%s  status=%s  by=%s\n", sg.ID, sg.EventID, sg.Status, sg.UserID)
			fmt.Fprintf(out, "    reason: %s\n", sg.Reason)
		}
		return nil
	},
}

var moderateReviewCmd = &cobra.Command{
	Use:   "review <suggestion-id>",
	Short: "Approve or reject an edit suggestion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		approve, _ := cmd.Flags().GetBool("approve")
		notes, _ := cmd.Flags().GetString("notes")

		deps, err := newComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer deps.Close()

		sg, err := deps.moderation.ReviewSuggestion(cmd.Context(), args[0], approve, notes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "suggestion %s %s\n", sg.ID, sg.Status)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(moderateCmd)
	moderateCmd.AddCommand(moderatePendingCmd, moderateApproveCmd, moderateDenyCmd, moderateSuggestionsCmd, moderateReviewCmd)

	moderateSuggestionsCmd.Flags().String("status", "pending", "pending, approved, rejected or empty for all")
	moderateReviewCmd.Flags().Bool("approve", false, "approve the suggestion (default rejects)")
	moderateReviewCmd.Flags().String("notes", "", "admin notes")
}
