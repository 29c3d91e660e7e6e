package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/notabene-app/notabene/internal/cli"
	"github.com/spf13/cobra"
)

func feedbackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Inspect the correction log and learned patterns",
	}

	cmd.AddCommand(feedbackListCmd())
	cmd.AddCommand(feedbackPatternsCmd())

	return cmd
}

func feedbackListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent corrections, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			limit, _ := cmd.Flags().GetInt("limit")

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			records, err := store.ListFeedback(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list feedback: %w", err)
			}
			if len(records) == 0 {
				fmt.Println(cli.FormatInfo("No corrections recorded yet."))
				return nil
			}

			for _, r := range records {
				types := make([]string, len(r.CorrectionTypes))
				for i, t := range r.CorrectionTypes {
					types[i] = string(t)
				}
				fmt.Printf("%s %s  %s → %s  [%s]  by %s\n",
					cli.SubtleStyle.Render(r.CreatedAt.Format("2006-01-02 15:04")),
					truncate(r.Snapshot.Title, 32),
					r.Original.Type, r.Corrected.Type,
					strings.Join(types, ","),
					r.Author)
			}
			return nil
		},
	}

	cmd.Flags().Int("limit", 20, "Maximum corrections to show")
	return cmd
}

func feedbackPatternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Show a user's learned patterns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			user, _ := cmd.Flags().GetString("user")
			if user == "" {
				user = os.Getenv("USER")
			}
			if user == "" {
				return fmt.Errorf("a user is required (--user)")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			patterns, err := store.GetLearnedPatterns(ctx, user)
			if err != nil {
				return fmt.Errorf("failed to load learned patterns: %w", err)
			}
			if len(patterns) == 0 {
				fmt.Println(cli.FormatInfo(fmt.Sprintf("No learned patterns for %s yet.", user)))
				return nil
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("Learned patterns for %s", user)))
			for _, p := range patterns {
				fmt.Printf("  %.0f%%  %s → %s  (seen %dx, last %s)\n",
					p.Confidence*100, p.Pattern, p.Action,
					p.TimesApplied, p.LastApplied.Format("Jan 2"))
			}
			return nil
		},
	}

	cmd.Flags().String("user", "", "User whose patterns to show (default: $USER)")
	return cmd
}
