package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/notabene-app/notabene/internal/cli"
	"github.com/notabene-app/notabene/internal/engine"
	"github.com/notabene-app/notabene/internal/model"
	"github.com/notabene-app/notabene/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify pending meeting notes",
		Long: `Classify all pending meeting notes against the client directory and rules.

Notes with high-confidence verdicts are filed automatically. Medium
confidence goes to the review queue; everything else lands in the
uncategorized pile.

Dry runs also evaluate rules still in testing status, so a candidate
rule can be previewed against the live pipeline before activation.

Examples:
  notabene classify            # Classify all pending notes
  notabene classify --dry-run  # Preview verdicts without saving`,
		RunE: runClassify,
	}

	cmd.Flags().Bool("dry-run", false, "Preview verdicts without saving changes")
	_ = viper.BindPFlag("classification.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runClassify(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	dryRun := viper.GetBool("classification.dry_run")

	slog.Info("Starting note classification", "dry_run", dryRun)

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	eng, classifier, err := buildEngine(store)
	if err != nil {
		return err
	}
	if classifier != nil {
		defer func() { _ = classifier.Close() }()
	}

	notes, err := store.GetNotesByStatus(ctx, model.NotePending)
	if err != nil {
		return fmt.Errorf("failed to load pending notes: %w", err)
	}
	if len(notes) == 0 {
		fmt.Println(cli.FormatInfo("No pending notes to classify."))
		return nil
	}

	bar := progressbar.NewOptions(len(notes),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Classifying notes...[reset]"),
	)

	stats := service.CompletionStats{TotalNotes: len(notes)}
	start := time.Now()
	thresholds := eng.Thresholds()

	for _, note := range notes {
		select {
		case <-ctx.Done():
			slog.Warn("Classification interrupted")
			return nil
		default:
		}

		var outcome engine.Outcome
		if dryRun {
			outcome = eng.ClassifyDryRun(ctx, note.Meeting())
		} else {
			outcome = eng.Classify(ctx, note.Meeting())
		}
		status := thresholds.RouteFor(outcome.Result.Confidence)

		switch status {
		case model.NoteAutoFiled:
			stats.AutoFiled++
		case model.NoteInReview:
			stats.SentToReview++
		default:
			stats.Uncategorized++
		}

		if dryRun {
			fmt.Printf("%s %s → %s (%s, %.0f%%) folder=%s\n",
				cli.NoteIcon, note.Title, outcome.Result.Type,
				outcome.Result.Method, outcome.Result.Confidence*100,
				outcome.Decision.Suggested.FolderPath)
		} else if err := store.UpdateNoteClassification(ctx, note.ID, outcome.Result, status); err != nil {
			return fmt.Errorf("failed to save classification for note %s: %w", note.ID, err)
		}

		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
	if err := bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
	fmt.Fprintln(os.Stderr)

	stats.Duration = time.Since(start)
	summary := fmt.Sprintf("%s Statistics:\n", cli.ChartIcon) +
		fmt.Sprintf("  • Total notes: %d\n", stats.TotalNotes) +
		fmt.Sprintf("  • Auto-filed: %d\n", stats.AutoFiled) +
		fmt.Sprintf("  • Sent to review: %d\n", stats.SentToReview) +
		fmt.Sprintf("  • Uncategorized: %d\n", stats.Uncategorized) +
		fmt.Sprintf("  • Time taken: %s\n", stats.Duration.Round(time.Millisecond))
	fmt.Println(cli.RenderBox("Classification Complete", summary))

	if stats.SentToReview > 0 && !dryRun {
		fmt.Println(cli.FormatInfo("Review pending verdicts with: notabene review"))
	}

	return nil
}
