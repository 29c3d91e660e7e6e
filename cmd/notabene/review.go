package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/notabene-app/notabene/internal/cli"
	"github.com/notabene-app/notabene/internal/engine"
	"github.com/notabene-app/notabene/internal/feedback"
	"github.com/notabene-app/notabene/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review classified notes awaiting confirmation",
		Long: `Walk through notes in the review queue, accepting or correcting each
verdict. Corrections feed the learning loop: recurring ones produce
rule suggestions, and per-user patterns accumulate confidence.

Uncategorized notes can be pulled into the same session with --all.`,
		RunE: runReview,
	}

	cmd.Flags().Bool("all", false, "Include uncategorized notes in the session")
	cmd.Flags().String("author", "", "Reviewer name recorded with corrections (default: $USER)")
	_ = viper.BindPFlag("review.all", cmd.Flags().Lookup("all"))
	_ = viper.BindPFlag("review.author", cmd.Flags().Lookup("author"))

	return cmd
}

func runReview(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	author := viper.GetString("review.author")
	if author == "" {
		author = os.Getenv("USER")
	}
	if author == "" {
		author = "reviewer"
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	notes, err := store.GetNotesByStatus(ctx, model.NoteInReview)
	if err != nil {
		return fmt.Errorf("failed to load review queue: %w", err)
	}
	if viper.GetBool("review.all") {
		uncategorized, listErr := store.GetNotesByStatus(ctx, model.NoteUncategorized)
		if listErr != nil {
			return fmt.Errorf("failed to load uncategorized notes: %w", listErr)
		}
		notes = append(notes, uncategorized...)
	}
	if len(notes) == 0 {
		fmt.Println(cli.FormatInfo("Review queue is empty. Nice."))
		return nil
	}

	clients, err := store.ListActiveClients(ctx)
	if err != nil {
		return fmt.Errorf("failed to load clients: %w", err)
	}
	projects, err := store.ListActiveProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to load projects: %w", err)
	}

	recorder := feedback.NewRecorder(store, viper.GetString("classification.internal_domain"))
	prompter := cli.NewPrompter(os.Stdin, os.Stdout)
	prompter.SetTotal(len(notes))

	interrupts := cli.NewInterruptHandler(os.Stdout)
	ctx = interrupts.HandleInterrupts(ctx, true)

	for _, note := range notes {
		var suggested model.SuggestedActions
		if note.Result != nil {
			suggested = engine.DefaultActions(*note.Result)
		}

		decision, err := prompter.ReviewNote(ctx, note, suggested, clients, projects)
		if err != nil {
			if errors.Is(err, cli.ErrInputCancelled) || interrupts.WasInterrupted() {
				break
			}
			return fmt.Errorf("review failed: %w", err)
		}

		switch {
		case decision.Accepted:
			if err := confirmNote(ctx, store, note); err != nil {
				return err
			}
		case decision.Skipped:
			continue
		default:
			var original model.ClassificationResult
			if note.Result != nil {
				original = *note.Result
			}

			result, recErr := recorder.Record(ctx, note.ID, original, decision.Corrected, note.Snapshot(), author)
			if recErr != nil {
				return fmt.Errorf("failed to record correction: %w", recErr)
			}

			if err := store.UpdateNoteClassification(ctx, note.ID, decision.Corrected, model.NoteConfirmed); err != nil {
				return fmt.Errorf("failed to file corrected note %s: %w", note.ID, err)
			}

			if result.SuggestedRule != nil {
				showRuleSuggestion(result.SuggestedRule)
			}
		}
	}

	prompter.ShowCompletion()
	return nil
}

// noteConfirmer is the slice of storage the accept path needs.
type noteConfirmer interface {
	UpdateNoteClassification(ctx context.Context, noteID string, result model.ClassificationResult, status model.NoteStatus) error
	RecordRuleApplied(ctx context.Context, ruleID int64) error
}

// confirmNote files an accepted verdict and credits the matched rule.
// Rule statistics are advisory; only the filing write can fail the
// review session.
func confirmNote(ctx context.Context, store noteConfirmer, note model.Note) error {
	if note.Result == nil {
		return nil
	}
	if err := store.UpdateNoteClassification(ctx, note.ID, *note.Result, model.NoteConfirmed); err != nil {
		return fmt.Errorf("failed to confirm note %s: %w", note.ID, err)
	}
	if note.Result.MatchedRuleID != nil {
		if err := store.RecordRuleApplied(ctx, *note.Result.MatchedRuleID); err != nil {
			slog.Warn("Failed to record rule application",
				"rule_id", *note.Result.MatchedRuleID,
				"error", err)
		}
	}
	return nil
}

func showRuleSuggestion(rule *model.Rule) {
	content := fmt.Sprintf("You keep filing these meetings the same way.\n\n"+
		"Suggested rule: %s\n"+
		"  Priority: %d (status: %s)\n"+
		"  %s\n\n"+
		"Refine its conditions and create it with: notabene rules add --file <rule.json>",
		rule.Name, rule.Priority, rule.Status, rule.Description)
	fmt.Println(cli.RenderBox("Rule Suggestion", content))
}
