package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/notabene-app/notabene/internal/model"
	"github.com/schollz/progressbar/v3"
)

// ReviewDecision is the outcome of reviewing one note. Exactly one of
// Accepted, Corrected (non-zero), or Skipped applies.
type ReviewDecision struct {
	Corrected model.ClassificationResult
	Accepted  bool
	Skipped   bool
}

// ReviewStats summarizes a review session.
type ReviewStats struct {
	Duration  time.Duration
	Total     int
	Accepted  int
	Corrected int
	Skipped   int
}

// Prompter implements the interactive review queue for classified notes.
type Prompter struct {
	startTime   time.Time
	writer      io.Writer
	reader      *NonBlockingReader
	progressBar *progressbar.ProgressBar
	stats       ReviewStats
	total       int
	statsMutex  sync.RWMutex
}

// NewPrompter creates a review prompter with the given reader and writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader:    NewNonBlockingReader(reader),
		writer:    writer,
		startTime: time.Now(),
	}
}

// SetTotal sets the number of notes queued for review and initializes
// the progress bar.
func (p *Prompter) SetTotal(total int) {
	p.total = total
	p.progressBar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Reviewing notes...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(p.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// ReviewNote shows one note's verdict and prompts the user to accept,
// correct, or skip it. The directory snapshot is used to offer valid
// correction targets.
func (p *Prompter) ReviewNote(ctx context.Context, note model.Note, suggested model.SuggestedActions, clients []model.Client, projects []model.Project) (ReviewDecision, error) {
	select {
	case <-ctx.Done():
		return ReviewDecision{}, ctx.Err()
	default:
	}

	p.updateProgress()

	content := p.formatNote(note, suggested)
	if _, err := fmt.Fprintln(p.writer, RenderBox("Note Review", content)); err != nil {
		return ReviewDecision{}, fmt.Errorf("failed to write review box: %w", err)
	}

	options := []string{
		"  [A] Accept verdict",
		"  [C] File under a client",
		"  [I] File as internal",
		"  [T] File as another type",
		"  [S] Skip for now",
	}
	for _, opt := range options {
		if _, err := fmt.Fprintln(p.writer, opt); err != nil {
			return ReviewDecision{}, fmt.Errorf("failed to write option: %w", err)
		}
	}
	if _, err := fmt.Fprintln(p.writer); err != nil {
		return ReviewDecision{}, fmt.Errorf("failed to write newline: %w", err)
	}

	choice, err := p.promptChoice(ctx, "Choice [A/C/I/T/S]", []string{"a", "c", "i", "t", "s"})
	if err != nil {
		return ReviewDecision{}, err
	}

	switch choice {
	case "a":
		p.incrementStats(func(s *ReviewStats) { s.Accepted++ })
		return ReviewDecision{Accepted: true}, nil
	case "c":
		corrected, err := p.promptClientTarget(ctx, note, clients, projects)
		if err != nil {
			return ReviewDecision{}, err
		}
		p.incrementStats(func(s *ReviewStats) { s.Corrected++ })
		return ReviewDecision{Corrected: corrected}, nil
	case "i":
		corrected, err := p.promptInternalTarget(ctx, note)
		if err != nil {
			return ReviewDecision{}, err
		}
		p.incrementStats(func(s *ReviewStats) { s.Corrected++ })
		return ReviewDecision{Corrected: corrected}, nil
	case "t":
		corrected, err := p.promptTypeChange(ctx, note)
		if err != nil {
			return ReviewDecision{}, err
		}
		p.incrementStats(func(s *ReviewStats) { s.Corrected++ })
		return ReviewDecision{Corrected: corrected}, nil
	default:
		p.incrementStats(func(s *ReviewStats) { s.Skipped++ })
		return ReviewDecision{Skipped: true}, nil
	}
}

// Stats returns the session's review statistics.
func (p *Prompter) Stats() ReviewStats {
	p.statsMutex.RLock()
	defer p.statsMutex.RUnlock()

	stats := p.stats
	stats.Duration = time.Since(p.startTime)
	return stats
}

// ShowCompletion displays the session summary.
func (p *Prompter) ShowCompletion() {
	if p.progressBar != nil {
		if err := p.progressBar.Finish(); err != nil {
			slog.Warn("Failed to finish progress bar", "error", err)
		}
		if _, err := fmt.Fprintln(p.writer); err != nil {
			slog.Warn("Failed to write newline", "error", err)
		}
	}

	stats := p.Stats()
	summary := fmt.Sprintf("%s Review Complete!\n\n", NoteIcon) +
		fmt.Sprintf("%s Statistics:\n", ChartIcon) +
		fmt.Sprintf("  • Notes reviewed: %d\n", stats.Total) +
		fmt.Sprintf("  • Accepted: %d\n", stats.Accepted) +
		fmt.Sprintf("  • Corrected: %d\n", stats.Corrected) +
		fmt.Sprintf("  • Skipped: %d\n", stats.Skipped) +
		fmt.Sprintf("  • Time taken: %s\n", stats.Duration.Round(time.Second))

	if _, err := fmt.Fprintln(p.writer, RenderBox("Review Complete", summary)); err != nil {
		slog.Warn("Failed to write completion box", "error", err)
	}
}

func (p *Prompter) updateProgress() {
	p.incrementStats(func(s *ReviewStats) { s.Total++ })
	if p.progressBar != nil {
		if err := p.progressBar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
}

func (p *Prompter) formatNote(note model.Note, suggested model.SuggestedActions) string {
	header := TitleStyle.Render(fmt.Sprintf("Note: %s", note.Title))

	details := fmt.Sprintf("%s Details:\n", InfoIcon) +
		fmt.Sprintf("  Created: %s\n", note.CreatedAt.Format("Jan 2, 2006 15:04")) +
		fmt.Sprintf("  Organizer: %s\n", emptyDash(note.Organizer)) +
		fmt.Sprintf("  Attendees: %d\n", len(note.Attendees))

	verdict := "\n" + FormatWarning("No classification recorded")
	if note.Result != nil {
		r := note.Result
		target := string(r.Type)
		if r.ClientName != "" {
			target = r.ClientName
			if r.ProjectName != "" {
				target += " / " + r.ProjectName
			}
		} else if r.InternalTeam != "" {
			target = "internal / " + r.InternalTeam
		}
		verdict = fmt.Sprintf("\n%s Verdict: %s via %s (%.0f%% confidence)",
			RobotIcon,
			SuccessStyle.Render(target),
			r.Method,
			r.Confidence*100)
		if r.AIReasoning != "" {
			verdict += fmt.Sprintf("\n  %s %s", InfoIcon, SubtleStyle.Render(r.AIReasoning))
		}
	}

	if suggested.FolderPath != "" {
		verdict += fmt.Sprintf("\n%s Folder: %s", FolderIcon, suggested.FolderPath)
	}
	if len(suggested.ShareWith) > 0 {
		verdict += fmt.Sprintf("\n  Share with: %s", strings.Join(suggested.ShareWith, ", "))
	}

	return header + "\n\n" + details + verdict
}

func (p *Prompter) promptClientTarget(ctx context.Context, note model.Note, clients []model.Client, projects []model.Project) (model.ClassificationResult, error) {
	if len(clients) == 0 {
		return model.ClassificationResult{}, fmt.Errorf("no active clients to choose from")
	}

	if _, err := fmt.Fprintln(p.writer, FormatInfo("Active clients:")); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to write client list header: %w", err)
	}
	for i, c := range clients {
		if _, err := fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, c.Name); err != nil {
			slog.Warn("Failed to write client entry", "error", err)
		}
	}

	client, err := p.pickIndexed(ctx, "Client number", len(clients))
	if err != nil {
		return model.ClassificationResult{}, err
	}
	chosen := clients[client]

	corrected := correctedBase(note)
	corrected.Type = model.TypeClient
	corrected.ClientID = &chosen.ID
	corrected.ClientName = chosen.Name

	var clientProjects []model.Project
	for _, proj := range projects {
		if proj.ClientID == chosen.ID {
			clientProjects = append(clientProjects, proj)
		}
	}
	if len(clientProjects) > 0 {
		if _, err := fmt.Fprintln(p.writer, FormatInfo("Projects (0 for none):")); err != nil {
			return model.ClassificationResult{}, fmt.Errorf("failed to write project list header: %w", err)
		}
		for i, proj := range clientProjects {
			if _, err := fmt.Fprintf(p.writer, "  [%d] %s\n", i+1, proj.Name); err != nil {
				slog.Warn("Failed to write project entry", "error", err)
			}
		}
		idx, pickErr := p.pickIndexedAllowZero(ctx, "Project number", len(clientProjects))
		if pickErr != nil {
			return model.ClassificationResult{}, pickErr
		}
		if idx >= 0 {
			proj := clientProjects[idx]
			corrected.ProjectID = &proj.ID
			corrected.ProjectName = proj.Name
		}
	}

	return corrected, nil
}

func (p *Prompter) promptInternalTarget(ctx context.Context, note model.Note) (model.ClassificationResult, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt("Team name (blank for none)")); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to write team prompt: %w", err)
	}
	team, err := p.reader.ReadLine(ctx)
	if err != nil {
		return model.ClassificationResult{}, err
	}

	corrected := correctedBase(note)
	corrected.Type = model.TypeInternal
	corrected.InternalTeam = strings.TrimSpace(team)
	return corrected, nil
}

func (p *Prompter) promptTypeChange(ctx context.Context, note model.Note) (model.ClassificationResult, error) {
	if _, err := fmt.Fprintln(p.writer, FormatInfo("Types: [E]xternal, [P]ersonal, [U]ncategorized")); err != nil {
		return model.ClassificationResult{}, fmt.Errorf("failed to write type list: %w", err)
	}

	choice, err := p.promptChoice(ctx, "Type [E/P/U]", []string{"e", "p", "u"})
	if err != nil {
		return model.ClassificationResult{}, err
	}

	corrected := correctedBase(note)
	switch choice {
	case "e":
		corrected.Type = model.TypeExternal
	case "p":
		corrected.Type = model.TypePersonal
	default:
		corrected.Type = model.TypeUncategorized
	}
	return corrected, nil
}

// correctedBase starts a correction from the note's original verdict so
// a human decision always carries full confidence.
func correctedBase(note model.Note) model.ClassificationResult {
	var corrected model.ClassificationResult
	if note.Result != nil {
		corrected = *note.Result
		corrected.ClientID = nil
		corrected.ClientName = ""
		corrected.ProjectID = nil
		corrected.ProjectName = ""
		corrected.InternalTeam = ""
		corrected.AIReasoning = ""
	}
	corrected.Method = model.MethodDefault
	corrected.Confidence = 1.0
	return corrected
}

func (p *Prompter) promptChoice(ctx context.Context, prompt string, validChoices []string) (string, error) {
	for {
		if _, err := fmt.Fprintf(p.writer, "%s: ", FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			if err == io.EOF {
				return "", fmt.Errorf("input terminated")
			}
			return "", err
		}

		choice := strings.ToLower(strings.TrimSpace(input))
		for _, valid := range validChoices {
			if choice == valid {
				return choice, nil
			}
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

func (p *Prompter) pickIndexed(ctx context.Context, prompt string, count int) (int, error) {
	for {
		if _, err := fmt.Fprintf(p.writer, "%s: ", FormatPrompt(prompt)); err != nil {
			return 0, fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			return 0, err
		}

		n, convErr := strconv.Atoi(strings.TrimSpace(input))
		if convErr == nil && n >= 1 && n <= count {
			return n - 1, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError(fmt.Sprintf("Enter a number between 1 and %d.", count))); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

// pickIndexedAllowZero is pickIndexed with 0 meaning "none" (-1).
func (p *Prompter) pickIndexedAllowZero(ctx context.Context, prompt string, count int) (int, error) {
	for {
		if _, err := fmt.Fprintf(p.writer, "%s: ", FormatPrompt(prompt)); err != nil {
			return 0, fmt.Errorf("failed to write prompt: %w", err)
		}

		input, err := p.reader.ReadLine(ctx)
		if err != nil {
			return 0, err
		}

		n, convErr := strconv.Atoi(strings.TrimSpace(input))
		if convErr == nil && n >= 0 && n <= count {
			return n - 1, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError(fmt.Sprintf("Enter a number between 0 and %d.", count))); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

func (p *Prompter) incrementStats(update func(*ReviewStats)) {
	p.statsMutex.Lock()
	defer p.statsMutex.Unlock()
	update(&p.stats)
}

func emptyDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
