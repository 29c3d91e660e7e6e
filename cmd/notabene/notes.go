package main

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/notabene-app/notabene/internal/cli"
	"github.com/notabene-app/notabene/internal/model"
	"github.com/spf13/cobra"
)

func notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Manage meeting notes",
		Long: `Add, list and inspect meeting notes.

New notes start in the pending state; run "notabene classify" to file
them.`,
	}

	cmd.AddCommand(notesAddCmd())
	cmd.AddCommand(notesListCmd())
	cmd.AddCommand(notesShowCmd())

	return cmd
}

func notesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a meeting note",
		Long: `Add a meeting note from flags or a JSON document.

Examples:
  notabene notes add --title "Acme weekly sync" --attendees jo@acme.com,sam@ourco.com
  notabene notes add --file meeting.json`,
		RunE: runNotesAdd,
	}

	cmd.Flags().String("file", "", "Path to a meeting JSON document")
	cmd.Flags().String("title", "", "Meeting title")
	cmd.Flags().String("description", "", "Meeting description")
	cmd.Flags().String("organizer", "", "Organizer email")
	cmd.Flags().String("attendees", "", "Comma-separated attendee emails")

	return cmd
}

func runNotesAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	var meeting model.MeetingInput
	if path, _ := cmd.Flags().GetString("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read meeting file: %w", err)
		}
		if err := json.Unmarshal(data, &meeting); err != nil {
			return fmt.Errorf("failed to parse meeting file: %w", err)
		}
	} else {
		meeting.Title, _ = cmd.Flags().GetString("title")
		meeting.Description, _ = cmd.Flags().GetString("description")
		meeting.Organizer, _ = cmd.Flags().GetString("organizer")
		attendees, _ := cmd.Flags().GetString("attendees")
		for _, email := range strings.Split(attendees, ",") {
			email = strings.TrimSpace(email)
			if email != "" {
				meeting.Attendees = append(meeting.Attendees, model.Attendee{Email: email})
			}
		}
	}
	if meeting.Title == "" {
		return fmt.Errorf("a title is required (--title or --file)")
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	note := model.Note{
		ID:          newNoteID(),
		Title:       meeting.Title,
		Description: meeting.Description,
		Organizer:   meeting.Organizer,
		Attendees:   meeting.Attendees,
		Status:      model.NotePending,
		CreatedAt:   time.Now(),
	}
	if err := store.SaveNote(ctx, &note); err != nil {
		return fmt.Errorf("failed to save note: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Added note %s: %s", note.ID, note.Title)))
	fmt.Println(cli.FormatInfo("Classify pending notes with: notabene classify"))
	return nil
}

func notesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes by status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			statusFlag, _ := cmd.Flags().GetString("status")
			status := model.NoteStatus(statusFlag)

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			notes, err := store.GetNotesByStatus(ctx, status)
			if err != nil {
				return fmt.Errorf("failed to list notes: %w", err)
			}
			if len(notes) == 0 {
				fmt.Println(cli.FormatInfo(fmt.Sprintf("No notes with status %q.", status)))
				return nil
			}

			header := fmt.Sprintf("%-14s %-40s %-14s %-10s", "ID", "TITLE", "STATUS", "VERDICT")
			fmt.Println(cli.TableHeaderStyle.Render(header))
			for _, n := range notes {
				verdict := "-"
				if n.Result != nil {
					verdict = string(n.Result.Type)
				}
				fmt.Printf("%-14s %-40s %-14s %-10s\n",
					n.ID, truncate(n.Title, 40), n.Status, verdict)
			}
			return nil
		},
	}

	cmd.Flags().String("status", string(model.NotePending), "Status to list (pending, auto_filed, in_review, uncategorized, confirmed)")
	return cmd
}

func notesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <note-id>",
		Short: "Show a note and its classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			note, err := store.GetNote(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to load note: %w", err)
			}

			data, err := json.MarshalIndent(note, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to render note: %w", err)
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

// newNoteID generates a short random note identifier.
func newNoteID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("note-%d", time.Now().UnixNano())
	}
	return "note-" + hex.EncodeToString(buf)
}
