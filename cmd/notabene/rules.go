package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/notabene-app/notabene/internal/cli"
	"github.com/notabene-app/notabene/internal/model"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage classification rules",
		Long: `List, create, enable, disable and dry-run classification rules.

Rules are prioritized condition groups; the highest-priority matching
rule wins during classification. New rules usually start in testing
status so they can be dry-run before affecting auto-filing.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesStatusCmd("enable", model.RuleActive))
	cmd.AddCommand(rulesStatusCmd("disable", model.RuleDisabled))
	cmd.AddCommand(rulesTestCmd())

	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all rules with their stats",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			rules, err := store.ListRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}
			if len(rules) == 0 {
				fmt.Println(cli.FormatInfo("No rules defined yet."))
				return nil
			}

			header := fmt.Sprintf("%-4s %-30s %-9s %-8s %-8s %-9s", "ID", "NAME", "STATUS", "PRIORITY", "APPLIED", "CORRECTED")
			fmt.Println(cli.TableHeaderStyle.Render(header))
			for _, r := range rules {
				line := fmt.Sprintf("%-4d %-30s %-9s %-8d %-8d %-9d",
					r.ID, truncate(r.Name, 30), r.Status, r.Priority,
					r.Stats.TimesApplied, r.Stats.TimesCorrected)
				if r.Status == model.RuleDisabled {
					line = cli.SubtleStyle.Render(line)
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a rule from a JSON document",
		Long: `Create a rule from a JSON file describing its conditions and actions.

Example document:
  {
    "name": "Acme meetings",
    "status": "testing",
    "priority": 100,
    "confidence_boost": 0.2,
    "conditions": {
      "operator": "AND",
      "conditions": [
        {"field": "attendee_domains", "operator": "contains", "value": "acme.com"}
      ]
    },
    "actions": {"classify_as": "client", "client": {"mode": "from_domain"}}
  }`,
		RunE: runRulesAdd,
	}

	cmd.Flags().String("file", "", "Path to the rule JSON document (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runRulesAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	path, _ := cmd.Flags().GetString("file")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read rule file: %w", err)
	}

	var rule model.Rule
	if err := json.Unmarshal(data, &rule); err != nil {
		return fmt.Errorf("failed to parse rule file: %w", err)
	}
	if rule.Status == "" {
		rule.Status = model.RuleTesting
	}
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.CreateRule(ctx, &rule); err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created rule %d: %s (%s)", rule.ID, rule.Name, rule.Status)))
	if rule.Status == model.RuleTesting {
		fmt.Println(cli.FormatInfo(fmt.Sprintf("Dry-run it with: notabene rules test %d --meeting <note.json>", rule.ID)))
	}
	return nil
}

func rulesStatusCmd(verb string, status model.RuleStatus) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <rule-id>",
		Short: verb + " a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid rule ID %q", args[0])
			}

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.SetRuleStatus(ctx, id, status); err != nil {
				return fmt.Errorf("failed to %s rule: %w", verb, err)
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Rule %d is now %s", id, status)))
			return nil
		},
	}
}

func rulesTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <rule-id>",
		Short: "Dry-run a rule against a meeting",
		Long: `Evaluate a rule against a meeting document without touching rule
statistics or note state. The meeting JSON carries title, description,
organizer and attendees, the same shape as notes add.`,
		Args: cobra.ExactArgs(1),
		RunE: runRulesTest,
	}

	cmd.Flags().String("meeting", "", "Path to the meeting JSON document (required)")
	_ = cmd.MarkFlagRequired("meeting")

	return cmd
}

func runRulesTest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid rule ID %q", args[0])
	}

	path, _ := cmd.Flags().GetString("meeting")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read meeting file: %w", err)
	}

	var meeting model.MeetingInput
	if err := json.Unmarshal(data, &meeting); err != nil {
		return fmt.Errorf("failed to parse meeting file: %w", err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	rule, err := store.GetRule(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load rule: %w", err)
	}

	eng, classifier, err := buildEngine(store)
	if err != nil {
		return err
	}
	if classifier != nil {
		defer func() { _ = classifier.Close() }()
	}

	match := eng.TestRule(*rule, meeting)

	if match.Matched {
		fmt.Println(cli.FormatSuccess(fmt.Sprintf("Rule %q matches", rule.Name)))
	} else {
		fmt.Println(cli.FormatWarning(fmt.Sprintf("Rule %q does not match", rule.Name)))
	}
	for _, c := range match.MatchedConditions {
		fmt.Printf("  %s %s\n", cli.SuccessIcon, c)
	}
	for _, c := range match.FailedConditions {
		fmt.Printf("  %s %s\n", cli.ErrorIcon, c)
	}

	slog.Debug("Rule dry-run complete", "rule_id", rule.ID, "matched", match.Matched)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
