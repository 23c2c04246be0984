package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/rjournal/metrics"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage a session's trading rules",
	Long: `Rules are numbered from 1 in the order they were added. Days record which
rule numbers were followed.

Examples:
  rjournal rules add <session-id> "Wait for the retest"
  rjournal rules remove <session-id> 2`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list <session-id>",
	Short: "List trading rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesList,
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <session-id> <rule>",
	Short: "Add a trading rule",
	Args:  cobra.ExactArgs(2),
	RunE:  runRulesAdd,
}

var rulesRemoveCmd = &cobra.Command{
	Use:   "remove <session-id> <number>",
	Short: "Remove a trading rule",
	Long: `Remove a trading rule by number.

Days keep the rule numbers they recorded, so after a removal every later
rule number on existing days points at the rule that moved into its place.`,
	Args: cobra.ExactArgs(2),
	RunE: runRulesRemove,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesAddCmd)
	rulesCmd.AddCommand(rulesRemoveCmd)
}

func printRules(cmd *cobra.Command, rules metrics.RuleSet) {
	out := cmd.OutOrStdout()
	if len(rules) == 0 {
		fmt.Fprintln(out, "no trading rules")
		return
	}
	fmt.Fprintln(out, "Trading Rules")
	fmt.Fprintln(out, "--------------------------------------------------")
	for i, r := range rules {
		fmt.Fprintf(out, "%2d. %s\n", i+1, r)
	}
}

func runRulesList(cmd *cobra.Command, args []string) error {
	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	s, err := findSession(context.Background(), j, args[0])
	if err != nil {
		return err
	}
	printRules(cmd, s.Rules)
	return nil
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := context.Background()
	s, err := findSession(ctx, j, args[0])
	if err != nil {
		return err
	}
	rules := s.Rules

	updated := rules.Add(args[1])
	if len(updated) == len(rules) {
		return fmt.Errorf("rule %q is empty or already exists", args[1])
	}
	if err := j.SetRules(ctx, s.ID, updated); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added rule %d: %s\n", len(updated), updated[len(updated)-1])
	return nil
}

func runRulesRemove(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("rule number %q: %w", args[1], err)
	}

	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := context.Background()
	s, err := findSession(ctx, j, args[0])
	if err != nil {
		return err
	}
	rules := s.Rules

	updated, err := rules.Remove(n - 1)
	if err != nil {
		return err
	}
	if err := j.SetRules(ctx, s.ID, updated); err != nil {
		return fmt.Errorf("save rules: %w", err)
	}

	if n <= len(updated) {
		log.Warn("rule numbers shifted; days recorded before this change keep their old numbers",
			zap.String("session", s.ID), zap.Int("removed", n))
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: rules %d and later were renumbered; existing days still reference the old numbers\n", n)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed rule %d: %s\n", n, rules[n-1])
	return nil
}
