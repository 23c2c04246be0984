package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/rjournal/internal/report"
	"github.com/rustyeddy/rjournal/journal"
	"github.com/rustyeddy/rjournal/metrics"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create, list and manage trading sessions",
	Long: `A session is one journal of trading days with its own starting balance,
risk per trade and list of trading rules.

Subcommands:
  create  - Start a new session
  list    - List sessions, newest first
  show    - Show one session and its rules
  update  - Change name, balance, risk or notes
  delete  - Delete a session with all its days

Examples:
  rjournal session create "March" --balance 25000 --risk 1
  rjournal session update <session-id> --risk 0.5`,
}

var sessionCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Start a new session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionCreate,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show one session and its rules",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

var sessionUpdateCmd = &cobra.Command{
	Use:   "update <session-id>",
	Short: "Change name, balance, risk or notes",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionUpdate,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session with all its days",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionDelete,
}

var (
	sessName    string
	sessBalance float64
	sessRisk    float64
	sessNotes   string
	sessRules   []string
)

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionCreateCmd)
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionUpdateCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)

	sessionCreateCmd.Flags().Float64VarP(&sessBalance, "balance", "b", 0, "starting balance (default account.balance)")
	sessionCreateCmd.Flags().Float64VarP(&sessRisk, "risk", "r", 0, "risk per trade in percent of the starting balance (default account.risk_percent)")
	sessionCreateCmd.Flags().StringVarP(&sessNotes, "notes", "n", "", "free-form notes")
	sessionCreateCmd.Flags().StringArrayVar(&sessRules, "rule", nil, "trading rule, repeatable")

	sessionUpdateCmd.Flags().StringVar(&sessName, "name", "", "new session name")
	sessionUpdateCmd.Flags().Float64VarP(&sessBalance, "balance", "b", 0, "new starting balance")
	sessionUpdateCmd.Flags().Float64VarP(&sessRisk, "risk", "r", 0, "new risk percent per trade")
	sessionUpdateCmd.Flags().StringVarP(&sessNotes, "notes", "n", "", "new notes")
}

func runSessionCreate(cmd *cobra.Command, args []string) error {
	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	balance, risk := cfg.Account.Balance, cfg.Account.RiskPercent
	if cmd.Flags().Changed("balance") {
		balance = sessBalance
	}
	if cmd.Flags().Changed("risk") {
		risk = sessRisk
	}

	var rules metrics.RuleSet
	for _, r := range sessRules {
		rules = rules.Add(r)
	}

	s, err := j.CreateSession(context.Background(), journal.NewSession{
		Name:           args[0],
		InitialBalance: balance,
		RiskPercentage: risk,
		Notes:          sessNotes,
		Rules:          rules,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	log.Info("session created", zap.String("id", s.ID), zap.String("name", s.Name))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created session %s\n", s.ID)
	fmt.Fprintf(out, "  %s: %s, 1R = %s\n", s.Name, report.Money(s.InitialBalance), report.Money(s.Risk().RiskAmount))
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	sessions, err := j.ListSessions(context.Background())
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(out, "no sessions")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED\tBALANCE\tRISK\tRULES")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f%%\t%d\n",
			s.ID, s.Name, s.CreatedAt.Local().Format("2006-01-02 15:04"),
			report.Money(s.InitialBalance), s.RiskPercentage, len(s.Rules))
	}
	return tw.Flush()
}

func runSessionShow(cmd *cobra.Command, args []string) error {
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
	days, err := j.ListDays(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("list days: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session:       %s\n", s.Name)
	fmt.Fprintf(out, "ID:            %s\n", s.ID)
	fmt.Fprintf(out, "Created:       %s\n", s.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "Start Balance: %s\n", report.Money(s.InitialBalance))
	fmt.Fprintf(out, "Risk:          %.2f%% (%s per R)\n", s.RiskPercentage, report.Money(s.Risk().RiskAmount))
	fmt.Fprintf(out, "Days:          %d\n", len(days))
	if s.Notes != "" {
		fmt.Fprintf(out, "Notes:         %s\n", s.Notes)
	}
	printRules(cmd, s.Rules)
	return nil
}

func runSessionUpdate(cmd *cobra.Command, args []string) error {
	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	var u journal.SessionUpdate
	f := cmd.Flags()
	if f.Changed("name") {
		u.Name = &sessName
	}
	if f.Changed("balance") {
		u.InitialBalance = &sessBalance
	}
	if f.Changed("risk") {
		u.RiskPercentage = &sessRisk
	}
	if f.Changed("notes") {
		u.Notes = &sessNotes
	}

	ctx := context.Background()
	s, err := findSession(ctx, j, args[0])
	if err != nil {
		return err
	}

	s, err = j.UpdateSession(ctx, s.ID, u)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated session %s (%s, %.2f%% risk)\n",
		s.Name, report.Money(s.InitialBalance), s.RiskPercentage)
	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
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

	if err := j.DeleteSession(ctx, s.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	log.Info("session deleted", zap.String("id", s.ID))

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted session %s (%s)\n", s.Name, s.ID)
	return nil
}
