package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/rjournal/metrics"
	"github.com/rustyeddy/rjournal/notation"
	"github.com/rustyeddy/rjournal/risk"
)

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Add, list and remove trading days",
	Long: `Record trading days in W/L/BE notation.

Subcommands:
  add     - Append a day to a session
  list    - List a session's days with running balance
  remove  - Remove a day; later days are renumbered
  rules   - Set which rules were followed on a day

Examples:
  rjournal day add <session-id> "W2R, L1R, BE" --date 2024-03-04 --rules 1,3
  rjournal day remove <session-id> 4`,
}

var dayAddCmd = &cobra.Command{
	Use:   "add <session-id> <trades>",
	Short: "Append a day to a session",
	Args:  cobra.ExactArgs(2),
	RunE:  runDayAdd,
}

var dayListCmd = &cobra.Command{
	Use:   "list <session-id>",
	Short: "List a session's days with running balance",
	Args:  cobra.ExactArgs(1),
	RunE:  runDayList,
}

var dayRemoveCmd = &cobra.Command{
	Use:   "remove <session-id> <day>",
	Short: "Remove a day; later days are renumbered",
	Args:  cobra.ExactArgs(2),
	RunE:  runDayRemove,
}

var dayRulesCmd = &cobra.Command{
	Use:   "rules <session-id> <day> <rule-numbers>",
	Short: "Set which rules were followed on a day, e.g. 1,3",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runDayRules,
}

var (
	dayDate  string
	dayRules string
)

func init() {
	rootCmd.AddCommand(dayCmd)
	dayCmd.AddCommand(dayAddCmd)
	dayCmd.AddCommand(dayListCmd)
	dayCmd.AddCommand(dayRemoveCmd)
	dayCmd.AddCommand(dayRulesCmd)

	dayAddCmd.Flags().StringVar(&dayDate, "date", "", "trading date YYYY-MM-DD (default today)")
	dayAddCmd.Flags().StringVar(&dayRules, "rules", "", "rule numbers followed, e.g. 1,3")
}

func runDayAdd(cmd *cobra.Command, args []string) error {
	trades, err := notation.Parse(args[1])
	if err != nil {
		return err
	}
	if len(trades) == 0 {
		return fmt.Errorf("no trades in %q", args[1])
	}

	date := dayDate
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("date %q: want YYYY-MM-DD", date)
	}

	rules, err := parseRuleList(dayRules)
	if err != nil {
		return err
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
	for _, idx := range rules {
		if idx >= len(s.Rules) {
			return fmt.Errorf("rule %d does not exist (session has %d rules)", idx+1, len(s.Rules))
		}
	}

	d, err := j.AddDay(ctx, s.ID, metrics.DayRecord{Date: date, Trades: trades, RulesFollowed: rules})
	if err != nil {
		return fmt.Errorf("add day: %w", err)
	}
	log.Debug("day added", zap.String("session", s.ID), zap.Int("day", d.Day), zap.Int("trades", len(trades)))

	var net float64
	for _, t := range trades {
		net += t.Signed()
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Day %d (%s): %s = %+.2fR\n", d.Day, d.Date, notation.Format(trades), net)
	return nil
}

func runDayList(cmd *cobra.Command, args []string) error {
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
	if len(days) == 0 {
		fmt.Fprintln(out, "no days recorded")
		return nil
	}

	rep, err := analyzeSession(days, s.Risk())
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DAY\tDATE\tWEEKDAY\tTRADES\tNET R\tP/L\tBALANCE\tRULES")
	for i, dm := range rep.Daily {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%+.2f\t%.2f\t%.2f\t%s\n",
			dm.Day, dm.Date, dm.DayOfWeek, notation.Format(days[i].Trades),
			dm.NetR, dm.PnL, dm.EndBalance, formatRuleList(days[i].RulesFollowed))
	}
	return tw.Flush()
}

func runDayRemove(cmd *cobra.Command, args []string) error {
	n, err := parseDayNumber(args[1])
	if err != nil {
		return err
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
	if err := j.DeleteDay(ctx, s.ID, n); err != nil {
		return notFound(err, fmt.Sprintf("day %d", n))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed day %d; later days renumbered\n", n)
	return nil
}

func runDayRules(cmd *cobra.Command, args []string) error {
	n, err := parseDayNumber(args[1])
	if err != nil {
		return err
	}
	var list string
	if len(args) == 3 {
		list = args[2]
	}
	rules, err := parseRuleList(list)
	if err != nil {
		return err
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
	for _, idx := range rules {
		if idx >= len(s.Rules) {
			return fmt.Errorf("rule %d does not exist (session has %d rules)", idx+1, len(s.Rules))
		}
	}

	if err := j.SetDayRules(ctx, s.ID, n, rules); err != nil {
		return notFound(err, fmt.Sprintf("day %d", n))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Day %d rules: %s\n", n, formatRuleList(rules))
	return nil
}

func analyzeSession(days []metrics.DayRecord, rc risk.Config) (*metrics.Report, error) {
	rep, err := metrics.Analyze(days, rc)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	return rep, nil
}
