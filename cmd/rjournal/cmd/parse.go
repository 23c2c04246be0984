package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/rjournal/internal/report"
	"github.com/rustyeddy/rjournal/metrics"
	"github.com/rustyeddy/rjournal/notation"
)

var parseCmd = &cobra.Command{
	Use:   "parse <trades>...",
	Short: "Parse a line of trade notation and show its result",
	Long: `Parse W/L/BE notation without storing anything. P/L uses the account
defaults from the configuration.

Example:
  rjournal parse "W2R, L1R, BE, W"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	line := strings.Join(args, ",")
	trades, err := notation.Parse(line)
	if err != nil {
		return err
	}

	rc := cfg.Risk()
	rep, err := analyzeSession([]metrics.DayRecord{{Day: 1, Trades: trades}}, rc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, t := range trades {
		fmt.Fprintf(out, "%2d. %-6s %+6.2fR  %s\n", i+1, notation.FormatOutcome(t), t.Signed(), report.Money(rc.PnL(t.Signed())))
	}

	o := rep.Overall
	fmt.Fprintln(out, "--------------------------------------------------")
	fmt.Fprintf(out, "Trades: %d (%dW %dL %dBE)  Win Rate: %.2f%%\n", o.TotalTrades, o.Wins, o.Losses, o.BreakEven, o.WinRate)
	fmt.Fprintf(out, "Net: %+.2fR = %s at %s per R\n", o.TotalR, report.Money(o.NetPnL), report.Money(rc.RiskAmount))
	return nil
}
