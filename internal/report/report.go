// Package report renders analysis results for the terminal and as PNG charts.
package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/rustyeddy/rjournal/metrics"
	"github.com/rustyeddy/rjournal/risk"
)

// Summary is everything Print needs for one session.
type Summary struct {
	SessionID   string
	SessionName string
	Risk        risk.Config
	Report      *metrics.Report
	Adherence   *metrics.Adherence // optional

	OrgPath    string
	EquityPNG  string
	OutcomePNG string
}

const rule = "--------------------------------------------------"

// Money formats a dollar amount with thousands separators, e.g. -$1,234.50.
func Money(x float64) string {
	sign := ""
	if x < 0 {
		sign = "-"
		x = -x
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", x)
}

// Ratio formats profit factor style values; +Inf renders as ∞.
func Ratio(x float64) string {
	if math.IsInf(x, 1) {
		return "∞"
	}
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func Print(w io.Writer, s Summary) {
	o := s.Report.Overall

	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Trading Journal Analysis")
	fmt.Fprintln(w, "==================================================")

	if s.SessionName != "" {
		fmt.Fprintf(w, "Session:       %s\n", s.SessionName)
	}
	if s.SessionID != "" {
		fmt.Fprintf(w, "Session ID:    %s\n", s.SessionID)
	}
	fmt.Fprintf(w, "Days:          %d\n", len(s.Report.Daily))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Risk")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Start Balance: %s\n", Money(s.Risk.InitialBalance))
	fmt.Fprintf(w, "1R:            %s (%.2f%%)\n", Money(s.Risk.RiskAmount), s.Risk.Percent())

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Trades:        %d\n", o.TotalTrades)
	fmt.Fprintf(w, "Wins:          %d\n", o.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", o.Losses)
	fmt.Fprintf(w, "Break-even:    %d\n", o.BreakEven)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", o.WinRate)
	fmt.Fprintf(w, "Avg Win:       %.2fR\n", o.AvgWinR)
	fmt.Fprintf(w, "Avg Loss:      %.2fR\n", o.AvgLossR)
	fmt.Fprintf(w, "Risk/Reward:   %s\n", Ratio(o.RiskReward))
	fmt.Fprintf(w, "Expectancy:    %.2fR\n", o.Expectancy)
	fmt.Fprintf(w, "Streaks:       %dW / %dL\n", o.MaxWinStreak, o.MaxLossStreak)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total R:       %.2fR\n", o.TotalR)
	fmt.Fprintf(w, "Net P/L:       %s\n", Money(o.NetPnL))
	fmt.Fprintf(w, "End Balance:   %s\n", Money(o.FinalBalance))
	fmt.Fprintf(w, "Profit Factor: %s\n", Ratio(o.ProfitFactor))
	if o.MaxDrawdownAmount > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.2f%% (%s)\n", o.MaxDrawdownPct, Money(o.MaxDrawdownAmount))
	}
	fmt.Fprintf(w, "Sharpe:        %.2f\n", o.Sharpe)
	fmt.Fprintf(w, "SQN:           %.2f\n", o.SQN)

	printCalendar(w, o)

	if s.Adherence != nil {
		printAdherence(w, *s.Adherence)
	}

	if s.EquityPNG != "" || s.OutcomePNG != "" || s.OrgPath != "" {
		fmt.Fprintln(w)
	}
	if s.EquityPNG != "" {
		fmt.Fprintf(w, "Equity Curve:  %s\n", s.EquityPNG)
	}
	if s.OutcomePNG != "" {
		fmt.Fprintf(w, "Outcomes:      %s\n", s.OutcomePNG)
	}
	if s.OrgPath != "" {
		fmt.Fprintf(w, "Org Report:    %s\n", s.OrgPath)
	}

	fmt.Fprintln(w)
}

func printCalendar(w io.Writer, o metrics.OverallMetrics) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Average R by Weekday")
	fmt.Fprintln(w, rule)
	for _, d := range metrics.Weekdays {
		fmt.Fprintf(w, "%-14s %6.2f\n", d+":", o.WeekdayAvgR[d])
	}

	if keys := metrics.WeekKeys(o.WeekAvgR); len(keys) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Average R by Week of Month")
		fmt.Fprintln(w, rule)
		for _, k := range keys {
			fmt.Fprintf(w, "%-14s %6.2f\n", k+":", o.WeekAvgR[k])
		}
	}

	if keys := metrics.MonthKeys(o.MonthAvgR); len(keys) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Average R by Month")
		fmt.Fprintln(w, rule)
		for _, k := range keys {
			fmt.Fprintf(w, "%-14s %6.2f\n", k+":", o.MonthAvgR[k])
		}
	}
}

func printAdherence(w io.Writer, a metrics.Adherence) {
	if len(a.Days) == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rule Adherence")
	fmt.Fprintln(w, rule)

	var total float64
	for _, d := range a.Days {
		total += d.Percent
	}
	fmt.Fprintf(w, "Days tracked:  %d\n", len(a.Days))
	fmt.Fprintf(w, "Avg adherence: %.1f%%\n", total/float64(len(a.Days)))
	if a.HasCorrelation {
		fmt.Fprintf(w, "Correlation:   %.2f (%s %s)\n", a.Correlation, a.Strength(), a.Direction())
	}

	for _, im := range a.Impacts {
		fmt.Fprintf(w, "- %s: %+.2fR (followed %d days %.2fR, skipped %d days %.2fR)\n",
			im.Rule, im.RDifference, im.DaysFollowed, im.AvgRFollowed, im.DaysNotFollowed, im.AvgRNotFollowed)
	}

	if a.MostValuable != nil {
		fmt.Fprintf(w, "Most valuable: %s\n", a.MostValuable.Rule)
	}
	if a.MostHarmful != nil {
		fmt.Fprintf(w, "Most harmful:  %s\n", a.MostHarmful.Rule)
	}
}
