package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/rjournal/internal/archive"
	"github.com/rustyeddy/rjournal/internal/report"
	"github.com/rustyeddy/rjournal/journal"
	"github.com/rustyeddy/rjournal/metrics"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <session-id>",
	Short: "Analyze a session's performance",
	Long: `Compute overall, per-day and calendar statistics for a session plus rule
adherence, and print them.

Output files go to report.output_dir:
  --org    Org-mode report <session-id>.org
  --chart  equity and outcome PNG charts (also written with --org when report.charts is set)
  --save   store a snapshot of the headline numbers in the journal
  --archive  copy the Org report and charts to the configured archive (implies --org)

Example:
  rjournal analyze <session-id> --org --save
  rjournal analyze <session-id> --archive
  rjournal analyze <session-id> --history`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	anOrg     bool
	anChart   bool
	anSave    bool
	anHistory bool
	anArchive bool
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().BoolVar(&anOrg, "org", false, "write an Org-mode report")
	analyzeCmd.Flags().BoolVar(&anChart, "chart", false, "write PNG charts")
	analyzeCmd.Flags().BoolVar(&anSave, "save", false, "record this analysis in the journal")
	analyzeCmd.Flags().BoolVar(&anHistory, "history", false, "list saved analyses instead of analyzing")
	analyzeCmd.Flags().BoolVar(&anArchive, "archive", false, "copy the Org report and charts to the configured archive")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	if anHistory {
		return printHistory(cmd, j, s)
	}

	days, err := j.ListDays(ctx, s.ID)
	if err != nil {
		return fmt.Errorf("list days: %w", err)
	}

	rep, err := analyzeSession(days, s.Risk())
	if err != nil {
		return err
	}
	adh := metrics.AnalyzeAdherence(days, rep.Daily, s.Rules)

	sum := report.Summary{
		SessionID:   s.ID,
		SessionName: s.Name,
		Risk:        s.Risk(),
		Report:      rep,
		Adherence:   &adh,
	}

	writeOrg := anOrg || anArchive

	var st archive.Storage
	if anArchive {
		if st, err = archive.New(cfg.Archive); err != nil {
			return fmt.Errorf("archive: %w", err)
		}
	}

	if anChart || writeOrg {
		if err := os.MkdirAll(cfg.Report.OutputDir, 0755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	if anChart || (writeOrg && cfg.Report.Charts) {
		if sum.EquityPNG, sum.OutcomePNG, err = writeCharts(s, rep); err != nil {
			return err
		}
	}

	if writeOrg {
		sum.OrgPath = filepath.Join(cfg.Report.OutputDir, s.ID+".org")
		org := journal.SessionOrg{
			Session:   s,
			Days:      days,
			Report:    rep,
			Adherence: &adh,
			Created:   time.Now(),
		}
		if sum.EquityPNG != "" {
			org.EquityPNG = filepath.Base(sum.EquityPNG)
		}
		if err := org.WriteSessionOrg(sum.OrgPath); err != nil {
			return fmt.Errorf("write org report: %w", err)
		}
		log.Debug("org report written", zap.String("path", sum.OrgPath))
	}

	report.Print(cmd.OutOrStdout(), sum)

	if st != nil {
		keys, err := archiveFiles(ctx, st, s.ID, sum.OrgPath, sum.EquityPNG, sum.OutcomePNG)
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Archived to %s:%s\n", cfg.Archive.Type, key)
		}
	}

	if anSave {
		run := journal.NewAnalysisRun(s.ID, rep)
		if err := j.RecordAnalysis(ctx, run); err != nil {
			return fmt.Errorf("save analysis: %w", err)
		}
		log.Info("analysis saved", zap.String("session", s.ID), zap.String("run", run.RunID))
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved analysis %s\n", run.RunID)
	}
	return nil
}

// writeCharts writes whichever charts have data and returns their paths.
func writeCharts(s journal.Session, rep *metrics.Report) (equity, outcomes string, err error) {
	b, err := report.EquityChart(s.Name+" equity", rep)
	switch {
	case errors.Is(err, report.ErrNoData):
	case err != nil:
		return "", "", fmt.Errorf("equity chart: %w", err)
	default:
		equity = filepath.Join(cfg.Report.OutputDir, s.ID+"-equity.png")
		if err := os.WriteFile(equity, b, 0644); err != nil {
			return "", "", fmt.Errorf("write equity chart: %w", err)
		}
	}

	b, err = report.OutcomeChart(s.Name+" outcomes", rep.Overall)
	switch {
	case errors.Is(err, report.ErrNoData):
	case err != nil:
		return "", "", fmt.Errorf("outcome chart: %w", err)
	default:
		outcomes = filepath.Join(cfg.Report.OutputDir, s.ID+"-outcomes.png")
		if err := os.WriteFile(outcomes, b, 0644); err != nil {
			return "", "", fmt.Errorf("write outcome chart: %w", err)
		}
	}
	return equity, outcomes, nil
}

func printHistory(cmd *cobra.Command, j journal.Store, s journal.Session) error {
	runs, err := j.ListAnalyses(context.Background(), s.ID)
	if err != nil {
		return fmt.Errorf("list analyses: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no saved analyses")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tDAYS\tTRADES\tWIN%\tTOTAL R\tPF\tBALANCE\tMAX DD%")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f\t%.2f\t%s\t%s\t%.2f\n",
			r.RunID, r.Created.Local().Format("2006-01-02 15:04"), r.Days, r.Trades,
			r.WinRate, r.TotalR, report.Ratio(r.ProfitFactor), report.Money(r.FinalBalance), r.MaxDDPct)
	}
	return tw.Flush()
}
