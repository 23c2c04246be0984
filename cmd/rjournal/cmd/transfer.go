package cmd

import (
	"bytes"
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/rjournal/internal/archive"
	"github.com/rustyeddy/rjournal/journal"
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id> <file.csv>",
	Short: "Export a session's days to CSV",
	Long: `Write a session's days as Day,Date,Trades,Rules rows.

With --archive the file is also copied to the configured archive
(archive.type localfs or s3) under sessions/<session-id>/.

Example:
  rjournal export <session-id> march.csv --archive`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <name> <file.csv|archive-key>",
	Short: "Create a session from a CSV export",
	Long: `Create a new session holding the days in a CSV file. Rows that cannot be
parsed are skipped and counted; days are renumbered from 1.

With --from-archive the second argument is an archive key as shown by
"rjournal archive list", e.g. sessions/<session-id>/march.csv.

Examples:
  rjournal import "March (restored)" march.csv --balance 25000 --risk 1
  rjournal import "March (restored)" sessions/<session-id>/march.csv --from-archive`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

var (
	exArchive bool

	imBalance     float64
	imRisk        float64
	imFromArchive bool
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().BoolVar(&exArchive, "archive", false, "copy the export to the configured archive")

	importCmd.Flags().Float64VarP(&imBalance, "balance", "b", 0, "starting balance (default account.balance)")
	importCmd.Flags().Float64VarP(&imRisk, "risk", "r", 0, "risk percent per trade (default account.risk_percent)")
	importCmd.Flags().BoolVar(&imFromArchive, "from-archive", false, "read the CSV from the configured archive")
}

func runExport(cmd *cobra.Command, args []string) error {
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

	path := args[1]
	if err := journal.SaveCSV(path, days); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d days to %s\n", len(days), path)

	if !exArchive {
		return nil
	}

	st, err := archive.New(cfg.Archive)
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	keys, err := archiveFiles(ctx, st, s.ID, path)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Archived to %s:%s\n", cfg.Archive.Type, keys[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	res, err := loadImport(ctx, args[1])
	if err != nil {
		return err
	}
	if res.Skipped > 0 {
		log.Warn("skipped malformed rows", zap.String("file", args[1]), zap.Int("rows", res.Skipped))
	}

	balance, risk := cfg.Account.Balance, cfg.Account.RiskPercent
	if cmd.Flags().Changed("balance") {
		balance = imBalance
	}
	if cmd.Flags().Changed("risk") {
		risk = imRisk
	}

	j, err := openStore()
	if err != nil {
		return err
	}
	defer j.Close()

	s, err := j.ImportDays(ctx, journal.NewSession{
		Name:           args[0],
		InitialBalance: balance,
		RiskPercentage: risk,
	}, res.Days)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Imported %d days into session %s\n", len(res.Days), s.ID)
	if res.Skipped > 0 {
		fmt.Fprintf(out, "  skipped %d malformed rows\n", res.Skipped)
	}
	return nil
}

func loadImport(ctx context.Context, src string) (journal.CSVResult, error) {
	if !imFromArchive {
		res, err := journal.LoadCSV(src)
		if err != nil {
			return journal.CSVResult{}, fmt.Errorf("read csv: %w", err)
		}
		return res, nil
	}

	st, err := archive.New(cfg.Archive)
	if err != nil {
		return journal.CSVResult{}, fmt.Errorf("archive: %w", err)
	}
	data, err := readArchived(ctx, st, src)
	if err != nil {
		return journal.CSVResult{}, err
	}
	res, err := journal.ReadDays(bytes.NewReader(data))
	if err != nil {
		return journal.CSVResult{}, fmt.Errorf("read csv %s: %w", src, err)
	}
	return res, nil
}
