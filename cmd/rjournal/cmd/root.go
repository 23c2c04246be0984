package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/rjournal/config"
	"github.com/rustyeddy/rjournal/internal/logger"
	"github.com/rustyeddy/rjournal/journal"
	"github.com/rustyeddy/rjournal/metrics"
	"github.com/rustyeddy/rjournal/pkg/id"
)

// defaultConfigFile is read from the working directory when --config is not given.
const defaultConfigFile = "rjournal.yaml"

var rootCmd = &cobra.Command{
	Use:   "rjournal",
	Short: "A trading journal that turns W/L/BE notation into performance statistics",
	Long: `rjournal records trading days in a compact notation and analyzes them.

Each day is a comma separated list of trades in R-multiples:
  W2R   a win of two times the risked amount
  L1R   a loss of the risked amount
  BE    a break-even trade

It provides tools for:
  - Managing sessions, days and trading rules in a SQLite journal
  - Win rate, profit factor, expectancy, drawdown, Sharpe and SQN
  - Weekday, week-of-month and month breakdowns
  - Rule adherence analysis
  - Org-mode reports, PNG charts and CSV export/import

Example:
  rjournal session create "March" --balance 25000 --risk 1
  rjournal day add <session-id> "W2R, L1R, BE" --date 2024-03-04
  rjournal analyze <session-id> --org --chart`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

var (
	cfgFile string
	dbPath  string
	debug   bool

	cfg *config.Config
	log *zap.Logger
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default ./"+defaultConfigFile+" when present)")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "path to SQLite journal DB (overrides journal.db_path)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "development logging to stderr")
}

func setup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}

	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dbPath != "" {
		c.Journal.DBPath = dbPath
	}
	cfg = c

	if err := initLogger(debug || cfg.Log.Development); err != nil {
		return err
	}

	log.Debug("config loaded", zap.String("file", path), zap.String("db", cfg.Journal.DBPath))
	return nil
}

func initLogger(development bool) error {
	l, err := logger.New(development)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	log = l
	return nil
}

func openStore() (*journal.SQLite, error) {
	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

// parseRuleList turns user facing "1,3" into zero-based rule indices.
func parseRuleList(s string) (metrics.RuleIndexSet, error) {
	var idx []int
	for _, p := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == ';' }) {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("rule number %q: must be a positive integer", p)
		}
		idx = append(idx, n-1)
	}
	return metrics.NewRuleIndexSet(idx...), nil
}

func formatRuleList(s metrics.RuleIndexSet) string {
	if len(s) == 0 {
		return "-"
	}
	parts := make([]string, len(s))
	for i, idx := range s {
		parts[i] = strconv.Itoa(idx + 1)
	}
	return strings.Join(parts, ",")
}

func parseDayNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("day %q: must be a positive integer", s)
	}
	return n, nil
}

// findSession resolves ref as a session ID, or else as a unique session name.
func findSession(ctx context.Context, j journal.Store, ref string) (journal.Session, error) {
	if id.Valid(ref) {
		s, err := j.GetSession(ctx, ref)
		return s, notFound(err, "session "+ref)
	}

	sessions, err := j.ListSessions(ctx)
	if err != nil {
		return journal.Session{}, fmt.Errorf("list sessions: %w", err)
	}
	var matches []journal.Session
	for _, s := range sessions {
		if strings.EqualFold(s.Name, ref) {
			matches = append(matches, s)
		}
	}
	switch len(matches) {
	case 0:
		return journal.Session{}, fmt.Errorf("session %q not found", ref)
	case 1:
		return matches[0], nil
	default:
		return journal.Session{}, fmt.Errorf("session name %q is ambiguous (%d sessions); use the ID", ref, len(matches))
	}
}

func notFound(err error, what string) error {
	if errors.Is(err, journal.ErrNotFound) {
		return fmt.Errorf("%s not found", what)
	}
	return err
}
