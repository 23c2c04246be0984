package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/rustyeddy/rjournal/metrics"
	"github.com/rustyeddy/rjournal/notation"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const sessionCols = `id, name, created_at, initial_balance, risk_percentage, notes, trading_rules`

func scanSession(r rowScanner) (Session, error) {
	var (
		s     Session
		rules string
	)
	err := r.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.InitialBalance, &s.RiskPercentage, &s.Notes, &rules)
	if err != nil {
		return Session{}, err
	}
	if err := json.Unmarshal([]byte(rules), &s.Rules); err != nil {
		return Session{}, fmt.Errorf("session %s: rules: %w", s.ID, err)
	}
	if s.Rules == nil {
		s.Rules = metrics.RuleSet{}
	}
	return s, nil
}

func (j *SQLite) GetSession(ctx context.Context, sessionID string) (Session, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id = ?`, sessionID)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return s, err
}

// ListSessions returns every session, newest first.
func (j *SQLite) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT `+sessionCols+` FROM sessions
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (j *SQLite) GetRules(ctx context.Context, sessionID string) (metrics.RuleSet, error) {
	s, err := j.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Rules, nil
}

// ListDays returns a session's days ordered by day number.
func (j *SQLite) ListDays(ctx context.Context, sessionID string) ([]metrics.DayRecord, error) {
	if err := sessionExists(ctx, j.db, sessionID); err != nil {
		return nil, err
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT day_number, date, trades, rules_followed
		FROM days
		WHERE session_id = ?
		ORDER BY day_number`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []metrics.DayRecord
	for rows.Next() {
		var (
			d             metrics.DayRecord
			trades, rules string
		)
		if err := rows.Scan(&d.Day, &d.Date, &trades, &rules); err != nil {
			return nil, err
		}
		if d.Trades, err = notation.Parse(trades); err != nil {
			return nil, fmt.Errorf("day %d: %w", d.Day, err)
		}
		var idx []int
		if err := json.Unmarshal([]byte(rules), &idx); err != nil {
			return nil, fmt.Errorf("day %d: rules: %w", d.Day, err)
		}
		d.RulesFollowed = metrics.NewRuleIndexSet(idx...)
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListAnalyses returns stored analysis runs for a session, oldest first.
func (j *SQLite) ListAnalyses(ctx context.Context, sessionID string) ([]AnalysisRun, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, session_id, created, days, trades, wins, losses, win_rate, total_r,
		       profit_factor, expectancy, net_pnl, final_balance, max_dd_pct, max_dd_amount, sharpe, sqn
		FROM analysis_runs
		WHERE session_id = ?
		ORDER BY created, run_id`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AnalysisRun
	for rows.Next() {
		var (
			r  AnalysisRun
			pf sql.NullFloat64
		)
		err := rows.Scan(
			&r.RunID, &r.SessionID, &r.Created, &r.Days, &r.Trades, &r.Wins, &r.Losses, &r.WinRate, &r.TotalR,
			&pf, &r.Expectancy, &r.NetPnL, &r.FinalBalance, &r.MaxDDPct, &r.MaxDDAmount, &r.Sharpe, &r.SQN,
		)
		if err != nil {
			return nil, err
		}
		r.ProfitFactor = math.Inf(1)
		if pf.Valid {
			r.ProfitFactor = pf.Float64
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
