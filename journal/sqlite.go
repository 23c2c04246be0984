package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/rjournal/metrics"
	"github.com/rustyeddy/rjournal/notation"
	"github.com/rustyeddy/rjournal/pkg/id"
)

// SQLite is a Store backed by a single sqlite3 database file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func NewSQLite(path string) (*SQLite, error) {
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&_foreign_keys=on"
	} else {
		dsn += "?_foreign_keys=on"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// one writer; also keeps ":memory:" databases on a single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) CreateSession(ctx context.Context, ns NewSession) (Session, error) {
	return createSession(ctx, j.db, ns)
}

func createSession(ctx context.Context, q querier, ns NewSession) (Session, error) {
	if err := validateNewSession(ns); err != nil {
		return Session{}, err
	}
	rules, err := encodeRules(ns.Rules)
	if err != nil {
		return Session{}, err
	}

	s := Session{
		ID:             id.New(),
		Name:           ns.Name,
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
		InitialBalance: ns.InitialBalance,
		RiskPercentage: ns.RiskPercentage,
		Notes:          ns.Notes,
		Rules:          append(metrics.RuleSet{}, ns.Rules...),
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO sessions
		(id, name, created_at, initial_balance, risk_percentage, notes, trading_rules)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Name, s.CreatedAt, s.InitialBalance, s.RiskPercentage, s.Notes, rules,
	)
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

func (j *SQLite) UpdateSession(ctx context.Context, sessionID string, u SessionUpdate) (Session, error) {
	s, err := j.GetSession(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}

	if u.Name != nil {
		s.Name = *u.Name
	}
	if u.InitialBalance != nil {
		s.InitialBalance = *u.InitialBalance
	}
	if u.RiskPercentage != nil {
		s.RiskPercentage = *u.RiskPercentage
	}
	if u.Notes != nil {
		s.Notes = *u.Notes
	}
	if u.Rules != nil {
		s.Rules = *u.Rules
	}

	err = validateNewSession(NewSession{
		Name:           s.Name,
		InitialBalance: s.InitialBalance,
		RiskPercentage: s.RiskPercentage,
	})
	if err != nil {
		return Session{}, err
	}
	rules, err := encodeRules(s.Rules)
	if err != nil {
		return Session{}, err
	}

	_, err = j.db.ExecContext(ctx, `
		UPDATE sessions
		SET name = ?, initial_balance = ?, risk_percentage = ?, notes = ?, trading_rules = ?
		WHERE id = ?`,
		s.Name, s.InitialBalance, s.RiskPercentage, s.Notes, rules, s.ID,
	)
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

// DeleteSession removes a session along with its days and analysis runs.
func (j *SQLite) DeleteSession(ctx context.Context, sessionID string) error {
	return j.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM days WHERE session_id = ?`, sessionID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM analysis_runs WHERE session_id = ?`, sessionID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
		if err != nil {
			return err
		}
		return expectRow(res, "session "+sessionID)
	})
}

func (j *SQLite) SetRules(ctx context.Context, sessionID string, rules metrics.RuleSet) error {
	enc, err := encodeRules(rules)
	if err != nil {
		return err
	}
	res, err := j.db.ExecContext(ctx, `UPDATE sessions SET trading_rules = ? WHERE id = ?`, enc, sessionID)
	if err != nil {
		return err
	}
	return expectRow(res, "session "+sessionID)
}

// AddDay stores d under sessionID. A zero d.Day appends after the last day.
func (j *SQLite) AddDay(ctx context.Context, sessionID string, d metrics.DayRecord) (metrics.DayRecord, error) {
	err := j.inTx(ctx, func(tx *sql.Tx) error {
		if err := sessionExists(ctx, tx, sessionID); err != nil {
			return err
		}
		if d.Day == 0 {
			row := tx.QueryRowContext(ctx,
				`SELECT COALESCE(MAX(day_number), 0) + 1 FROM days WHERE session_id = ?`, sessionID)
			if err := row.Scan(&d.Day); err != nil {
				return err
			}
		}
		return insertDay(ctx, tx, sessionID, d)
	})
	if err != nil {
		return metrics.DayRecord{}, err
	}
	return d, nil
}

func insertDay(ctx context.Context, q querier, sessionID string, d metrics.DayRecord) error {
	if d.Day < 1 {
		return fmt.Errorf("day number must be positive, got %d", d.Day)
	}
	rules, err := json.Marshal(metrics.NewRuleIndexSet(d.RulesFollowed...))
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO days (session_id, day_number, date, trades, rules_followed)
		VALUES (?, ?, ?, ?, ?)`,
		sessionID, d.Day, d.Date, notation.Format(d.Trades), string(rules),
	)
	if err != nil {
		return fmt.Errorf("day %d: %w", d.Day, err)
	}
	return nil
}

// DeleteDay removes one day and shifts the later days down so numbering
// stays contiguous.
func (j *SQLite) DeleteDay(ctx context.Context, sessionID string, day int) error {
	return j.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM days WHERE session_id = ? AND day_number = ?`, sessionID, day)
		if err != nil {
			return err
		}
		if err := expectRow(res, fmt.Sprintf("day %d", day)); err != nil {
			return err
		}

		// two passes through negative numbers so UNIQUE(session_id, day_number)
		// never sees a transient duplicate
		if _, err := tx.ExecContext(ctx, `
			UPDATE days SET day_number = -(day_number - 1)
			WHERE session_id = ? AND day_number > ?`, sessionID, day); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE days SET day_number = -day_number
			WHERE session_id = ? AND day_number < 0`, sessionID)
		return err
	})
}

func (j *SQLite) SetDayRules(ctx context.Context, sessionID string, day int, rules metrics.RuleIndexSet) error {
	enc, err := json.Marshal(metrics.NewRuleIndexSet(rules...))
	if err != nil {
		return err
	}
	res, err := j.db.ExecContext(ctx, `
		UPDATE days SET rules_followed = ?
		WHERE session_id = ? AND day_number = ?`, string(enc), sessionID, day)
	if err != nil {
		return err
	}
	return expectRow(res, fmt.Sprintf("day %d", day))
}

// ImportDays creates a new session holding days. Days are ordered by their
// day number and renumbered from 1.
func (j *SQLite) ImportDays(ctx context.Context, ns NewSession, days []metrics.DayRecord) (Session, error) {
	sorted := append([]metrics.DayRecord(nil), days...)
	sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].Day < sorted[b].Day })

	var s Session
	err := j.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if s, err = createSession(ctx, tx, ns); err != nil {
			return err
		}
		for i, d := range sorted {
			d.Day = i + 1
			if err := insertDay(ctx, tx, s.ID, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

func (j *SQLite) RecordAnalysis(ctx context.Context, r AnalysisRun) error {
	if r.RunID == "" {
		r.RunID = id.New()
	}
	if r.Created.IsZero() {
		r.Created = time.Now().UTC().Truncate(time.Second)
	}

	var pf sql.NullFloat64
	if !math.IsInf(r.ProfitFactor, 0) {
		pf = sql.NullFloat64{Float64: r.ProfitFactor, Valid: true}
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO analysis_runs
		(run_id, session_id, created, days, trades, wins, losses, win_rate, total_r,
		 profit_factor, expectancy, net_pnl, final_balance, max_dd_pct, max_dd_amount, sharpe, sqn)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.SessionID, r.Created, r.Days, r.Trades, r.Wins, r.Losses, r.WinRate, r.TotalR,
		pf, r.Expectancy, r.NetPnL, r.FinalBalance, r.MaxDDPct, r.MaxDDAmount, r.Sharpe, r.SQN,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func (j *SQLite) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func sessionExists(ctx context.Context, q querier, sessionID string) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return err
}

func expectRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

func encodeRules(rules metrics.RuleSet) (string, error) {
	if rules == nil {
		rules = metrics.RuleSet{}
	}
	b, err := json.Marshal(rules)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
