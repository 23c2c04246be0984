// Package journal persists trading sessions and exchanges them as CSV and
// Org-mode documents.
package journal

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rustyeddy/rjournal/metrics"
	"github.com/rustyeddy/rjournal/pkg/id"
	"github.com/rustyeddy/rjournal/risk"
)

// ErrNotFound is returned when a session or day does not exist.
var ErrNotFound = errors.New("not found")

// Session is one journal of trading days sharing an account and rule set.
type Session struct {
	ID             string
	Name           string
	CreatedAt      time.Time
	InitialBalance float64
	RiskPercentage float64 // 1 means 1% of the initial balance per R
	Notes          string
	Rules          metrics.RuleSet
}

// Risk derives the analysis risk config from the session settings.
func (s Session) Risk() risk.Config {
	return risk.FromPercent(s.InitialBalance, s.RiskPercentage)
}

// NewSession holds the fields supplied when a session is created.
type NewSession struct {
	Name           string
	InitialBalance float64
	RiskPercentage float64
	Notes          string
	Rules          metrics.RuleSet
}

// SessionUpdate changes only the non-nil fields.
type SessionUpdate struct {
	Name           *string
	InitialBalance *float64
	RiskPercentage *float64
	Notes          *string
	Rules          *metrics.RuleSet
}

// AnalysisRun is a stored snapshot of one analysis of a session.
type AnalysisRun struct {
	RunID     string
	SessionID string
	Created   time.Time

	Days   int
	Trades int
	Wins   int
	Losses int

	WinRate      float64
	TotalR       float64
	ProfitFactor float64 // +Inf when nothing was lost
	Expectancy   float64
	NetPnL       float64
	FinalBalance float64
	MaxDDPct     float64
	MaxDDAmount  float64
	Sharpe       float64
	SQN          float64
}

// NewAnalysisRun snapshots the headline numbers of r.
func NewAnalysisRun(sessionID string, r *metrics.Report) AnalysisRun {
	o := r.Overall
	return AnalysisRun{
		RunID:        id.New(),
		SessionID:    sessionID,
		Created:      time.Now().UTC().Truncate(time.Second),
		Days:         len(r.Daily),
		Trades:       o.TotalTrades,
		Wins:         o.Wins,
		Losses:       o.Losses,
		WinRate:      o.WinRate,
		TotalR:       o.TotalR,
		ProfitFactor: o.ProfitFactor,
		Expectancy:   o.Expectancy,
		NetPnL:       o.NetPnL,
		FinalBalance: o.FinalBalance,
		MaxDDPct:     o.MaxDrawdownPct,
		MaxDDAmount:  o.MaxDrawdownAmount,
		Sharpe:       o.Sharpe,
		SQN:          o.SQN,
	}
}

// Store is the persistence surface the CLI works against.
type Store interface {
	CreateSession(ctx context.Context, ns NewSession) (Session, error)
	ListSessions(ctx context.Context) ([]Session, error)
	GetSession(ctx context.Context, sessionID string) (Session, error)
	UpdateSession(ctx context.Context, sessionID string, u SessionUpdate) (Session, error)
	DeleteSession(ctx context.Context, sessionID string) error

	GetRules(ctx context.Context, sessionID string) (metrics.RuleSet, error)
	SetRules(ctx context.Context, sessionID string, rules metrics.RuleSet) error

	AddDay(ctx context.Context, sessionID string, d metrics.DayRecord) (metrics.DayRecord, error)
	ListDays(ctx context.Context, sessionID string) ([]metrics.DayRecord, error)
	DeleteDay(ctx context.Context, sessionID string, day int) error
	SetDayRules(ctx context.Context, sessionID string, day int, rules metrics.RuleIndexSet) error
	ImportDays(ctx context.Context, ns NewSession, days []metrics.DayRecord) (Session, error)

	RecordAnalysis(ctx context.Context, run AnalysisRun) error
	ListAnalyses(ctx context.Context, sessionID string) ([]AnalysisRun, error)

	Close() error
}

func validateNewSession(ns NewSession) error {
	if ns.Name == "" {
		return errors.New("session name is required")
	}
	if !(ns.InitialBalance > 0) || math.IsInf(ns.InitialBalance, 0) {
		return errors.New("initial balance must be positive")
	}
	if !(ns.RiskPercentage > 0) || ns.RiskPercentage > 100 {
		return errors.New("risk percentage must be in (0, 100]")
	}
	return nil
}
