// Package metrics reduces a session's trading days into per-day and overall
// performance statistics.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/rjournal/notation"
)

// UnknownWeekday is the day-of-week reported for a day whose date does not parse.
const UnknownWeekday = "Unknown"

// Weekdays are the keys always present in OverallMetrics.WeekdayAvgR, in order.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// RuleIndexSet is a sorted set of positions in a session's RuleSet.
// The zero value is an empty set.
type RuleIndexSet []int

// NewRuleIndexSet sorts and de-duplicates idx, dropping negative values.
func NewRuleIndexSet(idx ...int) RuleIndexSet {
	set := RuleIndexSet{}
	seen := make(map[int]bool, len(idx))
	for _, i := range idx {
		if i < 0 || seen[i] {
			continue
		}
		seen[i] = true
		set = append(set, i)
	}
	sort.Ints(set)
	return set
}

func (s RuleIndexSet) Contains(i int) bool {
	n := sort.SearchInts(s, i)
	return n < len(s) && s[n] == i
}

func (s RuleIndexSet) Len() int { return len(s) }

// RuleSet is the ordered list of trading rule texts for a session.
type RuleSet []string

// Add appends rule unless an identical rule already exists.
func (rs RuleSet) Add(rule string) RuleSet {
	rule = strings.TrimSpace(rule)
	if rule == "" {
		return rs
	}
	for _, r := range rs {
		if r == rule {
			return rs
		}
	}
	return append(append(RuleSet{}, rs...), rule)
}

// Remove drops the rule at i. Later rules shift down by one, so indices
// recorded on historical days will point at different rules afterwards.
func (rs RuleSet) Remove(i int) (RuleSet, error) {
	if i < 0 || i >= len(rs) {
		return rs, fmt.Errorf("rule %d out of range (have %d)", i+1, len(rs))
	}
	out := make(RuleSet, 0, len(rs)-1)
	out = append(out, rs[:i]...)
	return append(out, rs[i+1:]...), nil
}

// DayRecord is one trading day. Days are ordered by Day; Date only drives
// calendar bucketing.
type DayRecord struct {
	Day           int
	Date          string
	Trades        []notation.Outcome
	RulesFollowed RuleIndexSet
}

// DailyMetrics is the result for one DayRecord.
type DailyMetrics struct {
	Day         int
	Date        string
	DayOfWeek   string
	WeekOfMonth int // 1-6, 0 when the date is unknown
	Month       int // 1-12, 0 when the date is unknown

	Trades    int
	Wins      int
	Losses    int
	BreakEven int

	RWon    float64
	RLost   float64 // positive magnitude
	NetR    float64
	WinRate float64 // percent, break-even trades excluded

	PnL        float64
	EndBalance float64
}

// OverallMetrics aggregates the whole history. ProfitFactor and RiskReward
// are +Inf when their denominator is zero and numerator positive.
// A history with no decided trades gives 0 for both.
type OverallMetrics struct {
	TotalTrades int
	Wins        int
	Losses      int
	BreakEven   int

	WinRate      float64
	TotalR       float64
	RWon         float64
	RLost        float64
	ProfitFactor float64
	AvgWinR      float64
	AvgLossR     float64
	RiskReward   float64
	Expectancy   float64

	NetPnL       float64
	FinalBalance float64

	MaxDrawdownPct    float64
	MaxDrawdownAmount float64

	MaxWinStreak  int
	MaxLossStreak int

	Sharpe float64
	SQN    float64

	WeekdayAvgR map[string]float64 // always Monday..Friday
	WeekAvgR    map[string]float64 // "Week 1".."Week 5", observed only
	MonthAvgR   map[string]float64 // "January".., observed only
}

// Report is the output of Analyze. Equity starts with the initial balance
// and has one point per day after it.
type Report struct {
	Overall OverallMetrics
	Daily   []DailyMetrics
	Equity  []float64
}
