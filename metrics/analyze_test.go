package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/rustyeddy/rjournal/notation"
	"github.com/rustyeddy/rjournal/risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultRisk = risk.Config{InitialBalance: 25000, RiskAmount: 250}

func day(t *testing.T, n int, date, trades string, rules ...int) DayRecord {
	t.Helper()
	out, err := notation.Parse(trades)
	require.NoError(t, err)
	return DayRecord{Day: n, Date: date, Trades: out, RulesFollowed: NewRuleIndexSet(rules...)}
}

func analyze(t *testing.T, days ...DayRecord) *Report {
	t.Helper()
	r, err := Analyze(days, defaultRisk)
	require.NoError(t, err)
	return r
}

func TestAnalyzeTwoDays(t *testing.T) {
	t.Parallel()

	r := analyze(t,
		day(t, 1, "2024-01-08", "W2R,L1R"),
		day(t, 2, "2024-01-09", "W1R"),
	)

	require.Len(t, r.Daily, 2)
	d1, d2 := r.Daily[0], r.Daily[1]

	assert.InDelta(t, 1.0, d1.NetR, 1e-9)
	assert.InDelta(t, 250.0, d1.PnL, 1e-9)
	assert.InDelta(t, 25250.0, d1.EndBalance, 1e-9)
	assert.Equal(t, "Monday", d1.DayOfWeek)
	assert.Equal(t, 2, d1.WeekOfMonth)
	assert.Equal(t, 1, d1.Month)
	assert.InDelta(t, 50.0, d1.WinRate, 1e-9)

	assert.InDelta(t, 1.0, d2.NetR, 1e-9)
	assert.InDelta(t, 250.0, d2.PnL, 1e-9)
	assert.InDelta(t, 25500.0, d2.EndBalance, 1e-9)
	assert.InDelta(t, 100.0, d2.WinRate, 1e-9)

	o := r.Overall
	assert.Equal(t, 3, o.TotalTrades)
	assert.Equal(t, 2, o.Wins)
	assert.Equal(t, 1, o.Losses)
	assert.InDelta(t, 2.0, o.TotalR, 1e-9)
	assert.InDelta(t, 200.0/3, o.WinRate, 1e-9)
	assert.InDelta(t, 3.0, o.ProfitFactor, 1e-9)
	assert.InDelta(t, 1.5, o.AvgWinR, 1e-9)
	assert.InDelta(t, 1.0, o.AvgLossR, 1e-9)
	assert.InDelta(t, 1.5, o.RiskReward, 1e-9)
	assert.InDelta(t, 2.0/3, o.Expectancy, 1e-9)
	assert.InDelta(t, 500.0, o.NetPnL, 1e-9)
	assert.InDelta(t, 25500.0, o.FinalBalance, 1e-9)
	assert.Equal(t, 0.0, o.MaxDrawdownAmount)
	assert.Equal(t, 0.0, o.MaxDrawdownPct)
	assert.Equal(t, 2, o.MaxWinStreak)
	assert.Equal(t, 0, o.MaxLossStreak)

	r1, r2 := 250.0/25000, 250.0/25250
	m := (r1 + r2) / 2
	sd := math.Abs(r1-r2) / 2
	assert.InDelta(t, m/sd*math.Sqrt(252), o.Sharpe, 1e-6)

	wantSQN := (2.0 / 3) * math.Sqrt(3) / math.Sqrt(42.0/27)
	assert.InDelta(t, wantSQN, o.SQN, 1e-9)

	assert.Equal(t, []float64{25000, 25250, 25500}, r.Equity)
}

func TestAnalyzeTimeBuckets(t *testing.T) {
	t.Parallel()

	r := analyze(t,
		day(t, 1, "2024-01-08", "W2R,L1R"),
		day(t, 2, "2024-01-09", "W1R"),
		day(t, 3, "2024-01-15", "L1R"),
		day(t, 4, "2024-02-05", "W3R"),
	)

	o := r.Overall
	assert.Len(t, o.WeekdayAvgR, 5)
	assert.InDelta(t, 1.0, o.WeekdayAvgR["Monday"], 1e-9) // (1 - 1 + 3) / 3
	assert.InDelta(t, 1.0, o.WeekdayAvgR["Tuesday"], 1e-9)
	assert.Equal(t, 0.0, o.WeekdayAvgR["Friday"])

	assert.Equal(t, []string{"Week 2", "Week 3"}, WeekKeys(o.WeekAvgR))
	assert.InDelta(t, 5.0/3, o.WeekAvgR["Week 2"], 1e-9) // 1, 1, 3 (Feb 5 2024 is in week 2)
	assert.InDelta(t, -1.0, o.WeekAvgR["Week 3"], 1e-9)

	assert.Equal(t, []string{"January", "February"}, MonthKeys(o.MonthAvgR))
	assert.InDelta(t, 1.0/3, o.MonthAvgR["January"], 1e-9)
	assert.InDelta(t, 3.0, o.MonthAvgR["February"], 1e-9)
}

func TestAnalyzeWeekendAndUnknownDates(t *testing.T) {
	t.Parallel()

	r := analyze(t,
		day(t, 1, "2024-01-06", "W1R"), // Saturday
		day(t, 2, "06/01/2024", "W5R"),
	)

	assert.Equal(t, "Saturday", r.Daily[0].DayOfWeek)
	assert.Equal(t, UnknownWeekday, r.Daily[1].DayOfWeek)
	assert.Equal(t, 0, r.Daily[1].WeekOfMonth)
	assert.Equal(t, 0, r.Daily[1].Month)

	o := r.Overall
	for _, wd := range Weekdays {
		v, ok := o.WeekdayAvgR[wd]
		assert.True(t, ok, wd)
		assert.Equal(t, 0.0, v, wd)
	}
	assert.Equal(t, map[string]float64{"Week 1": 1}, o.WeekAvgR)
	assert.Equal(t, map[string]float64{"January": 1}, o.MonthAvgR)

	// Unknown dates still count toward the totals.
	assert.InDelta(t, 6.0, o.TotalR, 1e-9)
}

func TestAnalyzeSixthWeekNotBucketed(t *testing.T) {
	t.Parallel()

	r := analyze(t, day(t, 1, "2024-12-31", "W1R"))
	assert.Equal(t, 6, r.Daily[0].WeekOfMonth)
	assert.Empty(t, r.Overall.WeekAvgR)
	assert.Equal(t, map[string]float64{"December": 1}, r.Overall.MonthAvgR)
}

func TestAnalyzeEmpty(t *testing.T) {
	t.Parallel()

	r := analyze(t)
	o := r.Overall

	assert.Empty(t, r.Daily)
	assert.Equal(t, []float64{25000}, r.Equity)
	assert.Equal(t, 0.0, o.WinRate)
	assert.Equal(t, 0.0, o.ProfitFactor)
	assert.Equal(t, 0.0, o.RiskReward)
	assert.Equal(t, 0.0, o.Sharpe)
	assert.Equal(t, 0.0, o.SQN)
	assert.InDelta(t, 25000.0, o.FinalBalance, 1e-9)
	assert.Len(t, o.WeekdayAvgR, 5)
	assert.Empty(t, o.WeekAvgR)
	assert.Empty(t, o.MonthAvgR)
}

func TestAnalyzeNoLosses(t *testing.T) {
	t.Parallel()

	r := analyze(t,
		day(t, 1, "2024-01-08", "W2R,BE"),
		day(t, 2, "2024-01-09", "W1R"),
	)
	o := r.Overall

	assert.True(t, math.IsInf(o.ProfitFactor, 1))
	assert.True(t, math.IsInf(o.RiskReward, 1))
	assert.InDelta(t, 100.0, o.WinRate, 1e-9)
	assert.Equal(t, 1, o.BreakEven)
	assert.Equal(t, 0.0, o.AvgLossR)
	assert.InDelta(t, 1.5, o.Expectancy, 1e-9)
}

func TestAnalyzeNoWins(t *testing.T) {
	t.Parallel()

	r := analyze(t,
		day(t, 1, "2024-01-08", "L1R"),
		day(t, 2, "2024-01-09", "L2R"),
	)
	o := r.Overall

	assert.Equal(t, 0.0, o.ProfitFactor)
	assert.Equal(t, 0.0, o.RiskReward)
	assert.Equal(t, 0.0, o.WinRate)
	assert.InDelta(t, -1.5, o.Expectancy, 1e-9)
	assert.Equal(t, 2, o.MaxLossStreak)
	assert.InDelta(t, 750.0, o.MaxDrawdownAmount, 1e-9)
	assert.InDelta(t, 3.0, o.MaxDrawdownPct, 1e-9)
}

func TestAnalyzeBreakEvenOnly(t *testing.T) {
	t.Parallel()

	r := analyze(t, day(t, 1, "2024-01-08", "BE,BE"))
	o := r.Overall

	assert.Equal(t, 2, o.TotalTrades)
	assert.Equal(t, 0.0, o.WinRate)
	assert.Equal(t, 0.0, o.ProfitFactor)
	assert.Equal(t, 0.0, o.RiskReward)
	assert.Equal(t, 0.0, o.Expectancy)
	assert.Equal(t, 0.0, o.SQN)
	assert.Equal(t, 0.0, r.Daily[0].WinRate)
}

func TestAnalyzeFlatDayKeepsStreaks(t *testing.T) {
	t.Parallel()

	r := analyze(t,
		day(t, 1, "2024-01-08", "W1R"),
		day(t, 2, "2024-01-09", "W1R,L1R"),
		day(t, 3, "2024-01-10", "W1R"),
		day(t, 4, "2024-01-11", "L1R"),
		day(t, 5, "2024-01-12", "BE"),
		day(t, 6, "2024-01-15", "L1R"),
	)

	assert.Equal(t, 0.0, r.Daily[1].NetR)
	assert.Equal(t, 2, r.Overall.MaxWinStreak)
	assert.Equal(t, 2, r.Overall.MaxLossStreak)
}

func TestStreakFlatDay(t *testing.T) {
	t.Parallel()

	s := streaks{win: 3, loss: 0, maxWin: 4, maxLoss: 2}
	s.update(0)
	assert.Equal(t, streaks{win: 3, loss: 0, maxWin: 4, maxLoss: 2}, s)

	s.update(-1)
	assert.Equal(t, 0, s.win)
	assert.Equal(t, 1, s.loss)
}

func TestAnalyzeDrawdown(t *testing.T) {
	t.Parallel()

	r := analyze(t,
		day(t, 1, "2024-01-08", "W1R"),
		day(t, 2, "2024-01-09", "L2R"),
		day(t, 3, "2024-01-10", "L1R"),
		day(t, 4, "2024-01-11", "W3R"),
	)

	assert.Equal(t, []float64{25000, 25250, 24750, 24500, 25250}, r.Equity)
	assert.InDelta(t, 750.0, r.Overall.MaxDrawdownAmount, 1e-9)
	assert.InDelta(t, 750.0/25250*100, r.Overall.MaxDrawdownPct, 1e-9)
}

func TestDrawdownPercentFollowsDollarMax(t *testing.T) {
	t.Parallel()

	days := []DayRecord{
		day(t, 1, "2024-01-08", "L2R"),  // 1000 -> 500, 50%
		day(t, 2, "2024-01-09", "W40R"), // -> 10500
		day(t, 3, "2024-01-10", "L4R"),  // -> 9500, $1000
	}
	r, err := Analyze(days, risk.Config{InitialBalance: 1000, RiskAmount: 250})
	require.NoError(t, err)

	assert.InDelta(t, 1000.0, r.Overall.MaxDrawdownAmount, 1e-9)
	assert.InDelta(t, 1000.0/10500*100, r.Overall.MaxDrawdownPct, 1e-9)
}

func TestDrawdownMonotonic(t *testing.T) {
	t.Parallel()

	curve := []float64{100, 120, 90}
	_, prev := drawdown(curve)
	for _, next := range []float64{130, 125, 140, 80, 150, 60} {
		curve = append(curve, next)
		_, amt := drawdown(curve)
		assert.GreaterOrEqual(t, amt, prev)
		prev = amt
	}
	assert.InDelta(t, 90.0, prev, 1e-9)
}

func TestDrawdownNonPositivePeak(t *testing.T) {
	t.Parallel()

	pct, amt := drawdown([]float64{0, -10})
	assert.InDelta(t, 10.0, amt, 1e-9)
	assert.Equal(t, 0.0, pct)
}

func TestSharpeAndSQNDegenerate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, sharpe(nil))
	assert.Equal(t, 0.0, sharpe([]float64{0.01}))
	assert.Equal(t, 0.0, sharpe([]float64{0.5, 0.5, 0.5}))
	assert.Equal(t, 0.0, sqn([]float64{2}))
	assert.Equal(t, 0.0, sqn([]float64{1, 1}))
}

func TestSharpeSkipsNonPositiveBalance(t *testing.T) {
	t.Parallel()

	days := []DayRecord{
		day(t, 1, "2024-01-08", "L2R"), // 1000 -> 0
		day(t, 2, "2024-01-09", "W1R"), // prior balance 0, no sample
	}
	r, err := Analyze(days, risk.Config{InitialBalance: 1000, RiskAmount: 500})
	require.NoError(t, err)

	// A single valid sample is not enough for a ratio.
	assert.Equal(t, 0.0, r.Overall.Sharpe)
	assert.False(t, math.IsNaN(r.Overall.Sharpe))
	assert.InDelta(t, 500.0, r.Overall.FinalBalance, 1e-9)
}

func TestAnalyzeInvalidRisk(t *testing.T) {
	t.Parallel()

	_, err := Analyze(nil, risk.Config{InitialBalance: 0, RiskAmount: 250})
	assert.True(t, errors.Is(err, risk.ErrInvalidConfig))

	_, err = Analyze(nil, risk.Config{InitialBalance: 1000, RiskAmount: -1})
	assert.True(t, errors.Is(err, risk.ErrInvalidConfig))
}

func TestRuleIndexSet(t *testing.T) {
	t.Parallel()

	s := NewRuleIndexSet(3, 1, 3, -1, 0)
	assert.Equal(t, RuleIndexSet{0, 1, 3}, s)
	assert.True(t, s.Contains(3))
	assert.False(t, s.Contains(2))
	assert.Equal(t, 3, s.Len())

	empty := NewRuleIndexSet()
	assert.NotNil(t, empty)
	assert.Equal(t, 0, empty.Len())
}

func TestRuleSetAddRemove(t *testing.T) {
	t.Parallel()

	rs := RuleSet{}.Add("Wait for confirmation").Add(" Max 3 trades ").Add("Wait for confirmation")
	assert.Equal(t, RuleSet{"Wait for confirmation", "Max 3 trades"}, rs)

	rs, err := rs.Remove(0)
	require.NoError(t, err)
	assert.Equal(t, RuleSet{"Max 3 trades"}, rs)

	_, err = rs.Remove(5)
	assert.Error(t, err)
}
