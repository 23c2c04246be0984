package metrics

import (
	"time"

	"github.com/rustyeddy/rjournal/notation"
	"github.com/rustyeddy/rjournal/risk"
)

type buckets struct {
	weekday map[string][]float64
	week    map[int][]float64
	month   map[int][]float64
}

func newBuckets() *buckets {
	b := &buckets{
		weekday: make(map[string][]float64, len(Weekdays)),
		week:    make(map[int][]float64),
		month:   make(map[int][]float64),
	}
	for _, d := range Weekdays {
		b.weekday[d] = nil
	}
	return b
}

func (b *buckets) add(c calendar, netR float64) {
	if !c.ok {
		return
	}
	if _, ok := b.weekday[c.weekday]; ok {
		b.weekday[c.weekday] = append(b.weekday[c.weekday], netR)
	}
	if c.weekOfMonth >= 1 && c.weekOfMonth <= maxBucketWeek {
		b.week[c.weekOfMonth] = append(b.week[c.weekOfMonth], netR)
	}
	b.month[c.month] = append(b.month[c.month], netR)
}

func (b *buckets) averages() (weekday, week, month map[string]float64) {
	weekday = make(map[string]float64, len(Weekdays))
	for _, d := range Weekdays {
		weekday[d] = mean(b.weekday[d])
	}
	week = make(map[string]float64, len(b.week))
	for n, rs := range b.week {
		week[weekKey(n)] = mean(rs)
	}
	month = make(map[string]float64, len(b.month))
	for m, rs := range b.month {
		month[time.Month(m).String()] = mean(rs)
	}
	return weekday, week, month
}

type streaks struct {
	win, loss       int
	maxWin, maxLoss int
}

// update extends the streak matching netR's sign. A flat day changes nothing.
func (s *streaks) update(netR float64) {
	switch {
	case netR > 0:
		s.win++
		s.loss = 0
		if s.win > s.maxWin {
			s.maxWin = s.win
		}
	case netR < 0:
		s.loss++
		s.win = 0
		if s.loss > s.maxLoss {
			s.maxLoss = s.loss
		}
	}
}

func winRate(wins, losses int) float64 {
	if wins+losses == 0 {
		return 0
	}
	return float64(wins) / float64(wins+losses) * 100
}

// Analyze reduces days, in the order given, into a Report. It only fails
// when rc is invalid; empty or one-sided histories resolve to zero or +Inf
// sentinels.
func Analyze(days []DayRecord, rc risk.Config) (*Report, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}

	var (
		o       OverallMetrics
		daily   = make([]DailyMetrics, 0, len(days))
		equity  = make([]float64, 0, len(days)+1)
		returns []float64
		tradeR  []float64
		st      streaks
		bk      = newBuckets()
	)

	balance := rc.InitialBalance
	equity = append(equity, balance)

	for _, d := range days {
		cal := calendarOf(d.Date)

		dm := DailyMetrics{
			Day:         d.Day,
			Date:        d.Date,
			DayOfWeek:   cal.weekday,
			WeekOfMonth: cal.weekOfMonth,
			Month:       cal.month,
			Trades:      len(d.Trades),
		}

		for _, t := range d.Trades {
			switch t.Kind {
			case notation.Win:
				dm.Wins++
				dm.RWon += t.R
			case notation.Loss:
				dm.Losses++
				dm.RLost += t.R
			default:
				dm.BreakEven++
			}
			tradeR = append(tradeR, t.Signed())
		}
		dm.NetR = dm.RWon - dm.RLost
		dm.WinRate = winRate(dm.Wins, dm.Losses)
		dm.PnL = rc.PnL(dm.NetR)

		before := balance
		balance += dm.PnL
		dm.EndBalance = balance

		if before > 0 {
			returns = append(returns, dm.PnL/before)
		}

		st.update(dm.NetR)
		bk.add(cal, dm.NetR)

		equity = append(equity, balance)
		daily = append(daily, dm)

		o.TotalTrades += dm.Trades
		o.Wins += dm.Wins
		o.Losses += dm.Losses
		o.BreakEven += dm.BreakEven
		o.RWon += dm.RWon
		o.RLost += dm.RLost
	}

	o.WinRate = winRate(o.Wins, o.Losses)
	o.TotalR = o.RWon - o.RLost
	o.ProfitFactor = ratio(o.RWon, o.RLost)

	if o.Wins > 0 {
		o.AvgWinR = o.RWon / float64(o.Wins)
	}
	if o.Losses > 0 {
		o.AvgLossR = o.RLost / float64(o.Losses)
	}
	o.RiskReward = ratio(o.AvgWinR, o.AvgLossR)
	o.Expectancy = o.WinRate/100*o.AvgWinR - (100-o.WinRate)/100*o.AvgLossR

	o.NetPnL = rc.PnL(o.TotalR)
	o.FinalBalance = balance
	o.MaxDrawdownPct, o.MaxDrawdownAmount = drawdown(equity)
	o.MaxWinStreak, o.MaxLossStreak = st.maxWin, st.maxLoss
	o.Sharpe = sharpe(returns)
	o.SQN = sqn(tradeR)
	o.WeekdayAvgR, o.WeekAvgR, o.MonthAvgR = bk.averages()

	return &Report{Overall: o, Daily: daily, Equity: equity}, nil
}
