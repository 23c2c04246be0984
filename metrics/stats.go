package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// tradingDays annualises daily Sharpe.
const tradingDays = 252

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// sharpe is mean/stddev*sqrt(252) over daily returns using the population
// standard deviation. Fewer than two samples or zero deviation give 0.
func sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	m, sd := stat.PopMeanStdDev(returns, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return m / sd * math.Sqrt(tradingDays)
}

// sqn is Van Tharp's System Quality Number over per-trade R.
func sqn(rs []float64) float64 {
	if len(rs) < 2 {
		return 0
	}
	m, sd := stat.PopMeanStdDev(rs, nil)
	if sd == 0 || math.IsNaN(sd) {
		return 0
	}
	return m * math.Sqrt(float64(len(rs))) / sd
}

// ratio divides with the journal's conventions for a zero denominator:
// +Inf for a positive numerator, 0 otherwise.
func ratio(num, den float64) float64 {
	if den == 0 {
		if num > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return num / den
}

// drawdown walks an equity curve and returns the largest peak-to-trough
// dollar decline along with the percentage of the peak at that point.
func drawdown(equity []float64) (pct, amount float64) {
	if len(equity) < 2 {
		return 0, 0
	}
	peak := equity[0]
	for _, e := range equity[1:] {
		if e > peak {
			peak = e
		}
		dd := peak - e
		if dd > amount {
			amount = dd
			pct = 0
			if peak > 0 {
				pct = dd / peak * 100
			}
		}
	}
	return pct, amount
}

// correlation is Pearson's r, NaN when either series has no variance.
func correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}
