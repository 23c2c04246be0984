package metrics

import (
	"math"
	"sort"
)

// AdherenceDay pairs the share of rules followed on a day with its result.
type AdherenceDay struct {
	Day           int
	Date          string
	RulesFollowed int
	TotalRules    int
	Percent       float64
	NetR          float64
}

// RuleImpact compares days a rule was followed against days it was not.
type RuleImpact struct {
	Index int
	Rule  string

	DaysFollowed    int
	DaysNotFollowed int

	AvgRFollowed    float64
	AvgRNotFollowed float64

	WinRateFollowed    float64
	WinRateNotFollowed float64

	RDifference float64
}

// Adherence is the result of AnalyzeAdherence. Impacts are sorted by
// RDifference, largest first.
type Adherence struct {
	Days []AdherenceDay

	HasCorrelation bool
	Correlation    float64

	Impacts      []RuleImpact
	MostValuable *RuleImpact
	MostHarmful  *RuleImpact
}

// Strength describes |Correlation| in words.
func (a Adherence) Strength() string {
	c := math.Abs(a.Correlation)
	switch {
	case c < 0.2:
		return "very weak"
	case c < 0.4:
		return "weak"
	case c < 0.6:
		return "moderate"
	case c < 0.8:
		return "strong"
	default:
		return "very strong"
	}
}

// Direction is "positive" when following rules goes with better days.
func (a Adherence) Direction() string {
	if a.Correlation > 0 {
		return "positive"
	}
	return "negative"
}

type impactAcc struct {
	wins, losses int
	r            float64
	count        int
}

func (a impactAcc) avgR() float64 {
	if a.count == 0 {
		return 0
	}
	return a.r / float64(a.count)
}

// AnalyzeAdherence relates the rules recorded on each day to that day's
// result. daily must come from Analyze over the same days. Only days that
// recorded at least one rule take part.
func AnalyzeAdherence(days []DayRecord, daily []DailyMetrics, rules RuleSet) Adherence {
	var a Adherence
	if len(rules) == 0 {
		return a
	}

	followed := make([]impactAcc, len(rules))
	skipped := make([]impactAcc, len(rules))

	for i, d := range days {
		if d.RulesFollowed.Len() == 0 || i >= len(daily) {
			continue
		}
		dm := daily[i]

		a.Days = append(a.Days, AdherenceDay{
			Day:           d.Day,
			Date:          d.Date,
			RulesFollowed: d.RulesFollowed.Len(),
			TotalRules:    len(rules),
			Percent:       float64(d.RulesFollowed.Len()) / float64(len(rules)) * 100,
			NetR:          dm.NetR,
		})

		for ri := range rules {
			acc := &skipped[ri]
			if d.RulesFollowed.Contains(ri) {
				acc = &followed[ri]
			}
			acc.r += dm.NetR
			acc.wins += dm.Wins
			acc.losses += dm.Losses
			acc.count++
		}
	}

	if len(a.Days) == 0 {
		return a
	}

	if len(a.Days) > 1 {
		pct := make([]float64, len(a.Days))
		net := make([]float64, len(a.Days))
		for i, d := range a.Days {
			pct[i], net[i] = d.Percent, d.NetR
		}
		if c := correlation(pct, net); !math.IsNaN(c) {
			a.Correlation = c
			a.HasCorrelation = true
		}
	}

	for ri, text := range rules {
		f, s := followed[ri], skipped[ri]
		a.Impacts = append(a.Impacts, RuleImpact{
			Index:              ri,
			Rule:               text,
			DaysFollowed:       f.count,
			DaysNotFollowed:    s.count,
			AvgRFollowed:       f.avgR(),
			AvgRNotFollowed:    s.avgR(),
			WinRateFollowed:    winRate(f.wins, f.losses),
			WinRateNotFollowed: winRate(s.wins, s.losses),
			RDifference:        f.avgR() - s.avgR(),
		})
	}
	sort.SliceStable(a.Impacts, func(i, j int) bool {
		return a.Impacts[i].RDifference > a.Impacts[j].RDifference
	})

	if top := a.Impacts[0]; top.RDifference > 0 {
		a.MostValuable = &a.Impacts[0]
	}
	if last := a.Impacts[len(a.Impacts)-1]; last.RDifference < 0 {
		a.MostHarmful = &a.Impacts[len(a.Impacts)-1]
	}
	return a
}
