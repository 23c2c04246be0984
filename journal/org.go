package journal

import (
	"bytes"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/rustyeddy/rjournal/metrics"
	"github.com/rustyeddy/rjournal/notation"
)

// SessionOrg is the data behind an Org-mode session report.
type SessionOrg struct {
	Session   Session
	Days      []metrics.DayRecord
	Report    *metrics.Report
	Adherence *metrics.Adherence // optional
	EquityPNG string             // optional chart link
	Created   time.Time
}

// BucketRow is one line of a calendar breakdown table.
type BucketRow struct {
	Label string
	AvgR  float64
}

func (s SessionOrg) WeekdayRows() []BucketRow {
	return bucketRows(metrics.Weekdays, s.Report.Overall.WeekdayAvgR)
}

func (s SessionOrg) WeekRows() []BucketRow {
	m := s.Report.Overall.WeekAvgR
	return bucketRows(metrics.WeekKeys(m), m)
}

func (s SessionOrg) MonthRows() []BucketRow {
	m := s.Report.Overall.MonthAvgR
	return bucketRows(metrics.MonthKeys(m), m)
}

func bucketRows(keys []string, m map[string]float64) []BucketRow {
	rows := make([]BucketRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, BucketRow{Label: k, AvgR: m[k]})
	}
	return rows
}

var sessionOrgFuncs = template.FuncMap{
	"f2": func(x float64) string { return strconv.FormatFloat(x, 'f', 2, 64) },
	"ratio": func(x float64) string {
		if math.IsInf(x, 1) {
			return "inf"
		}
		return strconv.FormatFloat(x, 'f', 2, 64)
	},
	"trades": notation.Format,
	"rules": func(s metrics.RuleIndexSet) string {
		if len(s) == 0 {
			return "-"
		}
		parts := make([]string, len(s))
		for i, idx := range s {
			parts[i] = strconv.Itoa(idx + 1)
		}
		return strings.Join(parts, " ")
	},
	"inc": func(i int) int { return i + 1 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var sessionOrgTmpl = template.Must(template.New("session").Funcs(sessionOrgFuncs).Parse(SessionOrgTemplate))

// Render writes the Org document to w.
func (s SessionOrg) Render(w io.Writer) error {
	return sessionOrgTmpl.Execute(w, s)
}

// WriteSessionOrg renders the report to path.
func (s SessionOrg) WriteSessionOrg(path string) error {
	buf := new(bytes.Buffer)
	if err := s.Render(buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

const SessionOrgTemplate = `* SESSION: {{.Session.Name}}
:PROPERTIES:
:SESSION_ID:  {{.Session.ID}}
:STARTED:     [{{.Session.CreatedAt.Format "2006-01-02 Mon 15:04"}}]
:START_BAL:   {{f2 .Session.InitialBalance}}
:RISK_PCT:    {{f2 .Session.RiskPercentage}}
:DAYS:        {{len .Days}}
:TRADES:      {{.Report.Overall.TotalTrades}}
:WIN_RATE:    {{f2 .Report.Overall.WinRate}}
:TOTAL_R:     {{f2 .Report.Overall.TotalR}}
:PROFIT_FAC:  {{ratio .Report.Overall.ProfitFactor}}
:END_BAL:     {{f2 .Report.Overall.FinalBalance}}
:MAX_DD_PCT:  {{f2 .Report.Overall.MaxDrawdownPct}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:
{{- if .Session.Notes }}

{{.Session.Notes}}
{{- end }}

** Performance Summary
- Net P/L:          *{{f2 .Report.Overall.NetPnL}}*
- Final Balance:    *{{f2 .Report.Overall.FinalBalance}}*
- Max Drawdown:     *{{f2 .Report.Overall.MaxDrawdownPct}}% ({{f2 .Report.Overall.MaxDrawdownAmount}})*
- Win Rate:         *{{f2 .Report.Overall.WinRate}}%*
- Profit Factor:    *{{ratio .Report.Overall.ProfitFactor}}*
- Risk:Reward:      *{{ratio .Report.Overall.RiskReward}}*
- Expectancy:       *{{f2 .Report.Overall.Expectancy}}R*
- Sharpe:           *{{f2 .Report.Overall.Sharpe}}*
- SQN:              *{{f2 .Report.Overall.SQN}}*
- Streaks:          *{{.Report.Overall.MaxWinStreak}}W / {{.Report.Overall.MaxLossStreak}}L*

** Equity Curve
{{- if .EquityPNG }}
[[file:{{.EquityPNG}}]]
{{- else }}
# (optional) insert an exported equity curve image here
{{- end }}

** Trade Distribution
| Outcome    | Count |
|------------+-------|
| Wins       | {{.Report.Overall.Wins}} |
| Losses     | {{.Report.Overall.Losses}} |
| Break-even | {{.Report.Overall.BreakEven}} |
| Total      | {{.Report.Overall.TotalTrades}} |

** By Weekday
| Day | Avg R |
|-----+-------|
{{- range .WeekdayRows }}
| {{.Label}} | {{f2 .AvgR}} |
{{- end }}
{{- if .WeekRows }}

** By Week of Month
| Week | Avg R |
|------+-------|
{{- range .WeekRows }}
| {{.Label}} | {{f2 .AvgR}} |
{{- end }}
{{- end }}
{{- if .MonthRows }}

** By Month
| Month | Avg R |
|-------+-------|
{{- range .MonthRows }}
| {{.Label}} | {{f2 .AvgR}} |
{{- end }}
{{- end }}
{{- if .Session.Rules }}

** Trading Rules
{{- range $i, $r := .Session.Rules }}
{{inc $i}}. {{$r}}
{{- end }}
{{- end }}
{{- with .Adherence }}
{{- if .Impacts }}

** Rule Impact
| Rule | Followed | Avg R followed | Avg R not followed | Difference |
|------+----------+----------------+--------------------+------------|
{{- range .Impacts }}
| {{.Rule}} | {{.DaysFollowed}} | {{f2 .AvgRFollowed}} | {{f2 .AvgRNotFollowed}} | {{f2 .RDifference}} |
{{- end }}
{{- end }}
{{- if .HasCorrelation }}
- Adherence correlation: {{f2 .Correlation}} ({{.Strength}} {{.Direction}})
{{- end }}
{{- end }}

** Days
| Day | Date | Trades | Net R | Balance | Rules |
|-----+------+--------+-------+---------+-------|
{{- range $i, $d := .Report.Daily }}
| {{$d.Day}} | {{$d.Date}} | {{trades (index $.Days $i).Trades}} | {{f2 $d.NetR}} | {{f2 $d.EndBalance}} | {{rules (index $.Days $i).RulesFollowed}} |
{{- end }}
`
