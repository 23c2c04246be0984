package journal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rjournal/metrics"
)

func testSessionOrg(t *testing.T) SessionOrg {
	t.Helper()

	days := []metrics.DayRecord{
		mustDay(t, 1, "2024-03-04", "W2R,L1R", 0),
		mustDay(t, 2, "2024-03-05", "L1R"),
	}
	rep, err := metrics.Analyze(days, newRisk())
	require.NoError(t, err)

	rules := metrics.RuleSet{"Wait for the retest"}
	adh := metrics.AnalyzeAdherence(days, rep.Daily, rules)

	return SessionOrg{
		Session: Session{
			ID:             "01HT0000000000000000000000",
			Name:           "March",
			CreatedAt:      time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
			InitialBalance: 25000,
			RiskPercentage: 1,
			Notes:          "first month on the new plan",
			Rules:          rules,
		},
		Days:      days,
		Report:    rep,
		Adherence: &adh,
		Created:   time.Date(2024, 3, 8, 17, 0, 0, 0, time.UTC),
	}
}

func TestSessionOrgRender(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	require.NoError(t, testSessionOrg(t).Render(&sb))
	out := sb.String()

	assert.True(t, strings.HasPrefix(out, "* SESSION: March\n"))
	assert.Contains(t, out, ":SESSION_ID:  01HT0000000000000000000000")
	assert.Contains(t, out, ":STARTED:     [2024-03-01 Fri 09:30]")
	assert.Contains(t, out, ":TRADES:      3")
	assert.Contains(t, out, ":PROFIT_FAC:  1.00")
	assert.Contains(t, out, ":CREATED:     [2024-03-08 Fri 17:00]")
	assert.Contains(t, out, "first month on the new plan")
	assert.Contains(t, out, "| Monday | 1.00 |")
	assert.Contains(t, out, "| Tuesday | -1.00 |")
	assert.Contains(t, out, "| Friday | 0.00 |")
	assert.Contains(t, out, "| Week 2 | 0.00 |")
	assert.Contains(t, out, "| March | 0.00 |")
	assert.Contains(t, out, "1. Wait for the retest")
	assert.Contains(t, out, "| Wait for the retest | 1 | 1.00 | 0.00 | 1.00 |")
	assert.Contains(t, out, "| 1 | 2024-03-04 | W2R,L1R | 1.00 | 25250.00 | 1 |")
	assert.Contains(t, out, "| 2 | 2024-03-05 | L1R | -1.00 | 25000.00 | - |")
	assert.Contains(t, out, "# (optional) insert an exported equity curve image here")
}

func TestSessionOrgInfiniteProfitFactor(t *testing.T) {
	t.Parallel()

	org := testSessionOrg(t)
	org.Days = []metrics.DayRecord{mustDay(t, 1, "2024-03-04", "W2R")}
	rep, err := metrics.Analyze(org.Days, newRisk())
	require.NoError(t, err)
	org.Report = rep
	org.Adherence = nil
	org.EquityPNG = "equity.png"

	var sb strings.Builder
	require.NoError(t, org.Render(&sb))

	assert.Contains(t, sb.String(), ":PROFIT_FAC:  inf")
	assert.Contains(t, sb.String(), "[[file:equity.png]]")
	assert.NotContains(t, sb.String(), "** Rule Impact")
}

func TestWriteSessionOrg(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "march.org")
	require.NoError(t, testSessionOrg(t).WriteSessionOrg(path))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "** Performance Summary")
}

func TestSessionOrgRulesColumn(t *testing.T) {
	rules := sessionOrgFuncs["rules"].(func(metrics.RuleIndexSet) string)

	assert.Equal(t, "-", rules(metrics.NewRuleIndexSet()))
	assert.Equal(t, "1", rules(metrics.NewRuleIndexSet(0)))
	assert.Equal(t, "1 3 4", rules(metrics.NewRuleIndexSet(3, 0, 2)))
}
