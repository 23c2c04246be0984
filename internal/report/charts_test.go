package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rjournal/metrics"
)

var pngMagic = []byte("\x89PNG")

func TestEquityChart(t *testing.T) {
	t.Parallel()

	buf, err := EquityChart("Q1 equity", testReport(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf, pngMagic))
}

func TestEquityChartFlat(t *testing.T) {
	t.Parallel()

	rep, err := metrics.Analyze([]metrics.DayRecord{{Day: 1, Date: "2024-03-04"}}, testRisk)
	require.NoError(t, err)

	buf, err := EquityChart("flat", rep)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf, pngMagic))
}

func TestEquityChartNoData(t *testing.T) {
	t.Parallel()

	rep, err := metrics.Analyze(nil, testRisk)
	require.NoError(t, err)

	_, err = EquityChart("empty", rep)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestOutcomeChart(t *testing.T) {
	t.Parallel()

	buf, err := OutcomeChart("Q1 outcomes", testReport(t).Overall)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf, pngMagic))

	_, err = OutcomeChart("none", metrics.OverallMetrics{})
	assert.ErrorIs(t, err, ErrNoData)
}
