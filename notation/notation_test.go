package notation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBreakEven(t *testing.T) {
	t.Parallel()

	got, err := Parse("BE")
	require.NoError(t, err)
	assert.Equal(t, []Outcome{{Kind: BreakEven, R: 0}}, got)
}

func TestParseMixedDay(t *testing.T) {
	t.Parallel()

	got, err := Parse("W2R,L1R,BE")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, []Kind{Win, Loss, BreakEven}, []Kind{got[0].Kind, got[1].Kind, got[2].Kind})
	assert.Equal(t, []float64{2, 1, 0}, []float64{got[0].R, got[1].R, got[2].R})
}

func TestParseTokens(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []Outcome
	}{
		{"default magnitude", "W", []Outcome{{Win, 1}}},
		{"default magnitude with R", "LR", []Outcome{{Loss, 1}}},
		{"decimal", "L1.5R", []Outcome{{Loss, 1.5}}},
		{"leading dot", "W.5", []Outcome{{Win, 0.5}}},
		{"trailing dot", "W3.", []Outcome{{Win, 3}}},
		{"lower case", "w2r, be", []Outcome{{Win, 2}, {BreakEven, 0}}},
		{"whitespace everywhere", " W 2 R ,\tL 1 ", []Outcome{{Win, 2}, {Loss, 1}}},
		{"empty tokens skipped", "W2R,,L1R,", []Outcome{{Win, 2}, {Loss, 1}}},
		{"negative sign stripped", "L-2", []Outcome{{Loss, 2}}},
		{"plus sign", "W+1.25R", []Outcome{{Win, 1.25}}},
		{"signed win keeps kind", "W-1", []Outcome{{Win, 1}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	t.Parallel()

	got, err := Parse("  , ,")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		tok  string
		pos  int
	}{
		{"garbage", "garbage", "GARBAGE", 1},
		{"bad second token", "W2R,X1R", "X1R", 2},
		{"trailing junk", "W2RX", "W2RX", 1},
		{"sign only", "W2R,BE,L-", "L-", 3},
		{"dot only", "W.", "W.", 1},
		{"double R", "W2RR", "W2RR", 1},
		{"BE with value", "BE1", "BE1", 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Parse(tt.in)
			assert.Nil(t, got)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidToken))

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.tok, pe.Token)
			assert.Equal(t, tt.pos, pe.Position)
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"W2R,L1R,BE",
		"w, l, be",
		"L-2,W+0.333",
		"W1.125R,L0.5R,BE,BE,W10R",
		"",
	}

	for _, in := range inputs {
		first, err := Parse(in)
		require.NoError(t, err, in)

		second, err := Parse(Format(first))
		require.NoError(t, err, in)
		assert.Equal(t, first, second, in)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	got := Format([]Outcome{{Win, 2}, {Loss, 1.5}, {BreakEven, 0}, {Win, 1}})
	assert.Equal(t, "W2R,L1.5R,BE,W1R", got)
}

func TestSigned(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2.0, Outcome{Win, 2}.Signed())
	assert.Equal(t, -1.5, Outcome{Loss, 1.5}.Signed())
	assert.Equal(t, 0.0, Outcome{BreakEven, 0}.Signed())
}
