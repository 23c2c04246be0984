// Package notation parses and formats the compact trade notation used to
// record a trading day, e.g. "W2R, L1R, BE".
package notation

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Kind is the outcome class of a single trade.
type Kind int

const (
	Win Kind = iota
	Loss
	BreakEven
)

func (k Kind) String() string {
	switch k {
	case Win:
		return "W"
	case Loss:
		return "L"
	case BreakEven:
		return "BE"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is one executed trade. R is always a non-negative magnitude;
// the sign is carried by Kind.
type Outcome struct {
	Kind Kind
	R    float64
}

// Signed returns R with the sign implied by Kind.
func (o Outcome) Signed() float64 {
	switch o.Kind {
	case Win:
		return o.R
	case Loss:
		return -o.R
	default:
		return 0
	}
}

// ErrInvalidToken is matched by every *ParseError.
var ErrInvalidToken = errors.New("invalid trade token")

// ParseError reports the first token that did not match the grammar.
type ParseError struct {
	Token    string
	Position int // 1-based index among non-empty tokens
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trade %d: %q: %v (want W<r>R, L<r>R or BE)", e.Position, e.Token, ErrInvalidToken)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidToken
}

var tokenRE = regexp.MustCompile(`^([WL])([+-]?\d*\.?\d*)R?$`)

// Parse converts a line like "W2R,L1.5R,BE,W" into outcomes. Whitespace and
// case are ignored and empty tokens are skipped. A single malformed token
// fails the whole line and no outcomes are returned.
func Parse(text string) ([]Outcome, error) {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, text)

	var out []Outcome
	pos := 0
	for _, tok := range strings.Split(clean, ",") {
		if tok == "" {
			continue
		}
		pos++

		o, ok := parseToken(tok)
		if !ok {
			return nil, &ParseError{Token: tok, Position: pos}
		}
		out = append(out, o)
	}
	return out, nil
}

func parseToken(tok string) (Outcome, bool) {
	if tok == "BE" {
		return Outcome{Kind: BreakEven}, true
	}

	m := tokenRE.FindStringSubmatch(tok)
	if m == nil {
		return Outcome{}, false
	}

	kind := Win
	if m[1] == "L" {
		kind = Loss
	}

	if m[2] == "" {
		return Outcome{Kind: kind, R: 1.0}, true
	}

	// "+", "-" and "." match the pattern but carry no number.
	r, err := strconv.ParseFloat(m[2], 64)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return Outcome{}, false
	}
	return Outcome{Kind: kind, R: math.Abs(r)}, true
}

// FormatOutcome renders a single outcome as a token Parse accepts.
func FormatOutcome(o Outcome) string {
	if o.Kind == BreakEven {
		return "BE"
	}
	return o.Kind.String() + strconv.FormatFloat(math.Abs(o.R), 'f', -1, 64) + "R"
}

// Format renders outcomes as a comma separated line, the inverse of Parse.
func Format(outcomes []Outcome) string {
	toks := make([]string, len(outcomes))
	for i, o := range outcomes {
		toks[i] = FormatOutcome(o)
	}
	return strings.Join(toks, ",")
}
