package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rustyeddy/rjournal/metrics"
	"github.com/rustyeddy/rjournal/notation"
)

var csvHeader = []string{"Day", "Date", "Trades", "Rules"}

// CSVResult is what ReadDays recovered from a file.
type CSVResult struct {
	Days    []metrics.DayRecord
	Skipped int // malformed rows that were dropped
}

// WriteDays writes days as Day,Date,Trades,Rules rows with a header.
func WriteDays(w io.Writer, days []metrics.DayRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range days {
		err := cw.Write([]string{
			strconv.Itoa(d.Day),
			d.Date,
			notation.Format(d.Trades),
			formatRules(d.RulesFollowed),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadDays reads rows written by WriteDays. Three column rows without the
// Rules field are accepted. Rows with another column count or with trades
// that do not parse are counted in Skipped; a day number that is not an
// integer fails the read.
func ReadDays(r io.Reader) (CSVResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var res CSVResult
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return CSVResult{}, err
		}
		if line == 1 && len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "day") {
			continue
		}
		if len(rec) != 3 && len(rec) != 4 {
			res.Skipped++
			continue
		}

		day, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			return CSVResult{}, fmt.Errorf("line %d: day number %q: %w", line, rec[0], err)
		}

		trades, err := notation.Parse(rec[2])
		if err != nil || len(trades) == 0 {
			res.Skipped++
			continue
		}

		var rules metrics.RuleIndexSet
		if len(rec) == 4 {
			if rules, err = parseRules(rec[3]); err != nil {
				res.Skipped++
				continue
			}
		} else {
			rules = metrics.NewRuleIndexSet()
		}

		res.Days = append(res.Days, metrics.DayRecord{
			Day:           day,
			Date:          strings.TrimSpace(rec[1]),
			Trades:        trades,
			RulesFollowed: rules,
		})
	}
	return res, nil
}

func SaveCSV(path string, days []metrics.DayRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteDays(f, days); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func LoadCSV(path string) (CSVResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return CSVResult{}, err
	}
	defer f.Close()
	return ReadDays(f)
}

func formatRules(s metrics.RuleIndexSet) string {
	parts := make([]string, len(s))
	for i, idx := range s {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ";")
}

func parseRules(field string) (metrics.RuleIndexSet, error) {
	var idx []int
	for _, p := range strings.Split(field, ";") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("rule index %q", p)
		}
		idx = append(idx, n)
	}
	return metrics.NewRuleIndexSet(idx...), nil
}
