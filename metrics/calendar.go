package metrics

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// maxBucketWeek is the last week-of-month that is bucketed. A 31 day month
// starting on a Sunday reaches week 6; those days are reported but not bucketed.
const maxBucketWeek = 5

type calendar struct {
	weekday     string
	weekOfMonth int
	month       int
	ok          bool
}

func calendarOf(date string) calendar {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return calendar{weekday: UnknownWeekday}
	}
	return calendar{
		weekday:     t.Weekday().String(),
		weekOfMonth: weekOfMonth(t),
		month:       int(t.Month()),
		ok:          true,
	}
}

// weekOfMonth counts Monday-started weeks, the first week being the one
// containing the 1st: ceil((day + mondayIndexOfFirst) / 7).
func weekOfMonth(t time.Time) int {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	return (t.Day()+offset-1)/7 + 1
}

func weekKey(n int) string {
	return fmt.Sprintf("Week %d", n)
}

// WeekKeys returns the keys of a week-of-month map in week order.
func WeekKeys(m map[string]float64) []string {
	var keys []string
	for n := 1; n <= maxBucketWeek; n++ {
		if _, ok := m[weekKey(n)]; ok {
			keys = append(keys, weekKey(n))
		}
	}
	return keys
}

// MonthKeys returns the keys of a month map in calendar order.
func MonthKeys(m map[string]float64) []string {
	var keys []string
	for mo := time.January; mo <= time.December; mo++ {
		if _, ok := m[mo.String()]; ok {
			keys = append(keys, mo.String())
		}
	}
	return keys
}
