package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/redemptions/internal/schema"
)

// DateOrder is the convention used to read ambiguous numeric dates.
type DateOrder int

const (
	DateOrderUnset DateOrder = iota
	DayFirst
	MonthFirst
)

func (o DateOrder) String() string {
	switch o {
	case DayFirst:
		return "day-first"
	case MonthFirst:
		return "month-first"
	default:
		return "unset"
	}
}

// ParseDateOrder parses a configured tie-break convention.
func ParseDateOrder(s string) (DateOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unset", "none":
		return DateOrderUnset, nil
	case "day-first", "dayfirst", "dmy":
		return DayFirst, nil
	case "month-first", "monthfirst", "mdy":
		return MonthFirst, nil
	default:
		return DateOrderUnset, fmt.Errorf("invalid date order %q: want day-first, month-first or unset", s)
	}
}

// DefaultTwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
const DefaultTwoDigitYearPivot = 20

// isoDateLayout is the rendering of every resolved date.
const isoDateLayout = "2006-01-02"

// Date layouts. Year-first and named-month layouts read the same under both
// conventions; numeric layouts are listed once per convention.
var (
	unambiguousLayouts = []string{
		"2006-1-2", "2006/1/2", "2006.1.2",
		"2006-1-2 15:04", "2006-1-2 15:04:05", "2006-1-2T15:04:05",
		"2006-1-2 15:04:05.999999999", "2006-1-2T15:04:05.999999999",
		time.RFC3339, time.RFC3339Nano,
		"20060102",
		"Jan 2, 2006", "January 2, 2006", "Jan 2 2006", "January 2 2006",
		"2 Jan 2006", "2 January 2006", "2-Jan-2006", "2-January-2006",
	}
	unambiguousShortYearLayouts = []string{
		"2-Jan-06", "2 Jan 06",
	}
	dayFirstLayouts = []string{
		"2/1/2006", "2-1-2006", "2.1.2006",
		"2/1/2006 15:04", "2/1/2006 15:04:05",
		"2-1-2006 15:04", "2-1-2006 15:04:05",
		"2.1.2006 15:04", "2.1.2006 15:04:05",
	}
	dayFirstShortYearLayouts = []string{
		"2/1/06", "2-1-06", "2.1.06",
	}
	monthFirstLayouts = []string{
		"1/2/2006", "1-2-2006", "1.2.2006",
		"1/2/2006 15:04", "1/2/2006 15:04:05",
		"1-2-2006 15:04", "1-2-2006 15:04:05",
		"1.2.2006 15:04", "1.2.2006 15:04:05",
	}
	monthFirstShortYearLayouts = []string{
		"1/2/06", "1-2-06", "1.2.06",
	}
)

// DateDecision records how one date column was resolved.
type DateDecision struct {
	Column          string
	NonNull         int
	DayFirstCount   int
	MonthFirstCount int
	Chosen          DateOrder
	Reason          string // "majority", "tie-break" or "default"
	Nulled          int    // Non-null values that failed under the chosen order
}

// Decision reasons.
const (
	ReasonMajority = "majority"
	ReasonTieBreak = "tie-break"
	ReasonDefault  = "default"
)

// DateResolver disambiguates day-first and month-first dates per column.
type DateResolver struct {
	tieBreak DateOrder
	pivot    int
	now      func() time.Time
}

// NewDateResolver creates a resolver. tieBreak is used when both conventions
// parse the same number of values; DateOrderUnset falls back to day-first.
// A nil now uses time.Now.
func NewDateResolver(tieBreak DateOrder, pivot int, now func() time.Time) *DateResolver {
	if now == nil {
		now = time.Now
	}
	return &DateResolver{tieBreak: tieBreak, pivot: pivot, now: now}
}

// ParseDate parses s as a calendar date under order. The whole string must
// match a layout; there is no partial or guessed result.
func (r *DateResolver) ParseDate(s string, order DateOrder) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	numeric, short := monthFirstLayouts, monthFirstShortYearLayouts
	if order != MonthFirst {
		numeric, short = dayFirstLayouts, dayFirstShortYearLayouts
	}

	// Try 4-digit year layouts first (unambiguous)
	for _, layouts := range [][]string{unambiguousLayouts, numeric} {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}

	// Try 2-digit year layouts with pivot year adjustment
	pivotYear := r.now().Year() + r.pivot
	for _, layouts := range [][]string{unambiguousShortYearLayouts, short} {
		for _, layout := range layouts {
			t, err := time.Parse(layout, s)
			if err != nil {
				continue
			}
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// dateColumn addresses one date-bearing column across all records.
type dateColumn struct {
	name string
	cell func(*Record) *pgtype.Text
}

// dateColumns returns every column whose name mentions a date: the canonical
// redemption_date and any extra whose header contains "date".
func dateColumns(t *CanonicalTable) []dateColumn {
	cols := []dateColumn{{
		name: schema.RedemptionDate.Name(),
		cell: func(r *Record) *pgtype.Text { return &r.RedemptionDate },
	}}
	for i, h := range t.ExtraHeaders {
		if !strings.Contains(strings.ToLower(h), dateMarker) {
			continue
		}
		idx := i
		cols = append(cols, dateColumn{
			name: h,
			cell: func(r *Record) *pgtype.Text { return &r.Extras[idx] },
		})
	}
	return cols
}

// Resolve normalizes every date column of t to ISO text in place and
// returns one decision per column that had at least one value.
func (r *DateResolver) Resolve(t *CanonicalTable) []DateDecision {
	var decisions []DateDecision
	for _, col := range dateColumns(t) {
		if d, ok := r.resolveColumn(t, col); ok {
			decisions = append(decisions, d)
		}
	}
	return decisions
}

func (r *DateResolver) resolveColumn(t *CanonicalTable, col dateColumn) (DateDecision, bool) {
	d := DateDecision{Column: col.name}

	n := len(t.Records)
	dayFirst := make([]time.Time, n)
	monthFirst := make([]time.Time, n)
	dayOK := make([]bool, n)
	monthOK := make([]bool, n)

	for i := range t.Records {
		v := col.cell(&t.Records[i])
		if !v.Valid {
			continue
		}
		d.NonNull++
		if dayFirst[i], dayOK[i] = r.ParseDate(v.String, DayFirst); dayOK[i] {
			d.DayFirstCount++
		}
		if monthFirst[i], monthOK[i] = r.ParseDate(v.String, MonthFirst); monthOK[i] {
			d.MonthFirstCount++
		}
	}
	if d.NonNull == 0 {
		return d, false
	}

	switch {
	case d.DayFirstCount > d.MonthFirstCount:
		d.Chosen, d.Reason = DayFirst, ReasonMajority
	case d.MonthFirstCount > d.DayFirstCount:
		d.Chosen, d.Reason = MonthFirst, ReasonMajority
	case r.tieBreak != DateOrderUnset:
		d.Chosen, d.Reason = r.tieBreak, ReasonTieBreak
	default:
		d.Chosen, d.Reason = DayFirst, ReasonDefault
	}

	parsed, ok := dayFirst, dayOK
	if d.Chosen == MonthFirst {
		parsed, ok = monthFirst, monthOK
	}

	for i := range t.Records {
		v := col.cell(&t.Records[i])
		if !v.Valid {
			continue
		}
		if !ok[i] {
			*v = pgtype.Text{}
			d.Nulled++
			continue
		}
		*v = pgtype.Text{String: parsed[i].Format(isoDateLayout), Valid: true}
	}

	return d, true
}
