package core

import (
	"time"

	"github.com/JonMunkholm/redemptions/internal/schema"
)

// Options configures a Pipeline.
type Options struct {
	FuzzyCutoff       float64          // Minimum similarity for a fuzzy header match
	Scorer            Scorer           // Similarity function; nil selects GestaltScorer
	DateTieBreak      DateOrder        // Convention used when both parse equally well
	TwoDigitYearPivot int              // See DefaultTwoDigitYearPivot
	MissingTokens     []string         // Placeholders that also count as missing in text columns
	Now               func() time.Time // Clock for 2-digit years; nil uses time.Now
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		FuzzyCutoff:       DefaultFuzzyCutoff,
		Scorer:            GestaltScorer{},
		TwoDigitYearPivot: DefaultTwoDigitYearPivot,
	}
}

// Report describes what the pipeline did to one table. It is diagnostic
// output only and never influences processing.
type Report struct {
	RowsRead    int
	RowsWritten int
	RowsRemoved int
	Matches     []HeaderMatch
	Missing     []schema.Field
	Dropped     []HeaderMatch
	Extras      []string
	Coercion    CoercionStats
	Dates       []DateDecision
}

// Pipeline normalizes raw tables into the canonical schema. It holds no
// per-table state, so one Pipeline can process any number of tables.
type Pipeline struct {
	matcher *HeaderMatcher
	coercer *TypeCoercer
	dates   *DateResolver
}

// New creates a pipeline from opts.
func New(opts Options) *Pipeline {
	return &Pipeline{
		matcher: NewHeaderMatcher(opts.FuzzyCutoff, opts.Scorer),
		coercer: NewTypeCoercer(opts.MissingTokens),
		dates:   NewDateResolver(opts.DateTieBreak, opts.TwoDigitYearPivot, opts.Now),
	}
}

// Run matches headers, reconciles columns, coerces types, resolves dates and
// prunes empty rows, strictly in that order. Bad input degrades to nulls;
// Run never fails.
func (p *Pipeline) Run(raw RawTable) (*CanonicalTable, *Report) {
	report := &Report{RowsRead: len(raw.Rows)}

	report.Matches = p.matcher.Match(raw.Headers)

	reconciled := Reconcile(raw, report.Matches)
	report.Missing = reconciled.Missing
	report.Dropped = reconciled.Dropped
	report.Extras = reconciled.ExtraHeaders

	table, stats := p.coercer.Coerce(reconciled)
	report.Coercion = stats

	report.Dates = p.dates.Resolve(table)

	report.RowsRemoved = Prune(table)
	report.RowsWritten = len(table.Records)

	return table, report
}
