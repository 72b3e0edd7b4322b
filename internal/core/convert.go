package core

// convert.go coerces reconciled cells into their canonical types.
//
// Coercion never fails: a value that cannot be represented in its column's
// type becomes null and is only counted in CoercionStats.
//   - Text columns keep values verbatim unless they are a missing-value artifact
//   - quantity is parsed as a real number and truncated toward zero
//   - sales_value is parsed as an exact decimal and keeps its precision

import (
	"math"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/redemptions/internal/schema"
)

// numericRegex validates that a string is a plain real number.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// textArtifacts are the textual forms a missing value takes after a
// round-trip through other tools.
var textArtifacts = []string{"nan", "<NA>", "None", "NaT"}

// maxExponent bounds the decimal exponent of a parsed number. Comparing or
// rendering 1e999999999 would materialise every digit.
const maxExponent = 64

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// CoercionStats counts values that were changed during coercion.
type CoercionStats struct {
	TextArtifacts     int // Text values replaced by null
	QuantityInvalid   int // Non-null quantities that failed to parse
	QuantityTruncated int // Quantities that lost a fractional part
	SalesValueInvalid int // Non-null sales values that failed to parse
}

// TypeCoercer converts reconciled rows into typed records.
type TypeCoercer struct {
	artifacts map[string]struct{}
}

// NewTypeCoercer creates a coercer. missing lists the placeholder tokens
// that also count as missing in text columns.
func NewTypeCoercer(missing []string) *TypeCoercer {
	set := make(map[string]struct{}, len(missing)+len(textArtifacts))
	for _, tok := range textArtifacts {
		set[tok] = struct{}{}
	}
	for _, tok := range missing {
		set[tok] = struct{}{}
	}
	return &TypeCoercer{artifacts: set}
}

// Coerce converts every row of t. Row count and order are preserved.
func (c *TypeCoercer) Coerce(t ReconciledTable) (*CanonicalTable, CoercionStats) {
	var stats CoercionStats
	out := &CanonicalTable{
		ExtraHeaders: t.ExtraHeaders,
		Records:      make([]Record, len(t.Rows)),
	}

	for i, row := range t.Rows {
		rec := Record{
			RedemptionDate: row.Fields[schema.RedemptionDate],
			Extras:         row.Extras,
		}

		for _, f := range schema.TextFields {
			v, changed := c.ToText(row.Fields[f])
			if changed {
				stats.TextArtifacts++
			}
			*rec.text(f) = v
		}

		qty := row.Fields[schema.Quantity]
		q, truncated := ToQuantity(qty)
		if qty.Valid && !q.Valid {
			stats.QuantityInvalid++
		}
		if truncated {
			stats.QuantityTruncated++
		}
		rec.Quantity = q

		sales := row.Fields[schema.SalesValue]
		rec.SalesValue = ToSalesValue(sales)
		if sales.Valid && !rec.SalesValue.Valid {
			stats.SalesValueInvalid++
		}

		out.Records[i] = rec
	}

	return out, stats
}

// ToText returns v unchanged unless its text is a missing-value artifact, in
// which case it returns null and reports the change.
func (c *TypeCoercer) ToText(v pgtype.Text) (pgtype.Text, bool) {
	if !v.Valid {
		return v, false
	}
	if _, ok := c.artifacts[v.String]; ok {
		return pgtype.Text{}, true
	}
	return v, false
}

// ParseNumber parses a plain real number. Surrounding whitespace is ignored.
// Numbers whose exponent lies outside ±maxExponent are rejected.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if !numericRegex.MatchString(s) {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ToQuantity parses v as a count. Fractional parts are truncated toward zero
// and reported; values outside the int64 range become null.
func ToQuantity(v pgtype.Text) (pgtype.Int8, bool) {
	if !v.Valid {
		return pgtype.Int8{}, false
	}
	d, ok := ParseNumber(v.String)
	if !ok {
		return pgtype.Int8{}, false
	}
	whole := d.Truncate(0)
	if whole.LessThan(minInt64) || whole.GreaterThan(maxInt64) {
		return pgtype.Int8{}, false
	}
	return pgtype.Int8{Int64: whole.IntPart(), Valid: true}, !whole.Equal(d)
}

// ToSalesValue parses v as a currency amount with full precision.
func ToSalesValue(v pgtype.Text) decimal.NullDecimal {
	if !v.Valid {
		return decimal.NullDecimal{}
	}
	d, ok := ParseNumber(v.String)
	if !ok {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// FormatQuantity renders a quantity; null renders as an empty cell.
func FormatQuantity(v pgtype.Int8) string {
	if !v.Valid {
		return ""
	}
	return decimal.NewFromInt(v.Int64).String()
}

// FormatSalesValue renders a sales value with at least one fractional digit
// so whole amounts stay recognisably fractional ("3" renders as "3.0").
func FormatSalesValue(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	s := v.Decimal.String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatText renders a text cell; null renders as an empty cell.
func FormatText(v pgtype.Text) string {
	if !v.Valid {
		return ""
	}
	return v.String
}

// Cells renders r in output column order.
func (r *Record) Cells() []string {
	cells := make([]string, 0, schema.FieldCount+len(r.Extras))
	cells = append(cells,
		FormatText(r.PromotionCode),
		FormatText(r.ProductSKU),
		FormatText(r.ProductEAN),
		FormatText(r.RedemptionDate),
		FormatQuantity(r.Quantity),
		FormatSalesValue(r.SalesValue),
		FormatText(r.Currency),
	)
	for _, e := range r.Extras {
		cells = append(cells, FormatText(e))
	}
	return cells
}
