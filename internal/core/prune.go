package core

import "github.com/JonMunkholm/redemptions/internal/schema"

// IsEmpty reports whether r carries no redemption data: every text field is
// null and every numeric field is null or zero. Dates and extras are ignored.
func (r *Record) IsEmpty() bool {
	for _, f := range schema.TextFields {
		if r.text(f).Valid {
			return false
		}
	}
	if r.Quantity.Valid && r.Quantity.Int64 != 0 {
		return false
	}
	if r.SalesValue.Valid && !r.SalesValue.Decimal.IsZero() {
		return false
	}
	return true
}

// Prune removes empty records from t in place, keeping the relative order of
// the rest, and returns how many were removed.
func Prune(t *CanonicalTable) int {
	kept := t.Records[:0]
	for _, rec := range t.Records {
		if !rec.IsEmpty() {
			kept = append(kept, rec)
		}
	}
	removed := len(t.Records) - len(kept)
	t.Records = kept
	return removed
}
