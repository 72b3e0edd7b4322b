package core

import (
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/redemptions/internal/schema"
)

// Reconcile rearranges raw columns into canonical order.
//
// When several raw headers resolve to the same canonical field the last one
// wins and the others are reported in Dropped. Canonical fields with no
// source column are filled with nulls. Unmatched columns are appended as
// extras, keeping their header text and relative order. The row count never
// changes.
func Reconcile(raw RawTable, matches []HeaderMatch) ReconciledTable {
	var source [schema.FieldCount]int
	for f := range source {
		source[f] = -1
	}

	var extras []int
	out := ReconciledTable{}

	for i, m := range matches {
		if !m.Matched() {
			extras = append(extras, i)
			out.ExtraHeaders = append(out.ExtraHeaders, m.Raw)
			continue
		}
		if prev := source[m.Field]; prev >= 0 {
			out.Dropped = append(out.Dropped, matches[prev])
		}
		source[m.Field] = i
	}

	for f, idx := range source {
		if idx < 0 {
			out.Missing = append(out.Missing, schema.Field(f))
		}
	}

	out.Rows = make([]ReconciledRow, len(raw.Rows))
	for r, row := range raw.Rows {
		var rec ReconciledRow
		for f, idx := range source {
			rec.Fields[f] = cellAt(row, idx)
		}
		if len(extras) > 0 {
			rec.Extras = make([]pgtype.Text, len(extras))
			for e, idx := range extras {
				rec.Extras[e] = cellAt(row, idx)
			}
		}
		out.Rows[r] = rec
	}

	return out
}

// cellAt returns row[idx], or null when idx is out of range.
func cellAt(row []pgtype.Text, idx int) pgtype.Text {
	if idx < 0 || idx >= len(row) {
		return pgtype.Text{}
	}
	return row[idx]
}
