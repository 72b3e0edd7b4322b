package core

import "github.com/jackc/pgx/v5/pgtype"

// txt returns a non-null text cell.
func txt(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

// null is a null cell.
var null = pgtype.Text{}

// rawRows builds raw rows from strings; "\x00" marks a null cell.
func rawRows(rows ...[]string) [][]pgtype.Text {
	out := make([][]pgtype.Text, len(rows))
	for i, row := range rows {
		out[i] = make([]pgtype.Text, len(row))
		for j, v := range row {
			if v == "\x00" {
				continue
			}
			out[i][j] = txt(v)
		}
	}
	return out
}

// toRaw turns a normalized table back into raw input the way a reader would:
// empty cells are null.
func toRaw(t *CanonicalTable) RawTable {
	raw := RawTable{Headers: t.Header()}
	for i := range t.Records {
		cells := t.Records[i].Cells()
		row := make([]pgtype.Text, len(cells))
		for j, c := range cells {
			if c != "" {
				row[j] = txt(c)
			}
		}
		raw.Rows = append(raw.Rows, row)
	}
	return raw
}

// cellsOf renders every record of t.
func cellsOf(t *CanonicalTable) [][]string {
	out := make([][]string, len(t.Records))
	for i := range t.Records {
		out[i] = t.Records[i].Cells()
	}
	return out
}
