// Package rowops holds the small row-level tools used around a normalization
// run: selecting rows by a mask of promotion codes, interleaving offers for
// batch generation and splitting a file into parts.
//
// Every operation keeps the input headers and cells unchanged and only
// selects or reorders rows.
package rowops

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/redemptions/internal/core"
	"github.com/JonMunkholm/redemptions/internal/schema"
)

// DefaultGroupColumn is the column Interleave groups by unless told otherwise.
const DefaultGroupColumn = "offer_name"

// columnIndex returns the position of name in t's headers.
func columnIndex(t core.RawTable, name string) (int, error) {
	for i, h := range t.Headers {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no %s column", name)
}

func cellAt(row []pgtype.Text, i int) pgtype.Text {
	if i < len(row) {
		return row[i]
	}
	return pgtype.Text{}
}

// MatchCodes keeps the rows of src whose promotion_code equals a code in
// mask, ignoring case. Kept rows take the mask's spelling of the code. When
// the mask lists one code in several spellings the last one wins. Null
// codes never match.
func MatchCodes(src, mask core.RawTable) (core.RawTable, error) {
	name := schema.PromotionCode.Name()
	srcCol, err := columnIndex(src, name)
	if err != nil {
		return core.RawTable{}, fmt.Errorf("source: %w", err)
	}
	maskCol, err := columnIndex(mask, name)
	if err != nil {
		return core.RawTable{}, fmt.Errorf("mask: %w", err)
	}

	spelling := make(map[string]string, len(mask.Rows))
	for _, row := range mask.Rows {
		if code := cellAt(row, maskCol); code.Valid {
			spelling[strings.ToLower(code.String)] = code.String
		}
	}

	out := core.RawTable{Headers: src.Headers}
	for _, row := range src.Rows {
		code := cellAt(row, srcCol)
		if !code.Valid {
			continue
		}
		want, ok := spelling[strings.ToLower(code.String)]
		if !ok {
			continue
		}
		kept := make([]pgtype.Text, max(len(row), srcCol+1))
		copy(kept, row)
		kept[srcCol] = pgtype.Text{String: want, Valid: true}
		out.Rows = append(out.Rows, kept)
	}
	return out, nil
}

// Interleave groups rows by column in order of first appearance and emits
// them round-robin: the first row of every group, then the second, and so
// on. Every group must have the same number of rows. Null values form a
// group of their own.
func Interleave(t core.RawTable, column string) (core.RawTable, error) {
	col, err := columnIndex(t, column)
	if err != nil {
		return core.RawTable{}, err
	}

	type group struct {
		key  string
		rows [][]pgtype.Text
	}
	var groups []*group
	index := make(map[pgtype.Text]*group)
	for _, row := range t.Rows {
		key := cellAt(row, col)
		g, ok := index[key]
		if !ok {
			label := key.String
			if !key.Valid {
				label = "<null>"
			}
			g = &group{key: label}
			index[key] = g
			groups = append(groups, g)
		}
		g.rows = append(g.rows, row)
	}

	out := core.RawTable{Headers: t.Headers}
	if len(groups) == 0 {
		return out, nil
	}

	size := len(groups[0].rows)
	for _, g := range groups[1:] {
		if len(g.rows) != size {
			lengths := make([]string, len(groups))
			for i, g := range groups {
				lengths[i] = fmt.Sprintf("%s=%d", g.key, len(g.rows))
			}
			return core.RawTable{}, fmt.Errorf("%s groups have different lengths: %s", column, strings.Join(lengths, ", "))
		}
	}

	out.Rows = make([][]pgtype.Text, 0, len(t.Rows))
	for i := 0; i < size; i++ {
		for _, g := range groups {
			out.Rows = append(out.Rows, g.rows[i])
		}
	}
	return out, nil
}

// Split divides t into parts consecutive tables of ceil(rows/parts) rows.
// Trailing parts may be short or empty; exactly parts tables are returned.
func Split(t core.RawTable, parts int) ([]core.RawTable, error) {
	if parts < 1 {
		return nil, fmt.Errorf("parts must be at least 1, got %d", parts)
	}

	per := (len(t.Rows) + parts - 1) / parts
	out := make([]core.RawTable, parts)
	for i := range out {
		start := min(i*per, len(t.Rows))
		end := min(start+per, len(t.Rows))
		out[i] = core.RawTable{Headers: t.Headers, Rows: t.Rows[start:end]}
	}
	return out, nil
}

// PartPath returns the file name of part i (zero-based) for prefix.
func PartPath(prefix string, i int) string {
	return fmt.Sprintf("%s_part%d.csv", prefix, i+1)
}
