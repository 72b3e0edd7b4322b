package rowops

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/redemptions/internal/core"
)

func txt(s string) pgtype.Text { return pgtype.Text{String: s, Valid: true} }

// table builds a RawTable; "\x00" marks a null cell.
func table(headers []string, rows ...[]string) core.RawTable {
	t := core.RawTable{Headers: headers}
	for _, row := range rows {
		cells := make([]pgtype.Text, len(row))
		for i, v := range row {
			if v != "\x00" {
				cells[i] = txt(v)
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func column(t core.RawTable, col int) []string {
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = core.FormatText(row[col])
	}
	return out
}

// ----------------------------------------------------------------------------
// MatchCodes Tests
// ----------------------------------------------------------------------------

func TestMatchCodes(t *testing.T) {
	src := table([]string{"store", "promotion_code"},
		[]string{"Berlin", "spring10"},
		[]string{"Paris", "SUMMER"},
		[]string{"Rome", "\x00"},
		[]string{"Oslo", "Spring10"},
		[]string{"Lima", "winter"},
	)
	mask := table([]string{"promotion_code"},
		[]string{"SPRING10"},
		[]string{"summer"},
		[]string{"Summer"},
		[]string{"\x00"},
	)

	got, err := MatchCodes(src, mask)
	require.NoError(t, err)

	assert.Equal(t, src.Headers, got.Headers)
	assert.Equal(t, []string{"Berlin", "Paris", "Oslo"}, column(got, 0))
	assert.Equal(t, []string{"SPRING10", "Summer", "SPRING10"}, column(got, 1))
}

func TestMatchCodes_DoesNotModifySource(t *testing.T) {
	src := table([]string{"promotion_code"}, []string{"abc"})
	mask := table([]string{"promotion_code"}, []string{"ABC"})

	_, err := MatchCodes(src, mask)
	require.NoError(t, err)
	assert.Equal(t, "abc", src.Rows[0][0].String)
}

func TestMatchCodes_MissingColumn(t *testing.T) {
	withCode := table([]string{"promotion_code"}, []string{"A"})
	without := table([]string{"code"}, []string{"A"})

	_, err := MatchCodes(without, withCode)
	assert.ErrorContains(t, err, "source: no promotion_code column")

	_, err = MatchCodes(withCode, without)
	assert.ErrorContains(t, err, "mask: no promotion_code column")
}

// ----------------------------------------------------------------------------
// Interleave Tests
// ----------------------------------------------------------------------------

func TestInterleave(t *testing.T) {
	in := table([]string{"offer_name", "code"},
		[]string{"B", "b1"},
		[]string{"A", "a1"},
		[]string{"B", "b2"},
		[]string{"C", "c1"},
		[]string{"A", "a2"},
		[]string{"C", "c2"},
	)

	got, err := Interleave(in, DefaultGroupColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "a1", "c1", "b2", "a2", "c2"}, column(got, 1))
}

func TestInterleave_NullIsAGroup(t *testing.T) {
	in := table([]string{"offer_name", "code"},
		[]string{"\x00", "n1"},
		[]string{"A", "a1"},
		[]string{"A", "a2"},
		[]string{"\x00", "n2"},
	)

	got, err := Interleave(in, DefaultGroupColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "a1", "n2", "a2"}, column(got, 1))
}

func TestInterleave_Errors(t *testing.T) {
	uneven := table([]string{"offer_name"}, []string{"A"}, []string{"A"}, []string{"B"})
	_, err := Interleave(uneven, DefaultGroupColumn)
	assert.ErrorContains(t, err, "offer_name groups have different lengths: A=2, B=1")

	_, err = Interleave(uneven, "campaign")
	assert.ErrorContains(t, err, "no campaign column")
}

func TestInterleave_Empty(t *testing.T) {
	got, err := Interleave(table([]string{"offer_name"}), DefaultGroupColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"offer_name"}, got.Headers)
	assert.Empty(t, got.Rows)
}

// ----------------------------------------------------------------------------
// Split Tests
// ----------------------------------------------------------------------------

func TestSplit(t *testing.T) {
	in := table([]string{"n"}, []string{"1"}, []string{"2"}, []string{"3"}, []string{"4"}, []string{"5"})

	tests := []struct {
		name  string
		parts int
		want  [][]string
	}{
		{name: "two parts", parts: 2, want: [][]string{{"1", "2", "3"}, {"4", "5"}}},
		{name: "one part", parts: 1, want: [][]string{{"1", "2", "3", "4", "5"}}},
		{name: "more parts than rows", parts: 7, want: [][]string{{"1"}, {"2"}, {"3"}, {"4"}, {"5"}, {}, {}}},
		{name: "trailing part empty", parts: 4, want: [][]string{{"1", "2"}, {"3", "4"}, {"5"}, {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Split(in, tt.parts)
			require.NoError(t, err)
			require.Len(t, got, tt.parts)
			for i, part := range got {
				assert.Equal(t, in.Headers, part.Headers)
				assert.Equal(t, tt.want[i], column(part, 0), "part %d", i+1)
			}
		})
	}
}

func TestSplit_InvalidParts(t *testing.T) {
	_, err := Split(table([]string{"n"}), 0)
	assert.ErrorContains(t, err, "parts must be at least 1")
}

func TestPartPath(t *testing.T) {
	assert.Equal(t, "out/codes_part1.csv", PartPath("out/codes", 0))
	assert.Equal(t, "out/codes_part3.csv", PartPath("out/codes", 2))
}
