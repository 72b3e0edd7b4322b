// Package tabular reads exports into raw tables and writes normalized tables
// back out as CSV.
//
// Two input formats are understood, chosen by file extension: comma-separated
// text (.csv) and Excel workbooks (.xlsx, first sheet only). Both produce the
// same core.RawTable: the first row is the header, every later row is a list
// of string-or-null cells. A cell is null when it is empty or equal to one of
// the configured missing-value tokens.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/redemptions/internal/core"
)

// Supported input formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// FormatOf returns the input format for path, or "" if the extension is not
// supported.
func FormatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return ""
	}
}

// Info describes a file that was read.
type Info struct {
	Format   string
	Size     int64
	Repaired int // Cells whose invalid UTF-8 was replaced
}

// Reader turns export files into raw tables.
type Reader struct {
	maxSize int64
	missing map[string]struct{}
}

// NewReader creates a reader. Files larger than maxSize bytes are rejected;
// zero means no limit. Cells equal to a token in missing are read as null.
func NewReader(maxSize int64, missing []string) *Reader {
	set := make(map[string]struct{}, len(missing))
	for _, tok := range missing {
		set[tok] = struct{}{}
	}
	return &Reader{maxSize: maxSize, missing: set}
}

// ReadFile reads the export at path.
func (r *Reader) ReadFile(path string) (core.RawTable, Info, error) {
	info := Info{Format: FormatOf(path)}
	if info.Format == "" {
		return core.RawTable{}, info, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}

	st, err := os.Stat(path)
	if err != nil {
		return core.RawTable{}, info, fmt.Errorf("open file: %w", err)
	}
	info.Size = st.Size()
	if r.maxSize > 0 && info.Size > r.maxSize {
		return core.RawTable{}, info, fmt.Errorf("file too large: %d bytes exceeds limit of %d", info.Size, r.maxSize)
	}

	var rows [][]string
	switch info.Format {
	case FormatCSV:
		rows, err = readCSVFile(path)
	case FormatXLSX:
		rows, err = readXLSXFile(path)
	}
	if err != nil {
		return core.RawTable{}, info, err
	}

	table, repaired, err := r.build(rows)
	info.Repaired = repaired
	return table, info, err
}

// ReadCSV reads comma-separated text from src.
func (r *Reader) ReadCSV(src io.Reader) (core.RawTable, error) {
	rows, err := parseCSV(src)
	if err != nil {
		return core.RawTable{}, err
	}
	table, _, err := r.build(rows)
	return table, err
}

func readCSVFile(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	return parseCSV(f)
}

func parseCSV(src io.Reader) ([][]string, error) {
	cr := csv.NewReader(skipBOM(src))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rows, err := cr.ReadAll()
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, fmt.Errorf("invalid csv: %w", err)
		}
		return nil, fmt.Errorf("open file: %w", err)
	}
	return rows, nil
}

func readXLSXFile(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("empty file: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("invalid xlsx: sheet %q: %w", sheets[0], err)
	}

	// Spreadsheets report fully empty rows as zero-length; CSV input never
	// yields them, so drop them to keep both formats alike.
	kept := rows[:0]
	for _, row := range rows {
		if len(row) > 0 {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// build converts parsed rows into a raw table. Cells past the end of the
// header are allowed only when empty.
func (r *Reader) build(rows [][]string) (core.RawTable, int, error) {
	if len(rows) == 0 {
		return core.RawTable{}, 0, errors.New("empty file: no header row")
	}

	var san sanitizer
	headers := san.row(rows[0])
	width := len(headers)

	table := core.RawTable{
		Headers: headers,
		Rows:    make([][]pgtype.Text, 0, len(rows)-1),
	}

	for i, row := range rows[1:] {
		row = san.row(row)
		if len(row) > width {
			for _, extra := range row[width:] {
				if extra != "" {
					return core.RawTable{}, san.repaired, fmt.Errorf(
						"invalid csv: row %d has %d cells but the header has %d", i+2, len(row), width)
				}
			}
			row = row[:width]
		}

		cells := make([]pgtype.Text, len(row))
		for j, v := range row {
			cells[j] = r.cell(v)
		}
		table.Rows = append(table.Rows, cells)
	}

	return table, san.repaired, nil
}

// cell converts one value, mapping empty and missing tokens to null.
func (r *Reader) cell(v string) pgtype.Text {
	if v == "" {
		return pgtype.Text{}
	}
	if _, ok := r.missing[v]; ok {
		return pgtype.Text{}
	}
	return pgtype.Text{String: v, Valid: true}
}
