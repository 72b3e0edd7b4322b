package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/redemptions/internal/core"
)

// WriteTable writes t as CSV to w: the output header, then one line per
// record. Null cells are written empty.
func WriteTable(w io.Writer, t *core.CanonicalTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header()); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	for i := range t.Records {
		if err := cw.Write(t.Records[i].Cells()); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// WriteRows writes header and rows as CSV to w.
func WriteRows(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// WriteRaw writes t as CSV to w with its headers unchanged. Short rows are
// padded and null cells are written empty.
func WriteRaw(w io.Writer, t core.RawTable) error {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(t.Headers))
		for j := 0; j < len(row) && j < len(cells); j++ {
			cells[j] = core.FormatText(row[j])
		}
		rows[i] = cells
	}
	return WriteRows(w, t.Headers, rows)
}

// WriteFile writes to path through write. The data goes to a temporary file
// in the same directory first, so path is either fully written or untouched.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
