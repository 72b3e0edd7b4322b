// Package codes collects the distinct promotion codes found in normalized
// exports.
package codes

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/JonMunkholm/redemptions/internal/schema"
	"github.com/JonMunkholm/redemptions/internal/tabular"
)

// Header is the column name of the written codes file.
const Header = "code"

// FileCodes is what one source file contributed.
type FileCodes struct {
	Path  string
	Count int   // Distinct codes in this file
	Err   error // Why the file was skipped; nil if it was read
}

// Result is the outcome of a collection.
type Result struct {
	Codes []string // Sorted, distinct, trimmed
	Files []FileCodes
}

// Sources lists the CSV files directly inside dir, sorted, leaving out
// exclude (normally the codes file itself).
func Sources(dir, exclude string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || tabular.FormatOf(name) != tabular.FormatCSV {
			continue
		}
		if name == exclude {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files in %s", dir)
	}

	sort.Strings(paths)
	return paths, nil
}

// Collect reads every path and gathers its promotion codes. Surrounding
// whitespace is trimmed and empty values are ignored.
func Collect(r *tabular.Reader, paths []string) *Result {
	seen := make(map[string]struct{})
	res := &Result{}

	for _, path := range paths {
		fc := FileCodes{Path: path}

		raw, _, err := r.ReadFile(path)
		if err != nil {
			fc.Err = err
			res.Files = append(res.Files, fc)
			continue
		}

		col := -1
		for i, h := range raw.Headers {
			if h == schema.PromotionCode.Name() {
				col = i
				break
			}
		}
		if col < 0 {
			fc.Err = fmt.Errorf("no %s column", schema.PromotionCode.Name())
			res.Files = append(res.Files, fc)
			continue
		}

		local := make(map[string]struct{})
		for _, row := range raw.Rows {
			if col >= len(row) || !row[col].Valid {
				continue
			}
			code := strings.TrimSpace(row[col].String)
			if code == "" {
				continue
			}
			local[code] = struct{}{}
			if _, ok := seen[code]; !ok {
				seen[code] = struct{}{}
				res.Codes = append(res.Codes, code)
			}
		}
		fc.Count = len(local)
		res.Files = append(res.Files, fc)
	}

	sort.Strings(res.Codes)
	return res
}

// Write saves codes to path under a single "code" column.
func Write(path string, codes []string) error {
	rows := make([][]string, len(codes))
	for i, c := range codes {
		rows[i] = []string{c}
	}
	return tabular.WriteFile(path, func(w io.Writer) error {
		return tabular.WriteRows(w, []string{Header}, rows)
	})
}
