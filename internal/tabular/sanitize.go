package tabular

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode/utf8"
)

// utf8BOM is the byte order mark Windows tools put in front of UTF-8 files.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM returns a reader over r without a leading UTF-8 BOM.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// sanitizer replaces invalid UTF-8 in cell values and counts the cells it
// had to repair.
type sanitizer struct {
	repaired int
}

// cell returns s with every invalid UTF-8 sequence replaced by U+FFFD.
func (s *sanitizer) cell(v string) string {
	if utf8.ValidString(v) {
		return v
	}
	s.repaired++
	return strings.ToValidUTF8(v, string(utf8.RuneError))
}

// row sanitizes every cell of row in place.
func (s *sanitizer) row(row []string) []string {
	for i, v := range row {
		row[i] = s.cell(v)
	}
	return row
}
