// Package schema defines the canonical redemption schema every export is
// normalized into.
package schema

// FieldType represents the expected data type for a canonical column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInteger
	FieldDecimal
	FieldDate
)

func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldInteger:
		return "integer"
	case FieldDecimal:
		return "decimal"
	case FieldDate:
		return "date"
	default:
		return "unknown"
	}
}

// IsNumeric reports whether values of this type are parsed as numbers.
func (t FieldType) IsNumeric() bool {
	return t == FieldInteger || t == FieldDecimal
}

// Field identifies one canonical column. The numeric value is the column's
// position in the output.
type Field int

// FieldSpec describes a single canonical column.
type FieldSpec struct {
	Field Field     // Position in the canonical order
	Name  string    // Canonical header name
	Type  FieldType // Expected data type
}
