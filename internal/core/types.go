package core

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/JonMunkholm/redemptions/internal/schema"
)

// RawTable is one export as read from disk: headers exactly as written and
// rows of string-or-null cells aligned to them. Rows may be shorter than the
// header; missing trailing cells are null.
type RawTable struct {
	Headers []string
	Rows    [][]pgtype.Text
}

// MatchKind records which rule resolved a header.
type MatchKind int

const (
	MatchUnmatched MatchKind = iota
	MatchForcedDate
	MatchExact
	MatchFuzzy
)

func (k MatchKind) String() string {
	switch k {
	case MatchForcedDate:
		return "forced-date"
	case MatchExact:
		return "exact"
	case MatchFuzzy:
		return "fuzzy"
	default:
		return "unmatched"
	}
}

// HeaderMatch is the resolution of one raw header.
type HeaderMatch struct {
	Index      int          // Position in the raw header row
	Raw        string       // Header text as read
	Normalized string       // Trimmed, lowercased, spaces replaced by underscores
	Field      schema.Field // Canonical field; only meaningful when Kind != MatchUnmatched
	Kind       MatchKind
	Score      float64 // Similarity score for fuzzy matches
}

// Matched reports whether the header resolved to a canonical field.
func (m HeaderMatch) Matched() bool {
	return m.Kind != MatchUnmatched
}

// Name returns the resolved column name: the canonical name when matched,
// otherwise the raw header verbatim.
func (m HeaderMatch) Name() string {
	if m.Matched() {
		return m.Field.Name()
	}
	return m.Raw
}

// ReconciledRow holds one row in canonical column order, still untyped.
type ReconciledRow struct {
	Fields [schema.FieldCount]pgtype.Text
	Extras []pgtype.Text
}

// ReconciledTable is the output of Reconcile.
type ReconciledTable struct {
	ExtraHeaders []string
	Rows         []ReconciledRow
	Missing      []schema.Field // Canonical fields synthesized as all-null
	Dropped      []HeaderMatch  // Duplicate canonical columns that lost the tie-break
}

// Record is one normalized redemption.
type Record struct {
	PromotionCode  pgtype.Text
	ProductSKU     pgtype.Text
	ProductEAN     pgtype.Text
	RedemptionDate pgtype.Text // ISO yyyy-mm-dd once dates are resolved
	Quantity       pgtype.Int8
	SalesValue     decimal.NullDecimal
	Currency       pgtype.Text
	Extras         []pgtype.Text // Aligned with CanonicalTable.ExtraHeaders
}

// text returns a pointer to the text-typed canonical field f, or nil if f is
// not stored as text.
func (r *Record) text(f schema.Field) *pgtype.Text {
	switch f {
	case schema.PromotionCode:
		return &r.PromotionCode
	case schema.ProductSKU:
		return &r.ProductSKU
	case schema.ProductEAN:
		return &r.ProductEAN
	case schema.RedemptionDate:
		return &r.RedemptionDate
	case schema.Currency:
		return &r.Currency
	default:
		return nil
	}
}

// CanonicalTable is a normalized export: the canonical columns followed by
// unmatched extras in their original relative order.
type CanonicalTable struct {
	ExtraHeaders []string
	Records      []Record
}

// Header returns the output header row.
func (t *CanonicalTable) Header() []string {
	header := schema.Names()
	return append(header, t.ExtraHeaders...)
}
