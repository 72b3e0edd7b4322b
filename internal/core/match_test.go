package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/redemptions/internal/schema"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"promotion_code", "promotion_code"},
		{"  Promotion Code  ", "promotion_code"},
		{"SALES VALUE", "sales_value"},
		{"Sales  Value", "sales__value"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHeader(tt.input))
		})
	}
}

func TestHeaderMatcher_Match(t *testing.T) {
	m := NewHeaderMatcher(DefaultFuzzyCutoff, nil)

	tests := []struct {
		name      string
		header    string
		wantKind  MatchKind
		wantField schema.Field
	}{
		{name: "exact canonical", header: "quantity", wantKind: MatchExact, wantField: schema.Quantity},
		{name: "exact after normalization", header: "  Product EAN ", wantKind: MatchExact, wantField: schema.ProductEAN},
		{name: "forced date", header: "Redemption Date", wantKind: MatchForcedDate, wantField: schema.RedemptionDate},
		{name: "forced date beats other fields", header: "transaction_date", wantKind: MatchForcedDate, wantField: schema.RedemptionDate},
		{name: "date substring anywhere", header: "Last Update", wantKind: MatchForcedDate, wantField: schema.RedemptionDate},
		{name: "date inside a canonical-looking name", header: "quantity_date", wantKind: MatchForcedDate, wantField: schema.RedemptionDate},
		{name: "fuzzy abbreviation", header: "Promo Code", wantKind: MatchFuzzy, wantField: schema.PromotionCode},
		{name: "fuzzy suffix", header: "Value", wantKind: MatchFuzzy, wantField: schema.SalesValue},
		{name: "fuzzy longer name", header: "Currency Code", wantKind: MatchFuzzy, wantField: schema.Currency},
		{name: "below cutoff", header: "Qty", wantKind: MatchUnmatched},
		{name: "unrelated", header: "Store Name", wantKind: MatchUnmatched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match([]string{tt.header})
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantKind, got[0].Kind)
			if tt.wantKind != MatchUnmatched {
				assert.Equal(t, tt.wantField, got[0].Field)
				assert.Equal(t, tt.wantField.Name(), got[0].Name())
			} else {
				assert.Equal(t, tt.header, got[0].Name(), "unmatched headers keep their raw text")
			}
		})
	}
}

func TestHeaderMatcher_FuzzyScore(t *testing.T) {
	m := NewHeaderMatcher(DefaultFuzzyCutoff, nil)
	got := m.Match([]string{"promo code"})
	assert.InDelta(t, 20.0/24.0, got[0].Score, 1e-9)
}

func TestHeaderMatcher_CutoffIsInjectable(t *testing.T) {
	strict := NewHeaderMatcher(DefaultFuzzyCutoff, nil).Match([]string{"qty"})
	assert.Equal(t, MatchUnmatched, strict[0].Kind)

	loose := NewHeaderMatcher(0.5, nil).Match([]string{"qty"})
	assert.Equal(t, MatchFuzzy, loose[0].Kind)
	assert.Equal(t, schema.Quantity, loose[0].Field)

	none := NewHeaderMatcher(0.99, nil).Match([]string{"Promo Code"})
	assert.Equal(t, MatchUnmatched, none[0].Kind)
}

func TestHeaderMatcher_ScorerIsInjectable(t *testing.T) {
	// "value" clears the cutoff under gestalt scoring but not under edit distance.
	gestalt := NewHeaderMatcher(DefaultFuzzyCutoff, GestaltScorer{}).Match([]string{"value"})
	assert.Equal(t, MatchFuzzy, gestalt[0].Kind)

	edit := NewHeaderMatcher(DefaultFuzzyCutoff, LevenshteinScorer{}).Match([]string{"value"})
	assert.Equal(t, MatchUnmatched, edit[0].Kind)
}

func TestHeaderMatcher_PreservesOrderAndDuplicates(t *testing.T) {
	headers := []string{"Quantity", "notes", "quantity ", "Notes"}
	got := NewHeaderMatcher(DefaultFuzzyCutoff, nil).Match(headers)

	require.Len(t, got, len(headers))
	for i, h := range headers {
		assert.Equal(t, i, got[i].Index)
		assert.Equal(t, h, got[i].Raw)
	}
	assert.Equal(t, got[0].Field, got[2].Field)
	assert.Equal(t, got[0].Kind, got[2].Kind)
	assert.Equal(t, got[1].Kind, got[3].Kind)
}

func TestHeaderMatcher_SameNormalizedFormSameResolution(t *testing.T) {
	m := NewHeaderMatcher(DefaultFuzzyCutoff, nil)
	pairs := [][2]string{
		{"Sales Value", "  sales value"},
		{"PROMO CODE", "promo code"},
		{"Store", " store "},
		{"Date", "DATE"},
	}

	for _, p := range pairs {
		got := m.Match(p[:])
		assert.Equal(t, got[0].Kind, got[1].Kind, "%q vs %q", p[0], p[1])
		assert.Equal(t, got[0].Field, got[1].Field, "%q vs %q", p[0], p[1])
		assert.Equal(t, got[0].Normalized, got[1].Normalized)
	}
}
