package schema

const (
	PromotionCode Field = iota
	ProductSKU
	ProductEAN
	RedemptionDate
	Quantity
	SalesValue
	Currency

	// FieldCount is the number of canonical columns.
	FieldCount = 7
)

// RedemptionFieldSpecs lists the canonical columns in output order.
var RedemptionFieldSpecs = [FieldCount]FieldSpec{
	{Field: PromotionCode, Name: "promotion_code", Type: FieldText},
	{Field: ProductSKU, Name: "product_sku", Type: FieldText},
	{Field: ProductEAN, Name: "product_ean", Type: FieldText},
	{Field: RedemptionDate, Name: "redemption_date", Type: FieldDate},
	{Field: Quantity, Name: "quantity", Type: FieldInteger},
	{Field: SalesValue, Name: "sales_value", Type: FieldDecimal},
	{Field: Currency, Name: "currency", Type: FieldText},
}

// TextFields are the columns coerced to text and inspected by the empty-row check.
var TextFields = []Field{PromotionCode, ProductSKU, ProductEAN, Currency}

// NumericFields are the columns parsed as numbers.
var NumericFields = []Field{Quantity, SalesValue}

// Name returns the canonical header for f.
func (f Field) Name() string {
	if !f.Valid() {
		return ""
	}
	return RedemptionFieldSpecs[f].Name
}

// Type returns the declared type of f.
func (f Field) Type() FieldType {
	return RedemptionFieldSpecs[f].Type
}

// Valid reports whether f is one of the canonical fields.
func (f Field) Valid() bool {
	return f >= 0 && f < FieldCount
}

func (f Field) String() string {
	return f.Name()
}

// Names returns the canonical headers in output order.
func Names() []string {
	names := make([]string, FieldCount)
	for i, spec := range RedemptionFieldSpecs {
		names[i] = spec.Name
	}
	return names
}

// Lookup returns the canonical field whose name equals name exactly.
func Lookup(name string) (Field, bool) {
	for _, spec := range RedemptionFieldSpecs {
		if spec.Name == name {
			return spec.Field, true
		}
	}
	return -1, false
}
