package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeQuantity  = errors.New("invalid_quantity")
	ErrNegativeUnitPrice = errors.New("invalid_unit_price")
	ErrInvalidDiscount   = errors.New("invalid_discount_percent")
	ErrInvalidTaxRate    = errors.New("invalid_tax_rate")
)

var oneHundred = decimal.NewFromInt(100)

// LineAmounts holds the derived amounts for a single document line.
type LineAmounts struct {
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	LineTotal      decimal.Decimal
}

// DocumentTotals aggregates line amounts into document-level totals.
type DocumentTotals struct {
	Subtotal decimal.Decimal
	TaxTotal decimal.Decimal
	Total    decimal.Decimal
}

// ComputeLine derives discount, tax and total for one line.
//
//	gross          = qty * unitPrice
//	discountAmount = gross * discountPct / 100
//	taxAmount      = (gross - discountAmount) * taxRate / 100
//	lineTotal      = gross - discountAmount + taxAmount
//
// Negative inputs are rejected. Discounts above 100% are rejected as well;
// a surcharge is modelled as its own line, not a negative discount.
func ComputeLine(qty, unitPrice, discountPct, taxRate decimal.Decimal) (LineAmounts, error) {
	if qty.IsNegative() {
		return LineAmounts{}, ErrNegativeQuantity
	}
	if unitPrice.IsNegative() {
		return LineAmounts{}, ErrNegativeUnitPrice
	}
	if discountPct.IsNegative() || discountPct.GreaterThan(oneHundred) {
		return LineAmounts{}, ErrInvalidDiscount
	}
	if taxRate.IsNegative() {
		return LineAmounts{}, ErrInvalidTaxRate
	}

	gross := qty.Mul(unitPrice)
	discount := gross.Mul(discountPct).Div(oneHundred)
	net := gross.Sub(discount)
	tax := net.Mul(taxRate).Div(oneHundred)

	return LineAmounts{
		DiscountAmount: discount,
		TaxAmount:      tax,
		LineTotal:      net.Add(tax),
	}, nil
}

// ComputeTotals aggregates already-derived line amounts.
// The result does not depend on line order.
func ComputeTotals(lines []LineAmounts) DocumentTotals {
	subtotal := decimal.Zero
	taxTotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal.Sub(line.TaxAmount))
		taxTotal = taxTotal.Add(line.TaxAmount)
	}
	return DocumentTotals{
		Subtotal: subtotal,
		TaxTotal: taxTotal,
		Total:    subtotal.Add(taxTotal),
	}
}

// Round2 rounds to two decimal places, half away from zero.
// Applied only at aggregation and display boundaries; intermediate
// arithmetic keeps full decimal precision.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
