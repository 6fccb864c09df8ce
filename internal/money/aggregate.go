package money

import "github.com/shopspring/decimal"

// QuoteTotals is the quote-level roll-up of its line results.
type QuoteTotals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// AggregateLines sums per-line results into quote totals. Line amounts are
// already rounded, so the sums are exact; nothing is re-derived from raw
// quantity × price at the quote level.
//
// When a quote-level discount is present it applies to the aggregated line
// subtotal, and tax re-flows from that discounted base: computed once, at
// the quote level, from already-rounded line subtotals, using quoteTaxRate.
// Without a quote-level discount the totals are plain sums of line values.
func AggregateLines(lines []LineResult, quoteDiscount Discount, quoteTaxRate decimal.Decimal, currency string) (QuoteTotals, error) {
	if err := validateDiscount(quoteDiscount); err != nil {
		return QuoteTotals{}, err
	}
	if quoteTaxRate.IsNegative() || quoteTaxRate.GreaterThan(one) {
		return QuoteTotals{}, ErrInvalidTaxRate
	}

	totals := QuoteTotals{
		Subtotal:       decimal.Zero,
		DiscountAmount: decimal.Zero,
		TaxableAmount:  decimal.Zero,
		TaxAmount:      decimal.Zero,
		TotalAmount:    decimal.Zero,
	}
	for _, line := range lines {
		totals.Subtotal = totals.Subtotal.Add(line.Subtotal)
		totals.DiscountAmount = totals.DiscountAmount.Add(line.DiscountAmount)
		totals.TaxableAmount = totals.TaxableAmount.Add(line.TaxableAmount)
		totals.TaxAmount = totals.TaxAmount.Add(line.TaxAmount)
		totals.TotalAmount = totals.TotalAmount.Add(line.TotalAmount)
	}

	if quoteDiscount.Type == DiscountTypeNone || quoteDiscount.Type == "" {
		return totals, nil
	}

	places := DecimalPlaces(currency)
	quoteDiscountAmount := discountAmount(quoteDiscount, totals.Subtotal, places)

	taxable := totals.Subtotal.Sub(totals.DiscountAmount).Sub(quoteDiscountAmount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	tax := taxable.Mul(quoteTaxRate).Round(places)

	totals.DiscountAmount = totals.DiscountAmount.Add(quoteDiscountAmount)
	totals.TaxableAmount = taxable
	totals.TaxAmount = tax
	totals.TotalAmount = taxable.Add(tax)

	return totals, nil
}
