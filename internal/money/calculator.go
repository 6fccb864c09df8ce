// Package money computes line and quote monetary amounts. All arithmetic
// is decimal.Decimal; rounding is half-up at the currency's minor-unit
// precision and happens at the line level only.
package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// DiscountType determines how a discount value is interpreted.
type DiscountType string

const (
	DiscountTypeNone       DiscountType = "none"
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Discount pairs a discount type with its value: a percentage in [0,100]
// or a fixed amount in the quote currency.
type Discount struct {
	Type  DiscountType
	Value decimal.Decimal
}

var (
	ErrNegativeQuantity  = errors.New("invalid_quantity")
	ErrNegativeUnitPrice = errors.New("invalid_unit_price")
	ErrInvalidTaxRate    = errors.New("invalid_tax_rate")
	ErrInvalidDiscount   = errors.New("invalid_discount")
	ErrInvalidCurrency   = errors.New("invalid_currency")
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// LineInput carries the raw pricing inputs of a single line item.
type LineInput struct {
	Quantity     decimal.Decimal
	UnitPrice    decimal.Decimal
	Discount     Discount
	TaxRate      decimal.Decimal // fraction, e.g. 0.15
	TaxInclusive bool
	Currency     string
}

// LineResult holds the five computed amounts of a line, each rounded
// independently to the currency precision.
type LineResult struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxAmount      decimal.Decimal
	TotalAmount    decimal.Decimal
}

// Validate rejects out-of-range inputs instead of clamping them.
func (in LineInput) Validate() error {
	if in.Quantity.IsNegative() {
		return ErrNegativeQuantity
	}
	if in.UnitPrice.IsNegative() {
		return ErrNegativeUnitPrice
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(one) {
		return ErrInvalidTaxRate
	}
	return validateDiscount(in.Discount)
}

func validateDiscount(d Discount) error {
	switch d.Type {
	case DiscountTypeNone, "":
		return nil
	case DiscountTypePercentage:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			return ErrInvalidDiscount
		}
		return nil
	case DiscountTypeFixed:
		if d.Value.IsNegative() {
			return ErrInvalidDiscount
		}
		return nil
	default:
		return ErrInvalidDiscount
	}
}

// CalculateLine computes the monetary breakdown of one line item.
//
// Tax-exclusive: total = taxable + tax, where taxable is the discounted
// subtotal. Tax-inclusive: the tax is extracted from the discounted
// subtotal, so total equals subtotal minus discount.
func CalculateLine(in LineInput) (LineResult, error) {
	if err := in.Validate(); err != nil {
		return LineResult{}, err
	}

	places := DecimalPlaces(in.Currency)

	subtotal := in.Quantity.Mul(in.UnitPrice).Round(places)
	discount := discountAmount(in.Discount, subtotal, places)
	discounted := subtotal.Sub(discount)

	var taxable, tax, total decimal.Decimal
	if in.TaxInclusive {
		taxable = discounted.Div(one.Add(in.TaxRate)).Round(places)
		tax = taxable.Mul(in.TaxRate).Round(places)
		total = discounted
	} else {
		taxable = discounted
		tax = taxable.Mul(in.TaxRate).Round(places)
		total = taxable.Add(tax)
	}

	return LineResult{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		TotalAmount:    total,
	}, nil
}

// discountAmount is never negative and never exceeds the base amount.
func discountAmount(d Discount, base decimal.Decimal, places int32) decimal.Decimal {
	switch d.Type {
	case DiscountTypePercentage:
		amount := base.Mul(d.Value).Div(hundred).Round(places)
		if amount.GreaterThan(base) {
			return base
		}
		return amount
	case DiscountTypeFixed:
		if d.Value.GreaterThan(base) {
			return base
		}
		return d.Value.Round(places)
	default:
		return decimal.Zero
	}
}
