package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateLineTaxExclusive(t *testing.T) {
	result, err := CalculateLine(LineInput{
		Quantity:  dec("40"),
		UnitPrice: dec("150.00"),
		TaxRate:   dec("0.15"),
		Currency:  "USD",
	})
	assert.NoError(t, err)
	assert.True(t, result.Subtotal.Equal(dec("6000.00")), "subtotal %s", result.Subtotal)
	assert.True(t, result.DiscountAmount.Equal(decimal.Zero))
	assert.True(t, result.TaxableAmount.Equal(dec("6000.00")))
	assert.True(t, result.TaxAmount.Equal(dec("900.00")), "tax %s", result.TaxAmount)
	assert.True(t, result.TotalAmount.Equal(dec("6900.00")), "total %s", result.TotalAmount)
}

func TestCalculateLineTaxInclusive(t *testing.T) {
	result, err := CalculateLine(LineInput{
		Quantity:     dec("1"),
		UnitPrice:    dec("115.00"),
		TaxRate:      dec("0.15"),
		TaxInclusive: true,
		Currency:     "USD",
	})
	assert.NoError(t, err)
	assert.True(t, result.TaxableAmount.Equal(dec("100.00")), "taxable %s", result.TaxableAmount)
	assert.True(t, result.TaxAmount.Equal(dec("15.00")), "tax %s", result.TaxAmount)
	assert.True(t, result.TotalAmount.Equal(dec("115.00")), "total %s", result.TotalAmount)
}

func TestCalculateLinePercentageDiscount(t *testing.T) {
	result, err := CalculateLine(LineInput{
		Quantity:  dec("2"),
		UnitPrice: dec("100.00"),
		Discount:  Discount{Type: DiscountTypePercentage, Value: dec("10")},
		TaxRate:   dec("0.20"),
		Currency:  "USD",
	})
	assert.NoError(t, err)
	assert.True(t, result.Subtotal.Equal(dec("200.00")))
	assert.True(t, result.DiscountAmount.Equal(dec("20.00")))
	assert.True(t, result.TaxableAmount.Equal(dec("180.00")))
	assert.True(t, result.TaxAmount.Equal(dec("36.00")))
	assert.True(t, result.TotalAmount.Equal(dec("216.00")))
}

func TestCalculateLineFixedDiscountCapped(t *testing.T) {
	result, err := CalculateLine(LineInput{
		Quantity:  dec("1"),
		UnitPrice: dec("50.00"),
		Discount:  Discount{Type: DiscountTypeFixed, Value: dec("80.00")},
		TaxRate:   dec("0.10"),
		Currency:  "USD",
	})
	assert.NoError(t, err)
	assert.True(t, result.DiscountAmount.Equal(dec("50.00")), "discount capped at subtotal, got %s", result.DiscountAmount)
	assert.True(t, result.TaxableAmount.Equal(decimal.Zero))
	assert.True(t, result.TaxAmount.Equal(decimal.Zero))
	assert.True(t, result.TotalAmount.Equal(decimal.Zero))
}

func TestCalculateLineZeroDecimalCurrency(t *testing.T) {
	result, err := CalculateLine(LineInput{
		Quantity:  dec("3"),
		UnitPrice: dec("333.40"),
		TaxRate:   dec("0.10"),
		Currency:  "JPY",
	})
	assert.NoError(t, err)
	assert.True(t, result.Subtotal.Equal(dec("1000")), "subtotal %s", result.Subtotal)
	assert.True(t, result.TaxAmount.Equal(dec("100")), "tax %s", result.TaxAmount)
	assert.True(t, result.TotalAmount.Equal(dec("1100")))
}

func TestCalculateLineZeroQuantity(t *testing.T) {
	result, err := CalculateLine(LineInput{
		Quantity:  decimal.Zero,
		UnitPrice: dec("99.99"),
		TaxRate:   dec("0.15"),
		Currency:  "USD",
	})
	assert.NoError(t, err)
	assert.True(t, result.Subtotal.Equal(decimal.Zero))
	assert.True(t, result.TotalAmount.Equal(decimal.Zero))
}

func TestCalculateLineValidation(t *testing.T) {
	cases := []struct {
		name string
		in   LineInput
		want error
	}{
		{
			name: "negative quantity",
			in:   LineInput{Quantity: dec("-1"), UnitPrice: dec("10"), Currency: "USD"},
			want: ErrNegativeQuantity,
		},
		{
			name: "negative unit price",
			in:   LineInput{Quantity: dec("1"), UnitPrice: dec("-10"), Currency: "USD"},
			want: ErrNegativeUnitPrice,
		},
		{
			name: "tax rate above one",
			in:   LineInput{Quantity: dec("1"), UnitPrice: dec("10"), TaxRate: dec("1.5"), Currency: "USD"},
			want: ErrInvalidTaxRate,
		},
		{
			name: "negative tax rate",
			in:   LineInput{Quantity: dec("1"), UnitPrice: dec("10"), TaxRate: dec("-0.1"), Currency: "USD"},
			want: ErrInvalidTaxRate,
		},
		{
			name: "percentage above hundred",
			in: LineInput{
				Quantity: dec("1"), UnitPrice: dec("10"), Currency: "USD",
				Discount: Discount{Type: DiscountTypePercentage, Value: dec("101")},
			},
			want: ErrInvalidDiscount,
		},
		{
			name: "negative fixed discount",
			in: LineInput{
				Quantity: dec("1"), UnitPrice: dec("10"), Currency: "USD",
				Discount: Discount{Type: DiscountTypeFixed, Value: dec("-5")},
			},
			want: ErrInvalidDiscount,
		},
		{
			name: "unknown discount type",
			in: LineInput{
				Quantity: dec("1"), UnitPrice: dec("10"), Currency: "USD",
				Discount: Discount{Type: "bogus", Value: dec("5")},
			},
			want: ErrInvalidDiscount,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CalculateLine(tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
