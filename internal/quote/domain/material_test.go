package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/quotient/internal/money"
	"github.com/stretchr/testify/assert"
)

func baseQuoteForDiff() (*Quote, []QuoteLineItem, UpdateQuoteRequest) {
	notes := "net 30"
	quote := &Quote{
		Title:         "Website build",
		Type:          "standard",
		Currency:      "USD",
		ExchangeRate:  decimal.NewFromInt(1),
		TaxRate:       decimal.NewFromFloat(0.15),
		DiscountType:  money.DiscountTypeNone,
		DiscountValue: decimal.Zero,
		Notes:         &notes,
	}
	lines := []QuoteLineItem{
		{
			LineNumber:  1,
			Description: "Design",
			Quantity:    decimal.NewFromInt(40),
			UnitPrice:   decimal.NewFromInt(150),
			TaxRate:     decimal.NewFromFloat(0.15),
		},
	}
	req := UpdateQuoteRequest{
		Title:         "Website build",
		Type:          "standard",
		Currency:      "USD",
		ExchangeRate:  decimal.NewFromInt(1),
		TaxRate:       decimal.NewFromFloat(0.15),
		DiscountType:  money.DiscountTypeNone,
		DiscountValue: decimal.Zero,
		Notes:         &notes,
		LineItems: []LineItemInput{
			{
				LineNumber:  1,
				Description: "Design",
				Quantity:    decimal.NewFromInt(40),
				UnitPrice:   decimal.NewFromInt(150),
				TaxRate:     decimal.NewFromFloat(0.15),
			},
		},
	}
	return quote, lines, req
}

func TestHasMaterialChangesIdenticalRequest(t *testing.T) {
	quote, lines, req := baseQuoteForDiff()
	assert.False(t, HasMaterialChanges(quote, lines, req))
}

func TestHasMaterialChangesScalarFields(t *testing.T) {
	t.Run("title", func(t *testing.T) {
		quote, lines, req := baseQuoteForDiff()
		req.Title = "Website rebuild"
		assert.True(t, HasMaterialChanges(quote, lines, req))
	})

	t.Run("tax rate", func(t *testing.T) {
		quote, lines, req := baseQuoteForDiff()
		req.TaxRate = decimal.NewFromFloat(0.20)
		assert.True(t, HasMaterialChanges(quote, lines, req))
	})

	t.Run("validity window", func(t *testing.T) {
		quote, lines, req := baseQuoteForDiff()
		until := time.Now().Add(30 * 24 * time.Hour)
		req.ValidUntil = &until
		assert.True(t, HasMaterialChanges(quote, lines, req))
	})

	t.Run("notes cleared", func(t *testing.T) {
		quote, lines, req := baseQuoteForDiff()
		req.Notes = nil
		assert.True(t, HasMaterialChanges(quote, lines, req))
	})
}

func TestHasMaterialChangesLineItems(t *testing.T) {
	t.Run("price change", func(t *testing.T) {
		quote, lines, req := baseQuoteForDiff()
		req.LineItems[0].UnitPrice = decimal.NewFromInt(175)
		assert.True(t, HasMaterialChanges(quote, lines, req))
	})

	t.Run("line added", func(t *testing.T) {
		quote, lines, req := baseQuoteForDiff()
		req.LineItems = append(req.LineItems, LineItemInput{
			LineNumber:  2,
			Description: "Hosting",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(25),
		})
		assert.True(t, HasMaterialChanges(quote, lines, req))
	})

	t.Run("reordered input is not material", func(t *testing.T) {
		quote, lines, req := baseQuoteForDiff()
		lines = append(lines, QuoteLineItem{
			LineNumber:  2,
			Description: "Hosting",
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   decimal.NewFromInt(25),
		})
		req.LineItems = []LineItemInput{
			{
				LineNumber:  2,
				Description: "Hosting",
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   decimal.NewFromInt(25),
			},
			{
				LineNumber:  1,
				Description: "Design",
				Quantity:    decimal.NewFromInt(40),
				UnitPrice:   decimal.NewFromInt(150),
				TaxRate:     decimal.NewFromFloat(0.15),
			},
		}
		assert.False(t, HasMaterialChanges(quote, lines, req))
	})
}
