package domain

import (
	"sort"
	"time"
)

// HasMaterialChanges compares the fixed list of material scalar fields,
// then line-item count and per-line pricing fields, against the candidate
// edit. Any single difference is material. Computed totals are excluded:
// they derive from the compared inputs.
func HasMaterialChanges(quote *Quote, lines []QuoteLineItem, req UpdateQuoteRequest) bool {
	if quote.Title != req.Title {
		return true
	}
	if !equalStringPtr(quote.Description, req.Description) {
		return true
	}
	if quote.Type != req.Type {
		return true
	}
	if !equalTimePtr(quote.ValidFrom, req.ValidFrom) || !equalTimePtr(quote.ValidUntil, req.ValidUntil) {
		return true
	}
	if quote.Currency != req.Currency {
		return true
	}
	if !quote.ExchangeRate.Equal(req.ExchangeRate) {
		return true
	}
	if !quote.TaxRate.Equal(req.TaxRate) {
		return true
	}
	if quote.DiscountType != req.DiscountType || !quote.DiscountValue.Equal(req.DiscountValue) {
		return true
	}
	if !equalStringPtr(quote.Terms, req.Terms) || !equalStringPtr(quote.Notes, req.Notes) {
		return true
	}

	if len(lines) != len(req.LineItems) {
		return true
	}

	existing := make([]QuoteLineItem, len(lines))
	copy(existing, lines)
	sort.Slice(existing, func(i, j int) bool { return existing[i].LineNumber < existing[j].LineNumber })

	candidates := make([]LineItemInput, len(req.LineItems))
	copy(candidates, req.LineItems)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].LineNumber < candidates[j].LineNumber })

	for i, line := range existing {
		if lineChanged(line, candidates[i]) {
			return true
		}
	}
	return false
}

func lineChanged(line QuoteLineItem, in LineItemInput) bool {
	if line.Description != in.Description {
		return true
	}
	if !equalStringPtr(line.Unit, in.Unit) {
		return true
	}
	if !line.Quantity.Equal(in.Quantity) || !line.UnitPrice.Equal(in.UnitPrice) || !line.UnitCost.Equal(in.UnitCost) {
		return true
	}
	if line.TaxInclusive != in.TaxInclusive || !line.TaxRate.Equal(in.TaxRate) {
		return true
	}
	if line.DiscountType != in.DiscountType || !line.DiscountValue.Equal(in.DiscountValue) {
		return true
	}
	return false
}

func equalStringPtr(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Equal(*b)
}
