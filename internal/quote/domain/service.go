package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/quotient/internal/money"
	"github.com/smallbiznis/quotient/pkg/db/pagination"
)

// LineItemInput is one requested line. LineNumber 0 means "assign from
// input order".
type LineItemInput struct {
	LineNumber    int                `json:"line_number"`
	Description   string             `json:"description"`
	Unit          *string            `json:"unit"`
	Quantity      decimal.Decimal    `json:"quantity"`
	UnitPrice     decimal.Decimal    `json:"unit_price"`
	UnitCost      decimal.Decimal    `json:"unit_cost"`
	TaxInclusive  bool               `json:"tax_inclusive"`
	TaxRate       decimal.Decimal    `json:"tax_rate"`
	DiscountType  money.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal    `json:"discount_value"`
}

type CreateQuoteRequest struct {
	CustomerID  string  `json:"customer_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Type        string  `json:"type"`

	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`

	TaxRate       decimal.Decimal    `json:"tax_rate"`
	DiscountType  money.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal    `json:"discount_value"`

	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	Terms      *string    `json:"terms"`
	Notes      *string    `json:"notes"`

	LineItems []LineItemInput `json:"line_items"`
}

// UpdateQuoteRequest carries full replacement state for an edit. Status
// changes go through TransitionStatus, never through Update.
type UpdateQuoteRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Type        string  `json:"type"`

	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`

	TaxRate       decimal.Decimal    `json:"tax_rate"`
	DiscountType  money.DiscountType `json:"discount_type"`
	DiscountValue decimal.Decimal    `json:"discount_value"`

	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	Terms      *string    `json:"terms"`
	Notes      *string    `json:"notes"`

	LineItems []LineItemInput `json:"line_items"`
}

type ListQuoteRequest struct {
	PageToken  string
	PageSize   int
	Status     *Status
	CustomerID string
}

type ListQuoteResponse struct {
	pagination.PageInfo
	Quotes []Quote `json:"quotes"`
}

type ListQuoteFilter struct {
	Status     *Status
	CustomerID string
}

// Service is the quote lifecycle engine: pricing, locking, status
// transitions, versioning and tenant isolation live behind this
// interface.
type Service interface {
	Create(ctx context.Context, req CreateQuoteRequest) (Quote, error)
	Update(ctx context.Context, id string, req UpdateQuoteRequest) (Quote, error)
	TransitionStatus(ctx context.Context, id string, target Status) (Quote, error)
	GetByID(ctx context.Context, id string) (Quote, error)
	List(ctx context.Context, req ListQuoteRequest) (ListQuoteResponse, error)
	Delete(ctx context.Context, id string) error
	ListVersions(ctx context.Context, id string) ([]QuoteVersion, error)
	ListLineItems(ctx context.Context, id string) ([]QuoteLineItem, error)
}
