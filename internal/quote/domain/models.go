// Package domain contains persistence models and contracts for quotes.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/quotient/internal/money"
	"gorm.io/datatypes"
)

// MetadataKeyCurrentVersion is the quote metadata key pointing at the id
// of the latest immutable version snapshot.
const MetadataKeyCurrentVersion = "current_version_id"

// Quote is the tenant-scoped aggregate root. Line items and versions are
// owned by the quote; the organization owns the quote.
type Quote struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	OrgID       snowflake.ID `gorm:"column:org_id;not null;index;uniqueIndex:ux_quote_org_number,priority:1"`
	CustomerID  snowflake.ID `gorm:"not null;index"`
	QuoteNumber string       `gorm:"type:text;not null;uniqueIndex:ux_quote_org_number,priority:2"`

	Title       string  `gorm:"type:text;not null"`
	Description *string `gorm:"type:text"`
	Type        string  `gorm:"type:text;not null;default:'standard'"`
	Status      Status  `gorm:"type:text;not null;default:'draft'"`

	Currency     string          `gorm:"type:text;not null"`
	ExchangeRate decimal.Decimal `gorm:"type:numeric(20,10);not null;default:1"`

	TaxRate       decimal.Decimal    `gorm:"type:numeric(6,4);not null;default:0"`
	DiscountType  money.DiscountType `gorm:"type:text;not null;default:'none'"`
	DiscountValue decimal.Decimal    `gorm:"type:numeric(20,6);not null;default:0"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`

	ValidFrom  *time.Time `gorm:""`
	ValidUntil *time.Time `gorm:""`
	Terms      *string    `gorm:"type:text"`
	Notes      *string    `gorm:"type:text"`

	CreatedBy  snowflake.ID  `gorm:"not null"`
	ApprovedBy *snowflake.ID `gorm:""`
	ApprovedAt *time.Time    `gorm:""`
	SentAt     *time.Time    `gorm:""`
	AcceptedAt *time.Time    `gorm:""`

	Metadata datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`

	CreatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"`
	DeletedAt *time.Time `gorm:"index"`
}

// TableName sets the database table name.
func (Quote) TableName() string { return "quotes" }

// QuoteLineItem is a line on a quote. LineNumber is unique within the
// quote and defines display and calculation order.
type QuoteLineItem struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	OrgID      snowflake.ID `gorm:"column:org_id;not null;index"`
	QuoteID    snowflake.ID `gorm:"not null;index;uniqueIndex:ux_line_quote_number,priority:1"`
	LineNumber int          `gorm:"not null;uniqueIndex:ux_line_quote_number,priority:2"`

	Description string  `gorm:"type:text;not null"`
	Unit        *string `gorm:"type:text"`

	Quantity  decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	UnitCost  decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`

	TaxInclusive  bool               `gorm:"not null;default:false"`
	TaxRate       decimal.Decimal    `gorm:"type:numeric(6,4);not null;default:0"`
	DiscountType  money.DiscountType `gorm:"type:text;not null;default:'none'"`
	DiscountValue decimal.Decimal    `gorm:"type:numeric(20,6);not null;default:0"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
	TaxableAmount  decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(20,6);not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (QuoteLineItem) TableName() string { return "quote_line_items" }

// QuoteVersion is an immutable snapshot of a quote's scalar fields.
// Rows are only ever appended, never updated.
type QuoteVersion struct {
	ID            snowflake.ID `gorm:"primaryKey"`
	OrgID         snowflake.ID `gorm:"column:org_id;not null;index"`
	QuoteID       snowflake.ID `gorm:"not null;index;uniqueIndex:ux_version_quote_number,priority:1"`
	VersionNumber int          `gorm:"not null;uniqueIndex:ux_version_quote_number,priority:2"`

	CustomerID  snowflake.ID `gorm:"not null"`
	QuoteNumber string       `gorm:"type:text;not null"`
	Title       string       `gorm:"type:text;not null"`
	Description *string      `gorm:"type:text"`
	Type        string       `gorm:"type:text;not null"`
	Status      Status       `gorm:"type:text;not null"`

	Currency     string          `gorm:"type:text;not null"`
	ExchangeRate decimal.Decimal `gorm:"type:numeric(20,10);not null"`

	TaxRate       decimal.Decimal    `gorm:"type:numeric(6,4);not null"`
	DiscountType  money.DiscountType `gorm:"type:text;not null"`
	DiscountValue decimal.Decimal    `gorm:"type:numeric(20,6);not null"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(20,6);not null"`

	ValidFrom  *time.Time `gorm:""`
	ValidUntil *time.Time `gorm:""`
	Terms      *string    `gorm:"type:text"`
	Notes      *string    `gorm:"type:text"`

	CreatedBy snowflake.ID `gorm:"not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (QuoteVersion) TableName() string { return "quote_versions" }

// QuoteLineItemVersion snapshots one line item under a QuoteVersion.
type QuoteLineItemVersion struct {
	ID             snowflake.ID `gorm:"primaryKey"`
	OrgID          snowflake.ID `gorm:"column:org_id;not null;index"`
	QuoteVersionID snowflake.ID `gorm:"not null;index"`
	LineNumber     int          `gorm:"not null"`

	Description string  `gorm:"type:text;not null"`
	Unit        *string `gorm:"type:text"`

	Quantity  decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	UnitCost  decimal.Decimal `gorm:"type:numeric(20,6);not null"`

	TaxInclusive  bool               `gorm:"not null"`
	TaxRate       decimal.Decimal    `gorm:"type:numeric(6,4);not null"`
	DiscountType  money.DiscountType `gorm:"type:text;not null"`
	DiscountValue decimal.Decimal    `gorm:"type:numeric(20,6);not null"`

	Subtotal       decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	TaxableAmount  decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(20,6);not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (QuoteLineItemVersion) TableName() string { return "quote_line_item_versions" }

// CurrentVersionID reads the current version pointer from quote metadata.
func (q *Quote) CurrentVersionID() (snowflake.ID, bool) {
	if q.Metadata == nil {
		return 0, false
	}
	raw, ok := q.Metadata[MetadataKeyCurrentVersion].(string)
	if !ok {
		return 0, false
	}
	id, err := snowflake.ParseString(raw)
	if err != nil {
		return 0, false
	}
	return id, true
}

// SetCurrentVersionID updates the current version pointer in metadata.
func (q *Quote) SetCurrentVersionID(id snowflake.ID) {
	if q.Metadata == nil {
		q.Metadata = datatypes.JSONMap{}
	}
	q.Metadata[MetadataKeyCurrentVersion] = id.String()
}
