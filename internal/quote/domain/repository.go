package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quotient/pkg/db/pagination"
	"gorm.io/gorm"
)

// Repository is the persistence contract for quotes and their versions.
// Implementations must include org_id in every predicate and exclude
// soft-deleted quotes from all reads.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quote *Quote, lines []QuoteLineItem) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Quote, error)
	FindLineItems(ctx context.Context, db *gorm.DB, orgID, quoteID snowflake.ID) ([]QuoteLineItem, error)
	List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter ListQuoteFilter, page pagination.Pagination) ([]*Quote, error)
	Update(ctx context.Context, db *gorm.DB, quote *Quote) error
	ReplaceLineItems(ctx context.Context, db *gorm.DB, orgID, quoteID snowflake.ID, lines []QuoteLineItem) error
	SoftDelete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, at time.Time) error
	NextQuoteNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (string, error)

	MaxVersionNumber(ctx context.Context, db *gorm.DB, orgID, quoteID snowflake.ID) (int, error)
	InsertVersion(ctx context.Context, db *gorm.DB, version *QuoteVersion, lines []QuoteLineItemVersion) error
	ListVersions(ctx context.Context, db *gorm.DB, orgID, quoteID snowflake.ID) ([]QuoteVersion, error)
}
