package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quotient/internal/quote/domain"
	"github.com/smallbiznis/quotient/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quote *domain.Quote, lines []domain.QuoteLineItem) error {
	if err := db.WithContext(ctx).Create(quote).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&lines).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Quote, error) {
	var quote domain.Quote
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ? AND deleted_at IS NULL", orgID, id).
		Limit(1).
		Find(&quote).Error
	if err != nil {
		return nil, err
	}
	if quote.ID == 0 {
		return nil, nil
	}
	return &quote, nil
}

func (r *repo) FindLineItems(ctx context.Context, db *gorm.DB, orgID, quoteID snowflake.ID) ([]domain.QuoteLineItem, error) {
	var lines []domain.QuoteLineItem
	err := db.WithContext(ctx).
		Where("org_id = ? AND quote_id = ?", orgID, quoteID).
		Order("line_number asc").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, orgID snowflake.ID, filter domain.ListQuoteFilter, page pagination.Pagination) ([]*domain.Quote, error) {
	stmt := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("org_id = ? AND deleted_at IS NULL", orgID)

	if filter.Status != nil {
		stmt = stmt.Where("status = ?", *filter.Status)
	}
	if filter.CustomerID != "" {
		customerID, err := snowflake.ParseString(filter.CustomerID)
		if err != nil {
			return nil, domain.ErrInvalidCustomer
		}
		stmt = stmt.Where("customer_id = ?", customerID)
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		lastID, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("(created_at, id) < (?, ?)", createdAt, lastID)
	}

	// one lookahead row to detect more pages
	var quotes []*domain.Quote
	err := stmt.
		Order("created_at desc, id desc").
		Limit(page.PageSize + 1).
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	result := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("org_id = ? AND id = ? AND deleted_at IS NULL", quote.OrgID, quote.ID).
		Select("*").
		Omit("id", "org_id", "created_at", "created_by", "quote_number").
		Updates(quote)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) ReplaceLineItems(ctx context.Context, db *gorm.DB, orgID, quoteID snowflake.ID, lines []domain.QuoteLineItem) error {
	err := db.WithContext(ctx).
		Where("org_id = ? AND quote_id = ?", orgID, quoteID).
		Delete(&domain.QuoteLineItem{}).Error
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&lines).Error
}

func (r *repo) SoftDelete(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, at time.Time) error {
	result := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("org_id = ? AND id = ? AND deleted_at IS NULL", orgID, id).
		Updates(map[string]any{"deleted_at": at, "updated_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// NextQuoteNumber derives the next human-facing number from the per-org
// row count. The unique index on (org_id, quote_number) backstops
// concurrent creates; callers retry on duplicate-key.
func (r *repo) NextQuoteNumber(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (string, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("org_id = ?", orgID).
		Count(&count).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Q-%06d", count+1), nil
}

func (r *repo) MaxVersionNumber(ctx context.Context, db *gorm.DB, orgID, quoteID snowflake.ID) (int, error) {
	var max *int
	err := db.WithContext(ctx).
		Model(&domain.QuoteVersion{}).
		Where("org_id = ? AND quote_id = ?", orgID, quoteID).
		Select("MAX(version_number)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (r *repo) InsertVersion(ctx context.Context, db *gorm.DB, version *domain.QuoteVersion, lines []domain.QuoteLineItemVersion) error {
	if err := db.WithContext(ctx).Create(version).Error; err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&lines).Error
}

func (r *repo) ListVersions(ctx context.Context, db *gorm.DB, orgID, quoteID snowflake.ID) ([]domain.QuoteVersion, error) {
	var versions []domain.QuoteVersion
	err := db.WithContext(ctx).
		Where("org_id = ? AND quote_id = ?", orgID, quoteID).
		Order("version_number asc").
		Find(&versions).Error
	if err != nil {
		return nil, err
	}
	return versions, nil
}
