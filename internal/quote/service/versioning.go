package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quotient/internal/quote/domain"
	"github.com/smallbiznis/quotient/pkg/tenantctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListVersions returns the full version history of a quote, oldest
// first. The quote lookup doubles as the tenancy guard.
func (s *Service) ListVersions(ctx context.Context, id string) ([]domain.QuoteVersion, error) {
	tenant, ok := tenantctx.FromContext(ctx)
	if !ok {
		return nil, domain.ErrInvalidOrganization
	}
	quoteID, err := s.parseID(id)
	if err != nil {
		return nil, err
	}

	quote, err := s.repo.FindByID(ctx, s.db, tenant.OrgID, quoteID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, domain.ErrNotFound
	}
	return s.repo.ListVersions(ctx, s.db, tenant.OrgID, quoteID)
}

// snapshotVersion appends an immutable copy of the quote's current state
// and points quote metadata at it. It must run inside the caller's
// transaction so the snapshot and the edit commit together; the unique
// index on (quote_id, version_number) rejects concurrent writers and the
// caller's retry re-reads the max.
func (s *Service) snapshotVersion(ctx context.Context, tx *gorm.DB, quote *domain.Quote, lines []domain.QuoteLineItem, actor snowflake.ID) error {
	max, err := s.repo.MaxVersionNumber(ctx, tx, quote.OrgID, quote.ID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	version := domain.QuoteVersion{
		ID:            s.genID.Generate(),
		OrgID:         quote.OrgID,
		QuoteID:       quote.ID,
		VersionNumber: max + 1,

		CustomerID:  quote.CustomerID,
		QuoteNumber: quote.QuoteNumber,
		Title:       quote.Title,
		Description: quote.Description,
		Type:        quote.Type,
		Status:      quote.Status,

		Currency:     quote.Currency,
		ExchangeRate: quote.ExchangeRate,

		TaxRate:       quote.TaxRate,
		DiscountType:  quote.DiscountType,
		DiscountValue: quote.DiscountValue,

		Subtotal:       quote.Subtotal,
		DiscountAmount: quote.DiscountAmount,
		TaxAmount:      quote.TaxAmount,
		TotalAmount:    quote.TotalAmount,

		ValidFrom:  quote.ValidFrom,
		ValidUntil: quote.ValidUntil,
		Terms:      quote.Terms,
		Notes:      quote.Notes,

		CreatedBy: actor,
		CreatedAt: now,
	}

	lineVersions := make([]domain.QuoteLineItemVersion, 0, len(lines))
	for _, line := range lines {
		lineVersions = append(lineVersions, domain.QuoteLineItemVersion{
			ID:             s.genID.Generate(),
			OrgID:          line.OrgID,
			QuoteVersionID: version.ID,
			LineNumber:     line.LineNumber,

			Description: line.Description,
			Unit:        line.Unit,

			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			UnitCost:  line.UnitCost,

			TaxInclusive:  line.TaxInclusive,
			TaxRate:       line.TaxRate,
			DiscountType:  line.DiscountType,
			DiscountValue: line.DiscountValue,

			Subtotal:       line.Subtotal,
			DiscountAmount: line.DiscountAmount,
			TaxableAmount:  line.TaxableAmount,
			TaxAmount:      line.TaxAmount,
			TotalAmount:    line.TotalAmount,

			CreatedAt: now,
		})
	}

	if err := s.repo.InsertVersion(ctx, tx, &version, lineVersions); err != nil {
		return err
	}

	quote.SetCurrentVersionID(version.ID)
	if s.metrics != nil {
		s.metrics.VersionsCreated.Inc()
	}
	s.log.Info("quote version created",
		zap.String("quote_id", quote.ID.String()),
		zap.Int("version_number", version.VersionNumber),
	)
	return nil
}
