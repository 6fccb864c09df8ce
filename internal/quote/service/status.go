package service

import (
	"context"
	"time"

	"github.com/smallbiznis/quotient/internal/quote/domain"
	"github.com/smallbiznis/quotient/pkg/db"
	"github.com/smallbiznis/quotient/pkg/tenantctx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TransitionStatus moves a quote to target and stamps the approval, sent
// and accepted markers inside the same transaction. Requesting the
// current status succeeds without touching the row.
func (s *Service) TransitionStatus(ctx context.Context, id string, target domain.Status) (domain.Quote, error) {
	tenant, ok := tenantctx.FromContext(ctx)
	if !ok {
		return domain.Quote{}, domain.ErrInvalidOrganization
	}
	quoteID, err := s.parseID(id)
	if err != nil {
		return domain.Quote{}, err
	}
	if !target.Valid() {
		return domain.Quote{}, domain.ErrInvalidStatus
	}

	var updated domain.Quote
	err = db.RunWithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			quote, err := s.repo.FindByID(ctx, tx, tenant.OrgID, quoteID)
			if err != nil {
				return err
			}
			if quote == nil {
				return domain.ErrNotFound
			}

			if quote.Status == target {
				updated = *quote
				return nil
			}

			from := quote.Status
			if err := s.states.Validate(from, target); err != nil {
				return err
			}

			now := time.Now().UTC()
			switch target {
			case domain.StatusApproved:
				actor := tenant.UserID
				quote.ApprovedBy = &actor
				quote.ApprovedAt = &now
			case domain.StatusSent:
				quote.SentAt = &now
			case domain.StatusAccepted:
				quote.AcceptedAt = &now
			}
			quote.Status = target
			quote.UpdatedAt = now

			if err := s.repo.Update(ctx, tx, quote); err != nil {
				return err
			}

			if s.metrics != nil {
				s.metrics.StatusTransitions.WithLabelValues(string(from), string(target)).Inc()
			}
			s.log.Info("quote status changed",
				zap.String("quote_id", quote.ID.String()),
				zap.String("from", string(from)),
				zap.String("to", string(target)),
			)

			updated = *quote
			return nil
		})
	})
	if err != nil {
		return domain.Quote{}, err
	}
	return updated, nil
}
