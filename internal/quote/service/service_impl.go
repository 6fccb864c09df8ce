package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/quotient/internal/customer/domain"
	"github.com/smallbiznis/quotient/internal/metrics"
	"github.com/smallbiznis/quotient/internal/money"
	"github.com/smallbiznis/quotient/internal/quote/domain"
	"github.com/smallbiznis/quotient/pkg/db"
	"github.com/smallbiznis/quotient/pkg/db/pagination"
	"github.com/smallbiznis/quotient/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	States       domain.StateMachine
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	repo         domain.Repository
	customerRepo customerdomain.Repository
	states       domain.StateMachine
	metrics      *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("quote.service"),
		genID:        p.GenID,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		states:       p.States,
		metrics:      p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateQuoteRequest) (domain.Quote, error) {
	tenant, ok := tenantctx.FromContext(ctx)
	if !ok {
		return domain.Quote{}, domain.ErrInvalidOrganization
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Quote{}, domain.ErrInvalidCustomer
	}
	customer, err := s.customerRepo.FindByID(ctx, s.db, tenant.OrgID, customerID)
	if err != nil {
		return domain.Quote{}, err
	}
	if customer == nil {
		return domain.Quote{}, domain.ErrInvalidCustomer
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Quote{}, domain.ErrInvalidTitle
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return domain.Quote{}, domain.ErrInvalidCurrency
	}
	exchangeRate := req.ExchangeRate
	if exchangeRate.IsZero() {
		exchangeRate = decimal.NewFromInt(1)
	}
	if exchangeRate.IsNegative() {
		return domain.Quote{}, domain.ErrInvalidExchangeRate
	}
	quoteType := strings.TrimSpace(req.Type)
	if quoteType == "" {
		quoteType = "standard"
	}

	now := time.Now().UTC()
	quote := domain.Quote{
		ID:            s.genID.Generate(),
		OrgID:         tenant.OrgID,
		CustomerID:    customerID,
		Title:         title,
		Description:   req.Description,
		Type:          quoteType,
		Status:        domain.StatusDraft,
		Currency:      currency,
		ExchangeRate:  exchangeRate,
		TaxRate:       req.TaxRate,
		DiscountType:  normalizeDiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		Terms:         req.Terms,
		Notes:         req.Notes,
		CreatedBy:     tenant.UserID,
		Metadata:      datatypes.JSONMap{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	lines, results, err := s.buildLineItems(tenant.OrgID, quote.ID, req.LineItems, currency, now)
	if err != nil {
		return domain.Quote{}, err
	}

	totals, err := money.AggregateLines(results, money.Discount{Type: quote.DiscountType, Value: quote.DiscountValue}, quote.TaxRate, currency)
	if err != nil {
		return domain.Quote{}, err
	}
	applyTotals(&quote, totals)

	err = db.RunWithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			number, err := s.repo.NextQuoteNumber(ctx, tx, tenant.OrgID)
			if err != nil {
				return err
			}
			quote.QuoteNumber = number
			return s.repo.Insert(ctx, tx, &quote, lines)
		})
	})
	if err != nil {
		return domain.Quote{}, err
	}

	s.log.Info("quote created",
		zap.String("quote_id", quote.ID.String()),
		zap.String("quote_number", quote.QuoteNumber),
		zap.String("org_id", tenant.OrgID.String()),
	)
	return quote, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateQuoteRequest) (domain.Quote, error) {
	tenant, ok := tenantctx.FromContext(ctx)
	if !ok {
		return domain.Quote{}, domain.ErrInvalidOrganization
	}
	quoteID, err := s.parseID(id)
	if err != nil {
		return domain.Quote{}, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.Quote{}, domain.ErrInvalidTitle
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return domain.Quote{}, domain.ErrInvalidCurrency
	}
	exchangeRate := req.ExchangeRate
	if exchangeRate.IsZero() {
		exchangeRate = decimal.NewFromInt(1)
	}
	if exchangeRate.IsNegative() {
		return domain.Quote{}, domain.ErrInvalidExchangeRate
	}
	req.Title = title
	req.Currency = currency
	req.ExchangeRate = exchangeRate
	req.DiscountType = normalizeDiscountType(req.DiscountType)
	if strings.TrimSpace(req.Type) == "" {
		req.Type = "standard"
	}
	// Assign line numbers up front so the material-change comparison sees
	// the same numbering the persisted rows will get.
	for i := range req.LineItems {
		if req.LineItems[i].LineNumber == 0 {
			req.LineItems[i].LineNumber = i + 1
		}
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
			lines, err := s.repo.FindLineItems(ctx, tx, tenant.OrgID, quote.ID)
			if err != nil {
				return err
			}

			lock := domain.CheckLock(quote, tenant)
			if lock.Locked && !lock.CanForceEdit {
				return domain.ErrLocked
			}

			material := domain.HasMaterialChanges(quote, lines, req)

			// Pre-edit snapshot: mandatory on force-edits of a locked
			// quote, and on material changes to an unlocked one.
			if lock.RequiresVersioning || (!lock.Locked && material) {
				if err := s.snapshotVersion(ctx, tx, quote, lines, tenant.UserID); err != nil {
					return err
				}
			}

			now := time.Now().UTC()
			newLines, results, err := s.buildLineItems(tenant.OrgID, quote.ID, req.LineItems, currency, now)
			if err != nil {
				return err
			}
			totals, err := money.AggregateLines(results, money.Discount{Type: req.DiscountType, Value: req.DiscountValue}, req.TaxRate, currency)
			if err != nil {
				return err
			}

			quote.Title = title
			quote.Description = req.Description
			quote.Type = req.Type
			quote.Currency = currency
			quote.ExchangeRate = exchangeRate
			quote.TaxRate = req.TaxRate
			quote.DiscountType = req.DiscountType
			quote.DiscountValue = req.DiscountValue
			quote.ValidFrom = req.ValidFrom
			quote.ValidUntil = req.ValidUntil
			quote.Terms = req.Terms
			quote.Notes = req.Notes
			quote.UpdatedAt = now
			applyTotals(quote, totals)

			if err := s.repo.Update(ctx, tx, quote); err != nil {
				return err
			}
			if err := s.repo.ReplaceLineItems(ctx, tx, tenant.OrgID, quote.ID, newLines); err != nil {
				return err
			}

			updated = *quote
			return nil
		})
	})
	if err != nil {
		return domain.Quote{}, err
	}
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Quote, error) {
	tenant, ok := tenantctx.FromContext(ctx)
	if !ok {
		return domain.Quote{}, domain.ErrInvalidOrganization
	}
	quoteID, err := s.parseID(id)
	if err != nil {
		return domain.Quote{}, err
	}

	quote, err := s.repo.FindByID(ctx, s.db, tenant.OrgID, quoteID)
	if err != nil {
		return domain.Quote{}, err
	}
	if quote == nil {
		return domain.Quote{}, domain.ErrNotFound
	}
	return *quote, nil
}

func (s *Service) List(ctx context.Context, req domain.ListQuoteRequest) (domain.ListQuoteResponse, error) {
	tenant, ok := tenantctx.FromContext(ctx)
	if !ok {
		return domain.ListQuoteResponse{}, domain.ErrInvalidOrganization
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, tenant.OrgID, domain.ListQuoteFilter{
		Status:     req.Status,
		CustomerID: strings.TrimSpace(req.CustomerID),
	}, pagination.Pagination{PageToken: req.PageToken, PageSize: pageSize})
	if err != nil {
		return domain.ListQuoteResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(quote *domain.Quote) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        quote.ID.String(),
			CreatedAt: quote.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	quotes := make([]domain.Quote, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		quotes = append(quotes, *item)
	}

	resp := domain.ListQuoteResponse{Quotes: quotes}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tenant, ok := tenantctx.FromContext(ctx)
	if !ok {
		return domain.ErrInvalidOrganization
	}
	quoteID, err := s.parseID(id)
	if err != nil {
		return err
	}

	return db.RunWithRetry(ctx, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			quote, err := s.repo.FindByID(ctx, tx, tenant.OrgID, quoteID)
			if err != nil {
				return err
			}
			if quote == nil {
				return domain.ErrNotFound
			}
			if quote.Status != domain.StatusDraft && !tenant.HasPermission(tenantctx.PermissionQuoteForceEdit) {
				return domain.ErrLocked
			}
			return s.repo.SoftDelete(ctx, tx, tenant.OrgID, quoteID, time.Now().UTC())
		})
	})
}

func (s *Service) ListLineItems(ctx context.Context, id string) ([]domain.QuoteLineItem, error) {
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
	return s.repo.FindLineItems(ctx, s.db, tenant.OrgID, quoteID)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

// buildLineItems validates every requested line through the calculator
// and materializes persistence rows with assigned line numbers.
func (s *Service) buildLineItems(orgID, quoteID snowflake.ID, inputs []domain.LineItemInput, currency string, now time.Time) ([]domain.QuoteLineItem, []money.LineResult, error) {
	lines := make([]domain.QuoteLineItem, 0, len(inputs))
	results := make([]money.LineResult, 0, len(inputs))
	seen := make(map[int]bool, len(inputs))

	for i, in := range inputs {
		lineNumber := in.LineNumber
		if lineNumber == 0 {
			lineNumber = i + 1
		}
		if lineNumber < 0 || seen[lineNumber] {
			return nil, nil, domain.ErrInvalidLineNumber
		}
		seen[lineNumber] = true

		result, err := money.CalculateLine(money.LineInput{
			Quantity:     in.Quantity,
			UnitPrice:    in.UnitPrice,
			Discount:     money.Discount{Type: normalizeDiscountType(in.DiscountType), Value: in.DiscountValue},
			TaxRate:      in.TaxRate,
			TaxInclusive: in.TaxInclusive,
			Currency:     currency,
		})
		if err != nil {
			return nil, nil, err
		}
		if in.UnitCost.IsNegative() {
			return nil, nil, money.ErrNegativeUnitPrice
		}

		lines = append(lines, domain.QuoteLineItem{
			ID:             s.genID.Generate(),
			OrgID:          orgID,
			QuoteID:        quoteID,
			LineNumber:     lineNumber,
			Description:    strings.TrimSpace(in.Description),
			Unit:           in.Unit,
			Quantity:       in.Quantity,
			UnitPrice:      in.UnitPrice,
			UnitCost:       in.UnitCost,
			TaxInclusive:   in.TaxInclusive,
			TaxRate:        in.TaxRate,
			DiscountType:   normalizeDiscountType(in.DiscountType),
			DiscountValue:  in.DiscountValue,
			Subtotal:       result.Subtotal,
			DiscountAmount: result.DiscountAmount,
			TaxableAmount:  result.TaxableAmount,
			TaxAmount:      result.TaxAmount,
			TotalAmount:    result.TotalAmount,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
		results = append(results, result)
	}

	return lines, results, nil
}

func applyTotals(quote *domain.Quote, totals money.QuoteTotals) {
	quote.Subtotal = totals.Subtotal
	quote.DiscountAmount = totals.DiscountAmount
	quote.TaxAmount = totals.TaxAmount
	quote.TotalAmount = totals.TotalAmount
}

func normalizeDiscountType(t money.DiscountType) money.DiscountType {
	if t == "" {
		return money.DiscountTypeNone
	}
	return t
}
