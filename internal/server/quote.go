package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/quotient/internal/money"
	quotedomain "github.com/smallbiznis/quotient/internal/quote/domain"
	"github.com/smallbiznis/quotient/pkg/db/pagination"
)

type lineItemRequest struct {
	LineNumber    int             `json:"line_number"`
	Description   string          `json:"description"`
	Unit          *string         `json:"unit"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	TaxInclusive  bool            `json:"tax_inclusive"`
	TaxRate       decimal.Decimal `json:"tax_rate"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`
}

type quoteRequest struct {
	CustomerID  string  `json:"customer_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Type        string  `json:"type"`

	Currency     string          `json:"currency"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`

	TaxRate       decimal.Decimal `json:"tax_rate"`
	DiscountType  string          `json:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value"`

	ValidFrom  *time.Time `json:"valid_from"`
	ValidUntil *time.Time `json:"valid_until"`
	Terms      *string    `json:"terms"`
	Notes      *string    `json:"notes"`

	LineItems []lineItemRequest `json:"line_items"`
}

func (r quoteRequest) lineInputs() []quotedomain.LineItemInput {
	lines := make([]quotedomain.LineItemInput, 0, len(r.LineItems))
	for _, item := range r.LineItems {
		lines = append(lines, quotedomain.LineItemInput{
			LineNumber:    item.LineNumber,
			Description:   item.Description,
			Unit:          item.Unit,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			UnitCost:      item.UnitCost,
			TaxInclusive:  item.TaxInclusive,
			TaxRate:       item.TaxRate,
			DiscountType:  money.DiscountType(item.DiscountType),
			DiscountValue: item.DiscountValue,
		})
	}
	return lines
}

func (s *Server) CreateQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Create(c.Request.Context(), quotedomain.CreateQuoteRequest{
		CustomerID:    strings.TrimSpace(req.CustomerID),
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		Currency:      req.Currency,
		ExchangeRate:  req.ExchangeRate,
		TaxRate:       req.TaxRate,
		DiscountType:  money.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		Terms:         req.Terms,
		Notes:         req.Notes,
		LineItems:     req.lineInputs(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Update(c.Request.Context(), strings.TrimSpace(c.Param("id")), quotedomain.UpdateQuoteRequest{
		Title:         req.Title,
		Description:   req.Description,
		Type:          req.Type,
		Currency:      req.Currency,
		ExchangeRate:  req.ExchangeRate,
		TaxRate:       req.TaxRate,
		DiscountType:  money.DiscountType(req.DiscountType),
		DiscountValue: req.DiscountValue,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		Terms:         req.Terms,
		Notes:         req.Notes,
		LineItems:     req.lineInputs(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetQuoteByID(c *gin.Context) {
	resp, err := s.quoteSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListQuotes(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	req := quotedomain.ListQuoteRequest{
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
		CustomerID: strings.TrimSpace(query.CustomerID),
	}
	if raw := strings.TrimSpace(query.Status); raw != "" {
		status := quotedomain.Status(raw)
		if !status.Valid() {
			AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
			return
		}
		req.Status = &status
	}

	resp, err := s.quoteSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteQuote(c *gin.Context) {
	if err := s.quoteSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

type transitionRequest struct {
	Status string `json:"status"`
}

func (s *Server) TransitionQuoteStatus(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	target := quotedomain.Status(strings.ToLower(strings.TrimSpace(req.Status)))
	resp, err := s.quoteSvc.TransitionStatus(c.Request.Context(), strings.TrimSpace(c.Param("id")), target)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListQuoteVersions(c *gin.Context) {
	resp, err := s.quoteSvc.ListVersions(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListQuoteLineItems(c *gin.Context) {
	resp, err := s.quoteSvc.ListLineItems(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
