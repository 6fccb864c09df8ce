package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/quotient/internal/config"
	customerdomain "github.com/smallbiznis/quotient/internal/customer/domain"
	customerrepository "github.com/smallbiznis/quotient/internal/customer/repository"
	customerservice "github.com/smallbiznis/quotient/internal/customer/service"
	idempotencydomain "github.com/smallbiznis/quotient/internal/idempotency/domain"
	idempotencyrepository "github.com/smallbiznis/quotient/internal/idempotency/repository"
	idempotencyservice "github.com/smallbiznis/quotient/internal/idempotency/service"
	quotedomain "github.com/smallbiznis/quotient/internal/quote/domain"
	quoterepository "github.com/smallbiznis/quotient/internal/quote/repository"
	quoteservice "github.com/smallbiznis/quotient/internal/quote/service"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	engine *gin.Engine
	node   *snowflake.Node
	orgID  snowflake.ID
	userID snowflake.ID
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)

	err = db.AutoMigrate(
		&customerdomain.Customer{},
		&quotedomain.Quote{},
		&quotedomain.QuoteLineItem{},
		&quotedomain.QuoteVersion{},
		&quotedomain.QuoteLineItemVersion{},
		&idempotencydomain.Record{},
	)
	assert.NoError(t, err)

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	cfg := config.Config{
		IdempotencyTTL:          time.Hour,
		IdempotencyMaxKeyLength: 255,
	}
	log := zap.NewNop()

	customerRepo := customerrepository.Provide()
	customerSvc := customerservice.New(customerservice.Params{
		DB: db, Log: log, GenID: node, Repo: customerRepo,
	})
	quoteSvc := quoteservice.New(quoteservice.Params{
		DB:           db,
		Log:          log,
		GenID:        node,
		Repo:         quoterepository.Provide(),
		CustomerRepo: customerRepo,
		States:       quotedomain.NewStateMachine(nil),
	})
	idempotencySvc := idempotencyservice.New(idempotencyservice.Params{
		Config: cfg,
		Log:    log,
		GenID:  node,
		Repo:   idempotencyrepository.NewGorm(db),
	})

	engine := NewEngine(cfg, log)
	NewServer(ServerParams{
		Gin:            engine,
		Cfg:            cfg,
		Log:            log,
		DB:             db,
		GenID:          node,
		QuoteSvc:       quoteSvc,
		CustomerSvc:    customerSvc,
		IdempotencySvc: idempotencySvc,
	})

	return &testServer{
		engine: engine,
		node:   node,
		orgID:  node.Generate(),
		userID: node.Generate(),
	}
}

func (s *testServer) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Org-ID", s.orgID.String())
	req.Header.Set("X-User-ID", s.userID.String())
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) createCustomer(t *testing.T) string {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/customers", map[string]any{
		"name":     "Acme Ltd",
		"email":    "billing@acme.test",
		"currency": "USD",
	}, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			ID snowflake.ID `json:"ID"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Data.ID.String()
}

func quotePayload(customerID string) map[string]any {
	return map[string]any{
		"customer_id": customerID,
		"title":       "Website build",
		"currency":    "USD",
		"line_items": []map[string]any{
			{
				"description": "Design",
				"quantity":    "40",
				"unit_price":  "150.00",
				"tax_rate":    "0.15",
			},
		},
	}
}

func TestTenantHeaderRequired(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/quotes", nil)
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestCreateQuoteEndpoint(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t)

	rec := s.do(http.MethodPost, "/api/quotes", quotePayload(customerID), nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Q-000001")
	assert.Contains(t, rec.Body.String(), `"Status":"draft"`)
}

func TestIdempotentCreateReplays(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t)
	headers := map[string]string{"Idempotency-Key": "create-1"}

	first := s.do(http.MethodPost, "/api/quotes", quotePayload(customerID), headers)
	assert.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := s.do(http.MethodPost, "/api/quotes", quotePayload(customerID), headers)
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotency-Replayed"))
	assert.Equal(t, first.Body.String(), second.Body.String(), "replay returns the original response")

	// Only one quote exists despite two requests.
	list := s.do(http.MethodGet, "/api/quotes?page_size=10", nil, nil)
	assert.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, 1, strings.Count(list.Body.String(), `"QuoteNumber"`))
}

func TestIdempotencyKeyConflict(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t)
	headers := map[string]string{"Idempotency-Key": "create-1"}

	first := s.do(http.MethodPost, "/api/quotes", quotePayload(customerID), headers)
	assert.Equal(t, http.StatusOK, first.Code)

	payload := quotePayload(customerID)
	payload["title"] = "Different title"
	second := s.do(http.MethodPost, "/api/quotes", payload, headers)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "idempotency_key_conflict")
}

func TestIdempotencyKeyConflictOnDifferentQuery(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t)
	headers := map[string]string{"Idempotency-Key": "create-1"}

	first := s.do(http.MethodPost, "/api/quotes?channel=web", quotePayload(customerID), headers)
	assert.Equal(t, http.StatusOK, first.Code, first.Body.String())

	// Same key and body but a different query string is a different
	// request, so it must conflict rather than replay.
	second := s.do(http.MethodPost, "/api/quotes?channel=mobile", quotePayload(customerID), headers)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Contains(t, second.Body.String(), "idempotency_key_conflict")
	assert.Empty(t, second.Header().Get("Idempotency-Replayed"))
}

func TestInvalidTransitionEndpoint(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t)

	rec := s.do(http.MethodPost, "/api/quotes", quotePayload(customerID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			ID snowflake.ID `json:"ID"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	transition := s.do(http.MethodPost, "/api/quotes/"+resp.Data.ID.String()+"/status",
		map[string]any{"status": "accepted"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, transition.Code)
	assert.Contains(t, transition.Body.String(), "invalid_transition")
}

func TestValidationErrorShape(t *testing.T) {
	s := newTestServer(t)
	customerID := s.createCustomer(t)

	payload := quotePayload(customerID)
	payload["title"] = ""
	rec := s.do(http.MethodPost, "/api/quotes", payload, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var resp errorResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "validation_error", resp.Error.Type)
	if assert.NotEmpty(t, resp.Error.Errors) {
		assert.Equal(t, "invalid_title", resp.Error.Errors[0].Code)
		assert.Equal(t, "title", resp.Error.Errors[0].Field)
	}
}

func TestUnknownQuoteReturnsNotFound(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/quotes/"+s.node.Generate().String(), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
}
