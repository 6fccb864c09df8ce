package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/quotient/internal/customer/domain"
	"github.com/smallbiznis/quotient/internal/customer/repository"
	"github.com/smallbiznis/quotient/pkg/tenantctx"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (domain.Service, *snowflake.Node) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	assert.NoError(t, err)

	svc := New(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: repository.Provide()})
	return svc, node
}

func ctxFor(orgID snowflake.ID) context.Context {
	return tenantctx.WithTenant(context.Background(), tenantctx.TenantContext{OrgID: orgID, UserID: 1})
}

func TestCreateAndGetCustomer(t *testing.T) {
	svc, node := newService(t)
	ctx := ctxFor(node.Generate())

	created, err := svc.Create(ctx, domain.CreateCustomerRequest{
		Name:     "  Acme Ltd  ",
		Email:    "billing@acme.test",
		Currency: "usd",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Acme Ltd", created.Name)
	assert.Equal(t, "USD", created.Currency)

	found, err := svc.GetByID(ctx, created.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestCustomerValidation(t *testing.T) {
	svc, node := newService(t)
	ctx := ctxFor(node.Generate())

	_, err := svc.Create(ctx, domain.CreateCustomerRequest{Name: "", Email: "a@b.c"})
	assert.ErrorIs(t, err, domain.ErrInvalidName)

	_, err = svc.Create(ctx, domain.CreateCustomerRequest{Name: "Acme", Email: "not-an-email"})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)

	_, err = svc.Create(context.Background(), domain.CreateCustomerRequest{Name: "Acme", Email: "a@b.c"})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestCustomerTenantIsolation(t *testing.T) {
	svc, node := newService(t)
	orgA := node.Generate()
	orgB := node.Generate()

	created, err := svc.Create(ctxFor(orgA), domain.CreateCustomerRequest{Name: "Acme", Email: "a@b.c"})
	assert.NoError(t, err)

	_, err = svc.GetByID(ctxFor(orgB), created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.List(ctxFor(orgB), domain.ListCustomerRequest{})
	assert.NoError(t, err)
	assert.Empty(t, list)
}
