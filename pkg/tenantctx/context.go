// Package tenantctx binds the calling organization and actor into a
// request context. Every service operation resolves its tenant from
// here; an absent tenant is always a hard failure, never a fallback to
// a default organization.
package tenantctx

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// PermissionQuoteForceEdit allows editing and deleting quotes that are
// locked by their status.
const PermissionQuoteForceEdit = "quotes:force_edit"

type contextKey struct{}

// TenantContext identifies the organization and actor behind a request.
type TenantContext struct {
	OrgID       snowflake.ID
	UserID      snowflake.ID
	Permissions []string
}

// HasPermission reports whether the actor holds the named permission.
func (t TenantContext) HasPermission(name string) bool {
	name = strings.TrimSpace(name)
	for _, p := range t.Permissions {
		if strings.EqualFold(strings.TrimSpace(p), name) {
			return true
		}
	}
	return false
}

// WithTenant returns a context carrying the tenant.
func WithTenant(ctx context.Context, tenant TenantContext) context.Context {
	return context.WithValue(ctx, contextKey{}, tenant)
}

// FromContext extracts the tenant. The second result is false when no
// tenant is bound or the organization is missing.
func FromContext(ctx context.Context) (TenantContext, bool) {
	tenant, ok := ctx.Value(contextKey{}).(TenantContext)
	if !ok || tenant.OrgID == 0 {
		return TenantContext{}, false
	}
	return tenant, true
}
