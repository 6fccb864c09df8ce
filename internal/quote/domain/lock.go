package domain

import "github.com/smallbiznis/quotient/pkg/tenantctx"

// LockDecision answers whether a quote may be edited in its current
// status, and on what terms.
type LockDecision struct {
	Locked             bool
	CanForceEdit       bool
	RequiresVersioning bool
}

// CheckLock applies the lock policy: approved and accepted quotes are
// locked. A locked quote may only be edited by an actor holding the
// force-edit capability, and then only after the pre-edit state has been
// snapshot into a version.
func CheckLock(q *Quote, tenant tenantctx.TenantContext) LockDecision {
	locked := q.Status == StatusApproved || q.Status == StatusAccepted
	canForce := tenant.HasPermission(tenantctx.PermissionQuoteForceEdit)
	return LockDecision{
		Locked:             locked,
		CanForceEdit:       canForce,
		RequiresVersioning: locked && canForce,
	}
}
