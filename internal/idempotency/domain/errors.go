package domain

import "errors"

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidKey          = errors.New("invalid_idempotency_key")
	ErrConflict            = errors.New("idempotency_key_conflict")

	// ErrDuplicateRecord is the store-level signal that another writer
	// won the race for the same (org_id, key).
	ErrDuplicateRecord = errors.New("duplicate_idempotency_record")
)
