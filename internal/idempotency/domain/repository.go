package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Repository is the storage contract for cached responses. Insert must
// return ErrDuplicateRecord when (org_id, key) already exists so the
// first writer wins.
type Repository interface {
	Find(ctx context.Context, orgID snowflake.ID, key string) (*Record, error)
	Insert(ctx context.Context, record *Record) error
	// DeleteIfExpired removes the record for (org_id, key) only when it
	// expired before now. A live record is left untouched.
	DeleteIfExpired(ctx context.Context, orgID snowflake.ID, key string, now time.Time) error
	Count(ctx context.Context, orgID snowflake.ID, now time.Time) (total, active int64, err error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
