// Package domain contains the replay cache model and contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Record is one cached response, keyed by (org_id, key). Rows are
// written once and never updated; expiry is handled by the sweeper.
type Record struct {
	ID    snowflake.ID `gorm:"primaryKey"`
	OrgID snowflake.ID `gorm:"column:org_id;not null;uniqueIndex:ux_idem_org_key,priority:1"`
	Key   string       `gorm:"type:text;not null;uniqueIndex:ux_idem_org_key,priority:2"`

	RequestHash  string `gorm:"type:text;not null"`
	Method       string `gorm:"type:text;not null"`
	Path         string `gorm:"type:text;not null"`
	StatusCode   int    `gorm:"not null"`
	ResponseBody []byte `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "idempotency_records" }

// Expired reports whether the record is past its TTL at the given time.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
