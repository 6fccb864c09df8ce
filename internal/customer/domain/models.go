package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Customer is an org-scoped billing contact quotes are issued to.
type Customer struct {
	ID       snowflake.ID      `gorm:"primaryKey"`
	OrgID    snowflake.ID      `gorm:"column:org_id;not null;index"`
	Name     string            `gorm:"type:text;not null"`
	Email    string            `gorm:"type:text;not null"`
	Currency string            `gorm:"type:text"`
	Metadata datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
