package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/quotient/internal/config"
	"github.com/smallbiznis/quotient/internal/idempotency/domain"
	"github.com/smallbiznis/quotient/pkg/db"
	"gorm.io/gorm"
)

// Provide picks the backing store. Redis serves deployments that want
// expiry handled by the store itself; the relational backend is the
// default and shares the service database.
func Provide(cfg config.Config, gdb *gorm.DB) domain.Repository {
	if cfg.RedisAddr != "" {
		return NewRedis(redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}))
	}
	return NewGorm(gdb)
}

type gormRepo struct {
	db *gorm.DB
}

func NewGorm(gdb *gorm.DB) domain.Repository {
	return &gormRepo{db: gdb}
}

func (r *gormRepo) Find(ctx context.Context, orgID snowflake.ID, key string) (*domain.Record, error) {
	var record domain.Record
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND key = ?", orgID, key).
		Limit(1).
		Find(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *gormRepo) Insert(ctx context.Context, record *domain.Record) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil && db.IsDuplicateKeyErr(err) {
		return domain.ErrDuplicateRecord
	}
	return err
}

func (r *gormRepo) DeleteIfExpired(ctx context.Context, orgID snowflake.ID, key string, now time.Time) error {
	return r.db.WithContext(ctx).
		Where("org_id = ? AND key = ? AND expires_at <= ?", orgID, key, now).
		Delete(&domain.Record{}).Error
}

func (r *gormRepo) Count(ctx context.Context, orgID snowflake.ID, now time.Time) (int64, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("org_id = ?", orgID).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	var active int64
	err = r.db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("org_id = ? AND expires_at > ?", orgID, now).
		Count(&active).Error
	if err != nil {
		return 0, 0, err
	}
	return total, active, nil
}

func (r *gormRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Record{})
	return result.RowsAffected, result.Error
}
