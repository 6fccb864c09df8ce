package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/redis/go-redis/v9"
	"github.com/smallbiznis/quotient/internal/idempotency/domain"
)

type redisRepo struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) domain.Repository {
	return &redisRepo{client: client}
}

func recordKey(orgID snowflake.ID, key string) string {
	return fmt.Sprintf("idem:%s:%s", orgID.String(), key)
}

func (r *redisRepo) Find(ctx context.Context, orgID snowflake.ID, key string) (*domain.Record, error) {
	raw, err := r.client.Get(ctx, recordKey(orgID, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record domain.Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *redisRepo) Insert(ctx context.Context, record *domain.Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}

	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	ok, err := r.client.SetNX(ctx, recordKey(record.OrgID, record.Key), raw, ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrDuplicateRecord
	}
	return nil
}

// DeleteIfExpired is a no-op: redis evicts by TTL, so Find never
// surfaces an expired record in the first place.
func (r *redisRepo) DeleteIfExpired(ctx context.Context, orgID snowflake.ID, key string, _ time.Time) error {
	return nil
}

// Count reports total == active: redis evicts expired records itself,
// so none linger.
func (r *redisRepo) Count(ctx context.Context, orgID snowflake.ID, _ time.Time) (int64, int64, error) {
	var (
		cursor uint64
		count  int64
	)
	pattern := recordKey(orgID, "*")
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 500).Result()
		if err != nil {
			return 0, 0, err
		}
		count += int64(len(keys))
		if next == 0 {
			return count, count, nil
		}
		cursor = next
	}
}

// DeleteExpired is a no-op: redis evicts records by TTL on its own.
func (r *redisRepo) DeleteExpired(ctx context.Context, _ time.Time) (int64, error) {
	return 0, nil
}
