package domain

import (
	"context"
	"time"
)

// CheckResult reports whether a cached response exists for the key.
type CheckResult struct {
	Hit          bool
	StatusCode   int
	ResponseBody []byte
}

// Stats summarizes the replay cache for one organization. Expired
// records linger until the sweeper runs, so total can exceed active.
type Stats struct {
	TotalRecords   int64         `json:"total_records"`
	ActiveRecords  int64         `json:"active_records"`
	ExpiredRecords int64         `json:"expired_records"`
	TTL            time.Duration `json:"ttl"`
}

// Service is the idempotency contract consumed by the HTTP layer.
// Check runs before the handler; Store runs after a successful one.
// A key replayed with a different request fingerprint is a conflict,
// never a silent replay of the earlier response.
type Service interface {
	// Fingerprint hashes method, request URI (path and query) and body.
	Fingerprint(method, uri string, body []byte) string
	Check(ctx context.Context, key, fingerprint string) (CheckResult, error)
	Store(ctx context.Context, key, fingerprint, method, uri string, statusCode int, body []byte) error
	Stats(ctx context.Context) (Stats, error)
	Sweep(ctx context.Context) (int64, error)
}
