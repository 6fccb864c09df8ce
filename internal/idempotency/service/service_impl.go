package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/quotient/internal/config"
	"github.com/smallbiznis/quotient/internal/idempotency/domain"
	"github.com/smallbiznis/quotient/internal/metrics"
	"github.com/smallbiznis/quotient/pkg/tenantctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Config  config.Config
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	cfg     config.Config
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		cfg:     p.Config,
		log:     p.Log.Named("idempotency.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		metrics: p.Metrics,
	}
}

// Fingerprint hashes the parts of a request that must match for a key
// to be replayed: method, request URI (path and query) and body.
func (s *Service) Fingerprint(method, uri string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(uri))
	h.Write([]byte{'\n'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Service) Check(ctx context.Context, key, fingerprint string) (domain.CheckResult, error) {
	tenant, ok := tenantctx.FromContext(ctx)
	if !ok {
		return domain.CheckResult{}, domain.ErrInvalidOrganization
	}
	key, err := s.validateKey(key)
	if err != nil {
		return domain.CheckResult{}, err
	}

	record, err := s.repo.Find(ctx, tenant.OrgID, key)
	if err != nil {
		return domain.CheckResult{}, err
	}
	now := time.Now().UTC()
	if record == nil || record.Expired(now) {
		if record != nil {
			// Free the unique (org_id, key) slot so the retry that
			// follows this miss can cache its fresh response.
			if err := s.repo.DeleteIfExpired(ctx, tenant.OrgID, key, now); err != nil {
				s.log.Warn("expired idempotency record not removed", zap.Error(err))
			}
		}
		s.countMiss()
		return domain.CheckResult{}, nil
	}
	if record.RequestHash != fingerprint {
		s.countConflict()
		return domain.CheckResult{}, domain.ErrConflict
	}

	s.countHit()
	return domain.CheckResult{
		Hit:          true,
		StatusCode:   record.StatusCode,
		ResponseBody: record.ResponseBody,
	}, nil
}

// Store caches a completed response. A lost race against a concurrent
// writer of the same key is not an error: the first writer's response
// is the canonical one.
func (s *Service) Store(ctx context.Context, key, fingerprint, method, uri string, statusCode int, body []byte) error {
	tenant, ok := tenantctx.FromContext(ctx)
	if !ok {
		return domain.ErrInvalidOrganization
	}
	key, err := s.validateKey(key)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	record := domain.Record{
		ID:           s.genID.Generate(),
		OrgID:        tenant.OrgID,
		Key:          key,
		RequestHash:  fingerprint,
		Method:       method,
		Path:         uri,
		StatusCode:   statusCode,
		ResponseBody: body,
		CreatedAt:    now,
		ExpiresAt:    now.Add(s.cfg.IdempotencyTTL),
	}

	err = s.repo.Insert(ctx, &record)
	if err == domain.ErrDuplicateRecord {
		s.log.Debug("idempotency record already stored",
			zap.String("org_id", tenant.OrgID.String()),
			zap.String("key", key),
		)
		return nil
	}
	return err
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	tenant, ok := tenantctx.FromContext(ctx)
	if !ok {
		return domain.Stats{}, domain.ErrInvalidOrganization
	}

	total, active, err := s.repo.Count(ctx, tenant.OrgID, time.Now().UTC())
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.Stats{
		TotalRecords:   total,
		ActiveRecords:  active,
		ExpiredRecords: total - active,
		TTL:            s.cfg.IdempotencyTTL,
	}, nil
}

func (s *Service) Sweep(ctx context.Context) (int64, error) {
	removed, err := s.repo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.log.Info("expired idempotency records removed", zap.Int64("count", removed))
	}
	return removed, nil
}

func (s *Service) validateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > s.cfg.IdempotencyMaxKeyLength {
		return "", domain.ErrInvalidKey
	}
	return key, nil
}

func (s *Service) countHit() {
	if s.metrics != nil {
		s.metrics.IdempotencyHits.Inc()
	}
}

func (s *Service) countMiss() {
	if s.metrics != nil {
		s.metrics.IdempotencyMisses.Inc()
	}
}

func (s *Service) countConflict() {
	if s.metrics != nil {
		s.metrics.IdempotencyConflicts.Inc()
	}
}
