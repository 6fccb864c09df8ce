package idempotency

import (
	"github.com/smallbiznis/quotient/internal/idempotency/repository"
	"github.com/smallbiznis/quotient/internal/idempotency/service"
	"github.com/smallbiznis/quotient/internal/idempotency/worker"
	"go.uber.org/fx"
)

var Module = fx.Module("idempotency.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(worker.New),
	fx.Invoke(func(*worker.Sweeper) {}),
)
