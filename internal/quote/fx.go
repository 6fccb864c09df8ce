package quote

import (
	"github.com/smallbiznis/quotient/internal/quote/domain"
	"github.com/smallbiznis/quotient/internal/quote/repository"
	"github.com/smallbiznis/quotient/internal/quote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quote.service",
	fx.Provide(repository.Provide),
	fx.Provide(func() domain.StateMachine { return domain.NewStateMachine(nil) }),
	fx.Provide(service.New),
)
