package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/quotient/internal/config"
	"github.com/smallbiznis/quotient/internal/customer"
	customerdomain "github.com/smallbiznis/quotient/internal/customer/domain"
	"github.com/smallbiznis/quotient/internal/idempotency"
	idempotencydomain "github.com/smallbiznis/quotient/internal/idempotency/domain"
	"github.com/smallbiznis/quotient/internal/quote"
	quotedomain "github.com/smallbiznis/quotient/internal/quote/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	customer.Module,
	quote.Module,
	idempotency.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger) *gin.Engine {
	return NewEngine(cfg, log)
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    net.JoinHostPort("", cfg.HTTPPort),
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	db             *gorm.DB
	genID          *snowflake.Node
	quoteSvc       quotedomain.Service
	customerSvc    customerdomain.Service
	idempotencySvc idempotencydomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	DB             *gorm.DB
	GenID          *snowflake.Node
	QuoteSvc       quotedomain.Service
	CustomerSvc    customerdomain.Service
	IdempotencySvc idempotencydomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("server"),
		db:             p.DB,
		genID:          p.GenID,
		quoteSvc:       p.QuoteSvc,
		customerSvc:    p.CustomerSvc,
		idempotencySvc: p.IdempotencySvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(TenantRequired())

	customers := api.Group("/customers")
	customers.POST("", s.CreateCustomer)
	customers.GET("", s.ListCustomers)
	customers.GET("/:id", s.GetCustomerByID)

	quotes := api.Group("/quotes")
	quotes.GET("", s.ListQuotes)
	quotes.GET("/:id", s.GetQuoteByID)
	quotes.GET("/:id/line_items", s.ListQuoteLineItems)
	quotes.GET("/:id/versions", s.ListQuoteVersions)

	// Unsafe quote operations participate in the replay cache.
	mutating := quotes.Group("")
	mutating.Use(s.IdempotencyMiddleware())
	mutating.POST("", s.CreateQuote)
	mutating.PUT("/:id", s.UpdateQuote)
	mutating.POST("/:id/status", s.TransitionQuoteStatus)
	mutating.DELETE("/:id", s.DeleteQuote)

	api.GET("/idempotency/stats", s.GetIdempotencyStats)
}
