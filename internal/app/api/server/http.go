package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/salesreport/docs"
	"github.com/fatflowers/salesreport/internal/app/api/handlers"
	mw "github.com/fatflowers/salesreport/internal/app/api/middleware"
	"github.com/fatflowers/salesreport/internal/app/service/account"
	"github.com/fatflowers/salesreport/internal/app/service/analytics"
	"github.com/fatflowers/salesreport/internal/app/service/entitlement"
	"github.com/fatflowers/salesreport/internal/app/service/gamification"
	"github.com/fatflowers/salesreport/internal/app/service/generation"
	"github.com/fatflowers/salesreport/internal/app/service/history"
	"github.com/fatflowers/salesreport/internal/app/service/referral"
	"github.com/fatflowers/salesreport/internal/app/service/verification"
	"github.com/fatflowers/salesreport/internal/app/store"
	cfgpkg "github.com/fatflowers/salesreport/pkg/config"
	metrics "github.com/fatflowers/salesreport/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

type routeDeps struct {
	fx.In

	Log           *zap.SugaredLogger
	Cfg           *cfgpkg.Config
	Users         *store.UserStore
	Accounts      *account.Service
	Entitlements  *entitlement.Service
	Streaks       *gamification.Service
	Generation    *generation.Service
	Histories     *history.Service
	Referrals     *referral.Service
	Verifications *verification.Service
	Analytics     *analytics.Service
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	// Prometheus metrics
	if d.Cfg != nil && d.Cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: d.Log,
		})
		p.SetListenAddress(d.Cfg.MetricsAddr)
		p.Use(r)

		d.Log.Infow("metrics started", "addr", d.Cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	handlers.RegisterAccountRoutes(pub, d.Accounts)
	handlers.RegisterUsageRoutes(pub, d.Accounts, d.Entitlements, d.Streaks)
	handlers.RegisterGenerationRoutes(pub, d.Generation, d.Users)
	handlers.RegisterHistoryRoutes(pub, d.Histories)
	handlers.RegisterReferralRoutes(pub, d.Referrals)
	handlers.RegisterVerificationRoutes(pub, d.Verifications)
	handlers.RegisterWebhookRoutes(pub, d.Accounts)

	// Admin surface, bearer-token guarded
	api := r.Group("/api")
	api.Use(mw.RequestLoggerMiddleware(d.Log), mw.AccessLogMiddleware())
	handlers.RegisterAdminRoutes(api, d.Cfg, d.Analytics)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
