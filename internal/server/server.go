package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invopad/invopad/internal/catalog"
	catalogdomain "github.com/invopad/invopad/internal/catalog/domain"
	"github.com/invopad/invopad/internal/client"
	clientdomain "github.com/invopad/invopad/internal/client/domain"
	"github.com/invopad/invopad/internal/config"
	"github.com/invopad/invopad/internal/dashboard"
	dashboarddomain "github.com/invopad/invopad/internal/dashboard/domain"
	"github.com/invopad/invopad/internal/invoice"
	invoicedomain "github.com/invopad/invopad/internal/invoice/domain"
	"github.com/invopad/invopad/internal/observability"
	obslogger "github.com/invopad/invopad/internal/observability/logger"
	obsmetrics "github.com/invopad/invopad/internal/observability/metrics"
	obstracing "github.com/invopad/invopad/internal/observability/tracing"
	"github.com/invopad/invopad/internal/subscription"
	subscriptiondomain "github.com/invopad/invopad/internal/subscription/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	client.Module,
	catalog.Module,
	invoice.Module,
	subscription.Module,
	dashboard.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics, log *zap.Logger) *gin.Engine {
	if obsCfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
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
	engine          *gin.Engine
	cfg             config.Config
	clientSvc       clientdomain.Service
	catalogSvc      catalogdomain.Service
	invoiceSvc      invoicedomain.Service
	subscriptionSvc subscriptiondomain.Service
	dashboardSvc    dashboarddomain.Service
}

type ServerParams struct {
	fx.In

	Gin             *gin.Engine
	Cfg             config.Config
	ClientSvc       clientdomain.Service
	CatalogSvc      catalogdomain.Service
	InvoiceSvc      invoicedomain.Service
	SubscriptionSvc subscriptiondomain.Service
	DashboardSvc    dashboarddomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:          p.Gin,
		cfg:             p.Cfg,
		clientSvc:       p.ClientSvc,
		catalogSvc:      p.CatalogSvc,
		invoiceSvc:      p.InvoiceSvc,
		subscriptionSvc: p.SubscriptionSvc,
		dashboardSvc:    p.DashboardSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api", s.AccountContext())

	// -------- Plans --------
	api.GET("/plans", s.ListPlans)

	// -------- Clients --------
	api.GET("/clients", s.ListClients)
	api.POST("/clients", s.CreateClient)
	api.GET("/clients/:id", s.GetClientByID)
	api.PATCH("/clients/:id", s.UpdateClient)
	api.DELETE("/clients/:id", s.DeleteClient)

	// -------- Services --------
	api.GET("/services", s.ListServices)
	api.POST("/services", s.CreateService)
	api.GET("/services/:id", s.GetServiceByID)
	api.PATCH("/services/:id", s.UpdateService)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.PATCH("/invoices/:id", s.UpdateDraftInvoice)
	api.DELETE("/invoices/:id", s.DeleteInvoice)
	api.POST("/invoices/:id/send", s.SendInvoice)
	api.POST("/invoices/:id/pay", s.MarkInvoicePaid)
	api.POST("/invoices/:id/cancel", s.CancelInvoice)

	// -------- Subscription --------
	api.GET("/subscription", s.GetSubscription)
	api.GET("/subscription/entitlements", s.GetEntitlements)
	api.POST("/subscription/change-plan", s.ChangePlan)
	api.POST("/subscription/cancel", s.CancelSubscription)

	// -------- Dashboard --------
	api.GET("/dashboard/summary", s.GetDashboardSummary)
}
