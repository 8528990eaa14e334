package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/invoicedesk/internal/auth"
	authdomain "github.com/smallbiznis/invoicedesk/internal/auth/domain"
	"github.com/smallbiznis/invoicedesk/internal/clock"
	"github.com/smallbiznis/invoicedesk/internal/config"
	"github.com/smallbiznis/invoicedesk/internal/invoice"
	invoicedomain "github.com/smallbiznis/invoicedesk/internal/invoice/domain"
	"github.com/smallbiznis/invoicedesk/internal/invoice/ledger"
	"github.com/smallbiznis/invoicedesk/internal/observability"
	obslogger "github.com/smallbiznis/invoicedesk/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/invoicedesk/internal/observability/metrics"
	obstracing "github.com/smallbiznis/invoicedesk/internal/observability/tracing"
	"github.com/smallbiznis/invoicedesk/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var Module = fx.Module("http.server",
	auth.Module,
	invoice.Module,
	ratelimit.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

type EngineParams struct {
	fx.In

	Cfg         config.Config
	ObsCfg      observability.Config
	HTTPMetrics *obsmetrics.HTTPMetrics
	Registry    *prometheus.Registry
}

func NewEngine(p EngineParams) *gin.Engine {
	if !p.ObsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(p.Cfg.CORSAllowedOrigins)))
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
		QuietRoutes:     p.Cfg.QuietRequestPaths,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(p.HTTPMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/metrics", gin.WrapH(obsmetrics.Handler(p.Registry)))
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", obslogger.RequestIDHeader)
	cfg.ExposeHeaders = []string{"Content-Disposition", obslogger.RequestIDHeader}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	return cfg
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	log        *zap.Logger
	clock      clock.Clock
	settings   *config.InvoiceConfigHolder
	authsvc    authdomain.Service
	invoiceSvc invoicedomain.Service
	ledger     *ledger.Ledger
	limiter    ratelimit.Limiter
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	Log        *zap.Logger
	Clock      clock.Clock
	Settings   *config.InvoiceConfigHolder
	Authsvc    authdomain.Service
	InvoiceSvc invoicedomain.Service
	Ledger     *ledger.Ledger
	Limiter    ratelimit.Limiter
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		log:        p.Log.Named("http.server"),
		clock:      p.Clock,
		settings:   p.Settings,
		authsvc:    p.Authsvc,
		invoiceSvc: p.InvoiceSvc,
		ledger:     p.Ledger,
		limiter:    p.Limiter,
	}

	svc.registerHealthRoutes()
	svc.registerAuthRoutes()
	svc.registerBillingRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerHealthRoutes() {
	s.engine.GET("/health", s.Health)
	s.engine.GET("/api/debug/health", s.Health)
}

func (s *Server) registerAuthRoutes() {
	group := s.engine.Group("/api/auth")

	group.POST("/login", s.Login)
	if s.cfg.Bootstrap.HTTPEnabled {
		group.POST("/bootstrap", s.Bootstrap)
	}
	group.GET("/verify", s.UserRequired(), s.Verify)
	group.POST("/logout", s.UserRequired(), s.Logout)
}

func (s *Server) registerBillingRoutes() {
	billing := s.engine.Group("/api/billing", s.OwnerIdentity())

	billing.GET("/invoices", s.ListInvoices)
	billing.POST("/invoices", s.CreateInvoice)
	billing.GET("/invoices/:id", s.GetInvoiceByID)
	billing.PUT("/invoices/:id", s.UpdateInvoice)
	billing.DELETE("/invoices/:id", s.DeleteInvoice)
	billing.PATCH("/invoices/:id/status", s.UpdateInvoiceStatus)
	billing.GET("/invoices/:id/pdf", s.DownloadInvoicePDF)

	billing.GET("/stats", s.GetStats)
	billing.GET("/stats/pdf", s.DownloadStatementPDF)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Error: errorPayload{Type: "not_found", Message: "route not found"}})
	})
}

// Health reports liveness plus whether the durable store answers right now.
func (s *Server) Health(c *gin.Context) {
	database := "Disconnected"
	if s.ledger.DurableReachable(c.Request.Context()) {
		database = "Connected"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"message":   "API is working",
		"database":  database,
		"timestamp": s.clock.Now().Format(time.RFC3339Nano),
	})
}

func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			s.log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
