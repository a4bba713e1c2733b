// Package app wires the application together: infrastructure, module
// services and HTTP routes.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mistcurrent/server/internal/module/billing"
	"github.com/mistcurrent/server/internal/module/card"
	"github.com/mistcurrent/server/internal/module/order"
	"github.com/mistcurrent/server/internal/module/payment"
	"github.com/mistcurrent/server/internal/module/payment/provider"
	"github.com/mistcurrent/server/internal/module/user"
	"github.com/mistcurrent/server/internal/module/vpn"
	"github.com/mistcurrent/server/internal/shared/cache"
	"github.com/mistcurrent/server/internal/shared/config"
	"github.com/mistcurrent/server/internal/shared/database"
	"github.com/mistcurrent/server/internal/shared/logger"
	"github.com/mistcurrent/server/internal/shared/middleware"
)

// App is the assembled application.
type App struct {
	config *config.Config
	logger *zap.Logger
	db     *gorm.DB
	redis  goredis.UniversalClient
	router *gin.Engine

	// Module services
	userService    *user.Service
	tokenManager   *user.TokenManager
	billingService *billing.Service
	orderService   *order.Service
	paymentService *payment.Service
	vpnService     *vpn.Service

	// HTTP handlers
	userHandler    *user.Handler
	billingHandler *billing.Handler
	orderHandler   *order.Handler
	paymentHandler *payment.Handler
	webhookHandler *payment.WebhookHandler
	vpnHandler     *vpn.Handler
	cardHandler    *card.Handler
}

// New creates the application: it connects infrastructure, migrates and
// seeds the database, builds module services in dependency order and
// registers routes.
func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app := &App{config: cfg, logger: log}

	if err := app.initInfrastructure(); err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}
	if err := app.initModules(); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}

	app.router = app.setupRouter()
	app.registerRoutes()

	return app, nil
}

func (a *App) initInfrastructure() error {
	db, err := database.New(&a.config.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	a.db = db

	if err := a.migrate(); err != nil {
		return err
	}

	if a.config.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(&a.config.Redis)
		if err != nil {
			a.logger.Warn("redis connection failed, rate limiting and idempotency disabled", zap.Error(err))
		} else {
			a.redis = redisClient
		}
	}

	return nil
}

func (a *App) migrate() error {
	err := a.db.AutoMigrate(
		&user.User{},
		&billing.Plan{},
		&billing.Subscription{},
		&order.Order{},
		&payment.Payment{},
		&payment.WebhookEvent{},
		&vpn.Access{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	billingRepo := billing.NewRepository(a.db)
	if err := billingRepo.SeedPlans(context.Background(), billing.DefaultPlans()); err != nil {
		return fmt.Errorf("seed plans: %w", err)
	}
	return nil
}

func (a *App) initModules() error {
	// User and auth.
	a.tokenManager = user.NewTokenManager(&a.config.Auth)

	var google *user.GoogleOAuth
	if a.config.Auth.GoogleClientID != "" {
		google = user.NewGoogleOAuth(&a.config.Auth)
	}
	a.userService = user.NewService(user.NewRepository(a.db), a.tokenManager, google, a.logger)
	a.userHandler = user.NewHandler(a.userService, a.logger)

	// Billing.
	a.billingService = billing.NewService(billing.NewRepository(a.db), &a.config.Billing, a.logger)
	a.billingHandler = billing.NewHandler(a.billingService, a.logger)

	// Orders.
	a.orderService = order.NewService(order.NewRepository(a.db), a.billingService, &a.config.Billing, a.logger)
	a.orderHandler = order.NewHandler(a.orderService, a.logger)

	// VPN provisioning. Object storage is optional in development; the
	// payment flow still completes without it, provisioning is skipped.
	if a.config.Storage.Bucket != "" {
		store, err := vpn.NewS3ConfigStore(&a.config.Storage)
		if err != nil {
			return fmt.Errorf("init config store: %w", err)
		}
		a.vpnService = vpn.NewService(
			vpn.NewRepository(a.db), store, a.billingService, a.userService, &a.config.VPN, a.logger)
		a.vpnHandler = vpn.NewHandler(a.vpnService, &a.config.VPN, a.logger)
	} else {
		a.logger.Warn("storage bucket not configured, vpn provisioning disabled")
	}

	// Payments.
	registry, err := a.buildProviderRegistry()
	if err != nil {
		return err
	}

	var provisioner payment.Provisioner
	if a.vpnService != nil {
		provisioner = a.vpnService
	}
	a.paymentService = payment.NewService(
		payment.NewRepository(a.db), registry, a.orderService, a.billingService,
		provisioner, a.config.Server.BaseURL, a.logger)
	a.paymentHandler = payment.NewHandler(a.paymentService, a.logger)
	a.webhookHandler = payment.NewWebhookHandler(a.paymentService, a.logger)

	// Card validation is stateless.
	a.cardHandler = card.NewHandler(a.logger)

	return nil
}

// buildProviderRegistry registers every configured gateway. Airwallex
// registers first and becomes the default.
func (a *App) buildProviderRegistry() (*provider.Registry, error) {
	registry := provider.NewRegistry()

	if a.config.Airwallex.ClientID != "" {
		registry.Register(provider.NewAirwallexProvider(&provider.AirwallexConfig{
			ClientID:      a.config.Airwallex.ClientID,
			APIKey:        a.config.Airwallex.APIKey,
			APIURL:        a.config.Airwallex.APIURL,
			WebhookSecret: a.config.Airwallex.WebhookSecret,
			Timeout:       a.config.Airwallex.Timeout,
		}, a.logger))
	}

	if a.config.Stripe.APIKey != "" {
		registry.Register(provider.NewStripeProvider(&provider.StripeConfig{
			APIKey:        a.config.Stripe.APIKey,
			WebhookSecret: a.config.Stripe.WebhookSecret,
		}))
	}

	if a.config.Alipay.AppID != "" {
		alipay, err := provider.NewAlipayProvider(&provider.AlipayConfig{
			AppID:           a.config.Alipay.AppID,
			PrivateKey:      a.config.Alipay.PrivateKey,
			AlipayPublicKey: a.config.Alipay.AlipayPublicKey,
			IsProd:          a.config.Alipay.IsProd,
			NotifyURL:       a.config.Alipay.NotifyURL,
			ReturnURL:       a.config.Alipay.ReturnURL,
		})
		if err != nil {
			return nil, fmt.Errorf("init alipay provider: %w", err)
		}
		registry.Register(alipay)
	}

	if len(registry.Names()) == 0 {
		a.logger.Warn("no payment providers configured")
	}
	return registry, nil
}

func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func (a *App) registerRoutes() {
	var limiter middleware.Limiter
	if a.redis != nil {
		limiter = cache.NewRateLimiter(a.redis)
	}

	v1 := a.router.Group("/api/v1")
	v1.Use(middleware.RateLimit(limiter, middleware.RateLimitConfig{
		Limit:  300,
		Window: time.Minute,
	}))
	if a.redis != nil {
		v1.Use(middleware.Idempotency(a.redis, middleware.DefaultIdempotencyConfig()))
	}

	// Public endpoints.
	a.cardHandler.RegisterRoutes(v1)
	a.billingHandler.RegisterRoutes(v1)
	a.userHandler.RegisterRoutes(v1)
	if a.vpnHandler != nil {
		a.vpnHandler.RegisterRoutes(v1)
	}

	// Authenticated endpoints.
	authed := v1.Group("")
	authed.Use(middleware.RequireAuth(a.tokenManager))
	a.userHandler.RegisterAuthRoutes(authed)
	a.billingHandler.RegisterAuthRoutes(authed)
	a.orderHandler.RegisterAuthRoutes(authed)
	a.paymentHandler.RegisterAuthRoutes(authed)
	if a.vpnHandler != nil {
		a.vpnHandler.RegisterAuthRoutes(authed)
	}

	// Gateway callbacks authenticate by signature, not by user token,
	// and bypass rate limiting.
	webhooks := a.router.Group("/webhooks")
	a.webhookHandler.RegisterRoutes(webhooks)
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases application resources.
func (a *App) Stop() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	if a.redis != nil {
		_ = cache.Close(a.redis)
	}
	if a.db != nil {
		_ = database.Close(a.db)
	}
}
