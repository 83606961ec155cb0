package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	catalogPublisher "github.com/ridloal/storefront-dashboard/internal/catalog/publisher"
	catalogService "github.com/ridloal/storefront-dashboard/internal/catalog/service"
	checkoutService "github.com/ridloal/storefront-dashboard/internal/checkout/service"
	dashboardAPI "github.com/ridloal/storefront-dashboard/internal/dashboard/api"
	"github.com/ridloal/storefront-dashboard/internal/platform/cache"
	"github.com/ridloal/storefront-dashboard/internal/platform/config"
	"github.com/ridloal/storefront-dashboard/internal/platform/database"
	"github.com/ridloal/storefront-dashboard/internal/platform/discovery"
	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
	"github.com/ridloal/storefront-dashboard/internal/platform/messaging"
	"github.com/ridloal/storefront-dashboard/internal/product/client"
	sessionDomain "github.com/ridloal/storefront-dashboard/internal/session/domain"
	sessionRepo "github.com/ridloal/storefront-dashboard/internal/session/repository"
	sessionService "github.com/ridloal/storefront-dashboard/internal/session/service"
)

func main() {
	// Load Config
	cfg := config.LoadDashboardConfig()
	gin.SetMode(cfg.GinMode)

	logger.Info("Starting Storefront Dashboard...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Setup Session Store
	repo, closeRepo, err := openSessionRepository(ctx, cfg.Session)
	if err != nil {
		logger.Error("Failed to open session store", err, "driver", cfg.Session.Driver)
		return
	}
	defer closeRepo()

	// Setup Dependencies
	httpClient := &http.Client{}
	if cfg.Commerce.Timeout > 0 {
		httpClient.Timeout = cfg.Commerce.Timeout
	}
	commerce := client.NewCommerceClient(cfg.Commerce.BaseURL, httpClient)

	publisher, closePublisher := openPublisher(cfg.Messaging)
	defer closePublisher()

	views := catalogService.NewRegistry()
	sessions := sessionService.NewSessionService(repo, commerce)
	catalog := catalogService.NewCatalogService(commerce, checkoutService.NewStubCheckoutService(cfg.CheckoutDelay), publisher)
	dashboardHandler := dashboardAPI.NewDashboardHandler(sessions, catalog, views)

	sweeper := sessionService.NewSweeper(repo, cfg.Session.SweepSpec, func(now time.Time) {
		views.Prune(now, sessionDomain.TokenLifetime)
	})
	if err := sweeper.Start(); err != nil {
		logger.Error("Failed to start session sweeper", err)
		return
	}
	defer sweeper.Stop()

	// Setup Gin Router
	router, err := dashboardAPI.NewRouter(dashboardHandler, cfg.Session.CookieSecure)
	if err != nil {
		logger.Error("Failed to build router", err)
		return
	}

	deregister := registerService(cfg)
	defer deregister()

	server := &http.Server{Addr: cfg.Server.Port, Handler: router}
	go func() {
		logger.Info("Storefront Dashboard running on port "+cfg.Server.Port, "commerceAPI", cfg.Commerce.BaseURL, "sessionDriver", cfg.Session.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Failed to run Storefront Dashboard server", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down Storefront Dashboard...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err)
	}
}

func openSessionRepository(ctx context.Context, cfg config.SessionConfig) (sessionRepo.SessionRepository, func(), error) {
	switch cfg.Driver {
	case "memory":
		return sessionRepo.NewMemorySessionRepository(), func() {}, nil
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		return sessionRepo.NewRedisSessionRepository(redisCache), closer(redisCache, "redis"), nil
	case "postgres":
		db, err := database.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		repo, err := sessionRepo.NewPostgresSessionRepository(ctx, db, cfg.Table)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, closer(db, "postgres"), nil
	default:
		return nil, nil, fmt.Errorf("unknown session driver %q", cfg.Driver)
	}
}

func closer(c io.Closer, name string) func() {
	return func() {
		if err := c.Close(); err != nil {
			logger.Warn("Failed to close "+name, "error", err)
		}
	}
}

// openPublisher falls back to discarding catalog events when RabbitMQ is not
// configured or unreachable.
func openPublisher(cfg config.MessagingConfig) (catalogService.EventPublisher, func()) {
	if cfg.AMQPURL == "" {
		return catalogService.NewNoopPublisher(), func() {}
	}
	rabbit, err := messaging.NewRabbitMQ(cfg.AMQPURL)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, catalog events are discarded", "error", err)
		return catalogService.NewNoopPublisher(), func() {}
	}
	publisher, err := catalogPublisher.NewRabbitMQPublisher(rabbit, cfg.EventsQueue)
	if err != nil {
		logger.Warn("Failed to declare catalog events queue, events are discarded", "error", err)
		rabbit.Close()
		return catalogService.NewNoopPublisher(), func() {}
	}
	return publisher, rabbit.Close
}

func registerService(cfg config.DashboardConfig) func() {
	if cfg.Discovery.ConsulAddr == "" {
		return func() {}
	}
	consul, err := discovery.NewConsulClient(cfg.Discovery.ConsulAddr)
	if err != nil {
		logger.Warn("Consul unavailable, skipping service registration", "error", err)
		return func() {}
	}
	port, _ := strconv.Atoi(strings.TrimPrefix(cfg.Server.Port, ":"))
	if err := consul.Register(discovery.ServiceConfig{
		Name:       "storefront-dashboard",
		ID:         cfg.Discovery.ServiceID,
		Port:       port,
		Tags:       []string{"dashboard", "web"},
		HealthPath: "/health",
	}); err != nil {
		logger.Warn("Consul registration failed", "error", err)
		return func() {}
	}
	return func() {
		if err := consul.Deregister(cfg.Discovery.ServiceID); err != nil {
			logger.Warn("Consul deregistration failed", "error", err)
		}
	}
}
