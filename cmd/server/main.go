package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/pprof"
	"github.com/jaytnw/motel-service/internal/config"
	"github.com/jaytnw/motel-service/internal/handlers"
	"github.com/jaytnw/motel-service/internal/logger"
	"github.com/jaytnw/motel-service/internal/metrics"
	"github.com/jaytnw/motel-service/internal/mqtt"
	"github.com/jaytnw/motel-service/internal/repository"
	"github.com/jaytnw/motel-service/internal/routes"
	"github.com/jaytnw/motel-service/internal/services"
	redisPkg "github.com/jaytnw/motel-service/pkg/redisclient"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env not loaded (using system env)")
	}

	cfg := config.LoadConfig()

	zl, err := logger.NewLogger(cfg.LogConfig.Level, cfg.LogConfig.Format, "motel-service")
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zl *zap.Logger) error {
	store, err := openStore(cfg, zl)
	if err != nil {
		return err
	}

	// Settings cache
	var settingsCache services.SettingsCache
	if cfg.RedisConfig.Enabled {
		rdb := redisPkg.NewClient(cfg.RedisConfig)
		defer rdb.Close()
		if err := redisPkg.Ping(context.Background(), rdb); err != nil {
			zl.Warn("redis unreachable, settings are read from the store", zap.Error(err))
		} else {
			settingsCache = redisPkg.NewSettingsCache(rdb, cfg.RedisConfig.CacheTTL)
		}
	}

	// Room events
	events := services.NoopPublisher()
	if cfg.MQTTConfig.Enabled {
		clientID := fmt.Sprintf("%s-%d", cfg.MQTTConfig.ClientID, time.Now().UnixNano())
		mqttClient, err := mqtt.NewClient(cfg.MQTTConfig.BrokerURL, clientID, cfg.MQTTConfig.Username, cfg.MQTTConfig.Password, zl)
		if err != nil {
			zl.Warn("mqtt disabled", zap.Error(err))
		} else {
			defer mqttClient.Close()
			events = mqtt.NewRoomEventPublisher(mqttClient, cfg.MQTTConfig.TopicPrefix, zl)
		}
	}

	// Wire DI
	clock := services.NewClock(cfg.MotelConfig.Location(), time.Now)
	settings := services.NewSettingsService(store, settingsCache, zl)
	accounting := services.NewAccountingService(store, settings, clock, cfg.MotelConfig.TaxiFare, zl)
	svc := handlers.Services{
		Rooms:        services.NewRoomService(store, settings, services.DefaultPricing(), clock, events, zl),
		Auth:         services.NewAuthService(store, settings, clock, cfg.MotelConfig.DefaultAdminCode, zl),
		Accounting:   accounting,
		Housekeeping: services.NewHousekeepingService(store, clock, events, zl),
		Staff:        services.NewStaffService(store, settings, clock, zl),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	apiHandler := handlers.NewAPIHandler(svc, metrics.NewRecorder(registry), zl)
	healthHandler := handlers.NewHealthHandler(store, zl)
	reportHandler := handlers.NewReportHandler(services.NewReportService(accounting, zl), zl)
	metricsHandler := adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Create Fiber app
	app := fiber.New(fiber.Config{AppName: "motel-service"})
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions},
		AllowHeaders: []string{fiber.HeaderContentType},
	}))
	app.Use(fiberlogger.New())
	app.Use(pprof.New())

	routes.Setup(app, apiHandler, healthHandler, reportHandler, metricsHandler)

	// Start server
	listenErr := make(chan error, 1)
	go func() {
		zl.Info("server listening", zap.String("address", cfg.ServerAddress), zap.String("store", cfg.StoreDriver))
		listenErr <- app.Listen(cfg.ServerAddress)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-listenErr:
		return err
	case <-quit:
	}

	zl.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	zl.Info("server gracefully stopped")
	return nil
}

func openStore(cfg *config.Config, zl *zap.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		dsn := cfg.PostgresConfig.BuildDSN()
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxIdleConns(cfg.PostgresConfig.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.PostgresConfig.MaxOpenConns)
		if err := repository.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return repository.NewGormStore(db), nil

	case config.StoreDriverREST:
		if cfg.RESTConfig.URL == "" {
			return nil, errors.New("STORE_URL not set")
		}
		cb := config.NewCircuitBreaker("store", cfg.RESTConfig.Timeout, zl)
		return repository.NewRestStore(cfg.RESTConfig.URL, cfg.RESTConfig.ServiceKey, cfg.RESTConfig.Timeout, cb), nil

	case config.StoreDriverMemory:
		zl.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
}
