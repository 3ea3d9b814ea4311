package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	checkoutserver "github.com/Apurer/go-checkout-api/go"

	"github.com/Apurer/go-checkout-api/internal/clients/http/exchange"
	ordersclient "github.com/Apurer/go-checkout-api/internal/clients/http/orders"

	addressbridge "github.com/Apurer/go-checkout-api/internal/domains/addressbook/adapters/checkout"
	addressmemory "github.com/Apurer/go-checkout-api/internal/domains/addressbook/adapters/memory"
	addresspostgres "github.com/Apurer/go-checkout-api/internal/domains/addressbook/adapters/persistence/postgres"
	addressapp "github.com/Apurer/go-checkout-api/internal/domains/addressbook/application"
	addressports "github.com/Apurer/go-checkout-api/internal/domains/addressbook/ports"

	checkoutmemory "github.com/Apurer/go-checkout-api/internal/domains/checkout/adapters/memory"
	checkoutobs "github.com/Apurer/go-checkout-api/internal/domains/checkout/adapters/observability"
	checkoutpostgres "github.com/Apurer/go-checkout-api/internal/domains/checkout/adapters/persistence/postgres"
	checkoutworkflows "github.com/Apurer/go-checkout-api/internal/domains/checkout/adapters/workflows"
	checkoutapp "github.com/Apurer/go-checkout-api/internal/domains/checkout/application"
	checkoutports "github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"

	platformobservability "github.com/Apurer/go-checkout-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-checkout-api/internal/platform/postgres"
)

// Run boots the checkout HTTP API with observability, stores, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "checkout-api"
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := connectPostgres(ctx, cfg, logger)
	defer cleanupDB()

	deps := checkoutapp.Dependencies{
		API:       buildDraftOrderAPI(cfg, db, logger),
		Durable:   buildDurableStore(db, logger),
		Cart:      checkoutmemory.NewCartStore(),
		Addresses: addressbridge.NewBridge(buildAddressBook(db, logger)),
		Converter: buildCurrencyConverter(cfg, logger),
		Logger:    logger,
	}
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, finalizing orders inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		deps.Finalizer = checkoutworkflows.NewTemporalFinalization(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	coreService := checkoutapp.NewService(deps)
	checkoutService := checkoutobs.New(
		coreService,
		checkoutobs.WithLogger(logger),
		checkoutobs.WithTracer(instruments.Tracer("internal.checkout.application")),
		checkoutobs.WithMeter(instruments.Meter("internal.checkout.application")),
	)

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	if cfg.SessionPurgeIntervalMinute > 0 {
		go runPurgeLoop(purgeCtx, checkoutService, time.Duration(cfg.SessionPurgeIntervalMinute)*time.Minute, logger)
	}

	handlers := checkoutserver.ApiHandleFunctions{
		CheckoutAPI: checkoutserver.NewCheckoutAPI(checkoutService),
	}

	router := checkoutserver.NewRouter(handlers)
	router.Use(otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("Checkout API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("Checkout API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func connectPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory stores")
		return nil, func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to memory", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("postgres stores configured")
	return db, func() { _ = sqlDB.Close() }
}

func buildDraftOrderAPI(cfg Config, db *gorm.DB, logger *slog.Logger) checkoutports.DraftOrderAPI {
	if cfg.OrdersAPIURL != "" {
		api, err := ordersclient.NewClient(cfg.OrdersAPIURL)
		if err == nil {
			logger.Info("draft orders served by remote service", slog.String("url", cfg.OrdersAPIURL))
			return api
		}
		logger.Warn("failed to build draft-order client, falling back", slog.String("error", err.Error()))
	}
	if db != nil {
		return checkoutpostgres.NewDraftAPI(db)
	}
	return checkoutmemory.NewDraftAPI()
}

func buildDurableStore(db *gorm.DB, logger *slog.Logger) checkoutports.DurableStore {
	if db != nil {
		return checkoutpostgres.NewDurableStore(db)
	}
	logger.Warn("durable checkout records are in-memory only")
	return checkoutmemory.NewDurableStore()
}

func buildAddressBook(db *gorm.DB, logger *slog.Logger) addressports.Service {
	var repo addressports.Repository
	if db != nil {
		repo = addresspostgres.NewRepository(db)
	} else {
		logger.Warn("saved addresses are in-memory only")
		repo = addressmemory.NewRepository()
	}
	return addressapp.NewService(repo)
}

func buildCurrencyConverter(cfg Config, logger *slog.Logger) checkoutports.CurrencyConverter {
	if cfg.ExchangeAPIURL == "" {
		return nil
	}
	converter, err := exchange.NewClient(cfg.ExchangeAPIURL)
	if err != nil {
		logger.Warn("failed to build exchange client, display conversion disabled", slog.String("error", err.Error()))
		return nil
	}
	return converter
}

func runPurgeLoop(ctx context.Context, service checkoutports.Service, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := service.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("expired draft purge failed", slog.String("error", err.Error()))
				continue
			}
			if purged > 0 {
				logger.Info("expired drafts purged", slog.Int("count", purged))
			}
		}
	}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
