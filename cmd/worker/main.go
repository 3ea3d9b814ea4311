package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	ordersclient "github.com/Apurer/go-checkout-api/internal/clients/http/orders"
	checkoutmemory "github.com/Apurer/go-checkout-api/internal/domains/checkout/adapters/memory"
	checkoutpostgres "github.com/Apurer/go-checkout-api/internal/domains/checkout/adapters/persistence/postgres"
	checkoutports "github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
	checkoutworkflows "github.com/Apurer/go-checkout-api/internal/durable/temporal/workflows/checkout"
	platformobservability "github.com/Apurer/go-checkout-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-checkout-api/internal/platform/postgres"
	checkoutactivities "github.com/Apurer/go-checkout-api/internal/platform/temporal/activities/checkout"
)

func main() {
	ctx := context.Background()
	const serviceName = "checkout-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	draftAPI, cleanupAPI := buildDraftOrderAPI(ctx, logger)
	defer cleanupAPI()
	activities := checkoutactivities.NewActivities(draftAPI)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, checkoutworkflows.OrderFinalizationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(checkoutworkflows.OrderFinalizationWorkflow, workflow.RegisterOptions{Name: checkoutworkflows.OrderFinalizationWorkflowName})
	w.RegisterWorkflowWithOptions(checkoutworkflows.DraftReleaseWorkflow, workflow.RegisterOptions{Name: checkoutworkflows.DraftReleaseWorkflowName})
	w.RegisterActivityWithOptions(activities.ConvertDraft, activity.RegisterOptions{Name: checkoutactivities.ConvertDraftActivityName})
	w.RegisterActivityWithOptions(activities.ReleaseDraft, activity.RegisterOptions{Name: checkoutactivities.ReleaseDraftActivityName})

	logger.Info("worker listening", slog.String("taskQueue", checkoutworkflows.OrderFinalizationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildDraftOrderAPI(ctx context.Context, logger *slog.Logger) (checkoutports.DraftOrderAPI, func()) {
	if url := strings.TrimSpace(os.Getenv("ORDERS_API_URL")); url != "" {
		api, err := ordersclient.NewClient(url)
		if err == nil {
			logger.Info("worker draft orders served by remote service", slog.String("url", url))
			return api, func() {}
		}
		logger.Warn("worker failed to build draft-order client, falling back", slog.String("error", err.Error()))
	}
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	if db == nil {
		logger.Warn("worker draft orders are in-memory only")
		return checkoutmemory.NewDraftAPI(), cleanup
	}
	logger.Info("worker draft orders configured with postgres")
	return checkoutpostgres.NewDraftAPI(db), cleanup
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
