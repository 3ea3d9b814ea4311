package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	ordersclient "github.com/Apurer/go-checkout-api/internal/clients/http/orders"
	checkoutmemory "github.com/Apurer/go-checkout-api/internal/domains/checkout/adapters/memory"
	checkoutpostgres "github.com/Apurer/go-checkout-api/internal/domains/checkout/adapters/persistence/postgres"
	checkoutapp "github.com/Apurer/go-checkout-api/internal/domains/checkout/application"
	checkoutports "github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
	platformpostgres "github.com/Apurer/go-checkout-api/internal/platform/postgres"
)

// Deletes expired draft orders and their durable session records. Intended to
// run on a schedule (cron or similar).
func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge checkout sessions")
	}

	var draftAPI checkoutports.DraftOrderAPI = checkoutpostgres.NewDraftAPI(db)
	if url := strings.TrimSpace(os.Getenv("ORDERS_API_URL")); url != "" {
		remote, err := ordersclient.NewClient(url)
		if err != nil {
			log.Fatalf("failed to build draft-order client: %v", err)
		}
		draftAPI = remote
	}

	service := checkoutapp.NewService(checkoutapp.Dependencies{
		API:     draftAPI,
		Durable: checkoutpostgres.NewDurableStore(db),
		Cart:    checkoutmemory.NewCartStore(),
		Logger:  logger,
	})
	purged, err := service.PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("failed to purge checkout sessions: %v", err)
	}
	log.Printf("checkout session purge completed, removed %d", purged)
}
