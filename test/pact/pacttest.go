//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "draft-orders-api"
	ConsumerName = "checkout-api"

	StateDraftsBaseline = "draft orders baseline"
	StateDraftExists    = "draft order draft-101 exists"
	StateDraftMissing   = "no draft order with id draft-404"
	StateDraftConverted = "draft order draft-900 was already converted"
)

const (
	ExistingDraftID  = "draft-101"
	MissingDraftID   = "draft-404"
	ConvertedDraftID = "draft-900"
)

const (
	exampleOrderNumber = "ORD-1748779200-abc123"
	exampleSKU         = "SKU-1"
	examplePlacedAt    = "2025-06-01T12:30:00Z"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the checkout consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleDraftPayload provides stable test data for draft-order interactions.
func ExampleDraftPayload() map[string]any {
	return map[string]any{
		"id":          ExistingDraftID,
		"orderNumber": exampleOrderNumber,
		"items": []map[string]any{
			{"sku": exampleSKU, "name": "Mechanical Keyboard", "quantity": 1, "unitPrice": 8500},
		},
		"currency":      "USD",
		"subtotal":      8500,
		"tax":           0,
		"shipping":      0,
		"total":         8500,
		"paymentStatus": "pending",
		"status":        "draft",
	}
}

// ExampleFinalOrderPayload provides stable test data for conversion results.
func ExampleFinalOrderPayload() map[string]any {
	return map[string]any{
		"id":          "order-7",
		"orderNumber": exampleOrderNumber,
		"items": []map[string]any{
			{"sku": exampleSKU, "name": "Mechanical Keyboard", "quantity": 1, "unitPrice": 8500},
		},
		"total":    8500,
		"currency": "USD",
		"placedAt": examplePlacedAt,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
