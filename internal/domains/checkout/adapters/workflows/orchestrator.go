// Package workflows provides FinalizationOrchestrator implementations: one
// backed by a Temporal cluster, one inline for tests and dev fallbacks.
package workflows

import (
	"context"
	"errors"
	"fmt"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
	checkoutworkflows "github.com/Apurer/go-checkout-api/internal/durable/temporal/workflows/checkout"
)

var (
	_ ports.FinalizationOrchestrator = (*TemporalFinalization)(nil)
	_ ports.FinalizationOrchestrator = (*InlineFinalization)(nil)
)

// TemporalFinalization runs order finalization as a durable workflow.
type TemporalFinalization struct {
	client    client.Client
	taskQueue string
}

// NewTemporalFinalization wires a Temporal client into the orchestrator.
func NewTemporalFinalization(c client.Client) *TemporalFinalization {
	return &TemporalFinalization{client: c, taskQueue: checkoutworkflows.OrderFinalizationTaskQueue}
}

// Finalize converts the draft exactly once. The workflow ID is derived from
// the draft id, so a concurrent or repeated call attaches to the running
// (or completed) workflow instead of starting a second conversion.
func (o *TemporalFinalization) Finalize(ctx context.Context, draftID string) (*domain.FinalOrder, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal finalization not configured")
	}
	workflowID := buildFinalizationWorkflowID(draftID)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		checkoutworkflows.OrderFinalizationWorkflow,
		checkoutworkflows.OrderFinalizationWorkflowInput{DraftID: draftID, TraceID: workflowTraceID(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var final domain.FinalOrder
			if err := existingRun.Get(ctx, &final); err != nil {
				return nil, err
			}
			return &final, nil
		}
		return nil, err
	}
	var final domain.FinalOrder
	if err := run.Get(ctx, &final); err != nil {
		return nil, err
	}
	return &final, nil
}

// InlineFinalization calls the draft-order collaborator directly without
// durable orchestration.
type InlineFinalization struct {
	api ports.DraftOrderAPI
}

// NewInlineFinalization wraps the draft-order collaborator for synchronous execution.
func NewInlineFinalization(api ports.DraftOrderAPI) *InlineFinalization {
	return &InlineFinalization{api: api}
}

// Finalize converts the draft in-process, relying on the collaborator's own
// at-most-once guarantee.
func (o *InlineFinalization) Finalize(ctx context.Context, draftID string) (*domain.FinalOrder, error) {
	if o == nil || o.api == nil {
		return nil, errors.New("inline finalization not configured")
	}
	return o.api.Convert(ctx, draftID)
}

func buildFinalizationWorkflowID(draftID string) string {
	return fmt.Sprintf("order-finalize-%s", draftID)
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
