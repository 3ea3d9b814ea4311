package checkout

import (
	"go.temporal.io/sdk/workflow"

	checkoutdomain "github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	"github.com/Apurer/go-checkout-api/internal/durable/temporal/sequences"
)

const (
	// OrderFinalizationWorkflowName is the public identifier for registering the workflow.
	OrderFinalizationWorkflowName = "checkout.workflows.OrderFinalization"
	// OrderFinalizationTaskQueue is the queue consumed by the worker processing checkout workflows.
	OrderFinalizationTaskQueue = "ORDER_FINALIZATION"
)

// OrderFinalizationWorkflowInput captures the payload required to finalize a draft.
type OrderFinalizationWorkflowInput struct {
	DraftID   string
	SessionID string
	TraceID   string
}

// OrderFinalizationWorkflow converts a draft order into an immutable order.
// The workflow ID is derived from the draft id, so Temporal's workflow-id
// uniqueness gives one conversion per draft even under concurrent callers.
func OrderFinalizationWorkflow(ctx workflow.Context, input OrderFinalizationWorkflowInput) (*checkoutdomain.FinalOrder, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("OrderFinalizationWorkflow started", withTraceID(input.TraceID, "draftId", input.DraftID, "sessionId", input.SessionID)...)
	final, err := sequences.RunOrderFinalizationSequence(ctx, input.DraftID)
	if err != nil {
		logger.Error("OrderFinalizationWorkflow failed", withTraceID(input.TraceID, "draftId", input.DraftID, "error", err)...)
		return nil, err
	}
	logger.Info("OrderFinalizationWorkflow completed", withTraceID(input.TraceID, "draftId", input.DraftID, "orderId", final.ID)...)
	return final, nil
}

// DraftReleaseWorkflowName identifies the expired-draft cleanup workflow.
const DraftReleaseWorkflowName = "checkout.workflows.DraftRelease"

// DraftReleaseWorkflowInput addresses the draft to release.
type DraftReleaseWorkflowInput struct {
	DraftID   string
	SessionID string
	TraceID   string
}

// DraftReleaseWorkflow deletes an expired draft from the remote service.
func DraftReleaseWorkflow(ctx workflow.Context, input DraftReleaseWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("DraftReleaseWorkflow started", withTraceID(input.TraceID, "draftId", input.DraftID, "sessionId", input.SessionID)...)
	if err := sequences.RunDraftReleaseSequence(ctx, input.DraftID); err != nil {
		logger.Error("DraftReleaseWorkflow failed", withTraceID(input.TraceID, "draftId", input.DraftID, "error", err)...)
		return err
	}
	logger.Info("DraftReleaseWorkflow completed", withTraceID(input.TraceID, "draftId", input.DraftID)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
