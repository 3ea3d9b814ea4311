package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	checkoutdomain "github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	checkoutactivities "github.com/Apurer/go-checkout-api/internal/platform/temporal/activities/checkout"
)

// RunOrderFinalizationSequence converts a draft order into an immutable order.
// The convert activity runs with a single attempt: the remote conversion is
// at-most-once, so an ambiguous failure must surface to the caller instead of
// being retried into a duplicate order.
func RunOrderFinalizationSequence(ctx workflow.Context, draftID string) (*checkoutdomain.FinalOrder, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order finalization sequence started", "draftId", draftID)
	convertOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}

	var final checkoutdomain.FinalOrder
	err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, convertOptions),
		checkoutactivities.ConvertDraftActivityName,
		checkoutactivities.DraftIdentifier{DraftID: draftID},
	).Get(ctx, &final)
	if err != nil {
		logger.Error("order finalization sequence failed", "draftId", draftID, "error", err)
		return nil, err
	}
	logger.Info("order finalization sequence completed", "draftId", draftID, "orderId", final.ID)
	return &final, nil
}

// RunDraftReleaseSequence deletes an expired draft with bounded retries.
// Deletion is idempotent remotely, so retrying is safe.
func RunDraftReleaseSequence(ctx workflow.Context, draftID string) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("draft release sequence started", "draftId", draftID)
	releaseOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	err := workflow.ExecuteActivity(
		workflow.WithActivityOptions(ctx, releaseOptions),
		checkoutactivities.ReleaseDraftActivityName,
		checkoutactivities.DraftIdentifier{DraftID: draftID},
	).Get(ctx, nil)
	if err != nil {
		logger.Error("draft release sequence failed", "draftId", draftID, "error", err)
		return err
	}
	logger.Info("draft release sequence completed", "draftId", draftID)
	return nil
}
