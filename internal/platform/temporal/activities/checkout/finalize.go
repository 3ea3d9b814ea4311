package checkout

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	checkoutdomain "github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	checkoutports "github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

const (
	// ConvertDraftActivityName converts a draft order into an immutable order.
	ConvertDraftActivityName = "checkout.activities.ConvertDraft"
	// ReleaseDraftActivityName deletes an expired draft from the remote service.
	ReleaseDraftActivityName = "checkout.activities.ReleaseDraft"
)

// DraftIdentifier addresses a draft order held by the remote collaborator.
type DraftIdentifier struct {
	DraftID string
}

// Activities groups activities that operate on the checkout bounded context.
type Activities struct {
	api checkoutports.DraftOrderAPI
}

// NewActivities wires the draft-order collaborator into the Temporal activities bundle.
func NewActivities(api checkoutports.DraftOrderAPI) *Activities {
	return &Activities{api: api}
}

// ConvertDraft finalizes the draft. Conversion is at-most-once on the remote
// side; callers configure the retry policy to a single attempt so an
// ambiguous failure is surfaced rather than blindly retried.
func (a *Activities) ConvertDraft(ctx context.Context, input DraftIdentifier) (*checkoutdomain.FinalOrder, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.api == nil {
		logger.Error("convert draft activity not initialized", "draftId", input.DraftID)
		return nil, errors.New("convert draft activity not initialized")
	}
	logger.Info("ConvertDraft activity started", "draftId", input.DraftID)
	final, err := a.api.Convert(ctx, input.DraftID)
	if err != nil {
		logger.Error("ConvertDraft activity failed", "draftId", input.DraftID, "error", err)
		return nil, err
	}
	logger.Info("ConvertDraft activity completed", "draftId", input.DraftID, "orderId", final.ID)
	return final, nil
}

// ReleaseDraft removes a stale draft. A draft already gone remotely counts
// as released.
func (a *Activities) ReleaseDraft(ctx context.Context, input DraftIdentifier) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.api == nil {
		logger.Error("release draft activity not initialized", "draftId", input.DraftID)
		return errors.New("release draft activity not initialized")
	}
	logger.Info("ReleaseDraft activity started", "draftId", input.DraftID)
	if err := a.api.Delete(ctx, input.DraftID); err != nil {
		if errors.Is(err, checkoutports.ErrNotFound) {
			logger.Info("ReleaseDraft: draft already gone", "draftId", input.DraftID)
			return nil
		}
		logger.Error("ReleaseDraft activity failed", "draftId", input.DraftID, "error", err)
		return err
	}
	logger.Info("ReleaseDraft activity completed", "draftId", input.DraftID)
	return nil
}
