package ports

import (
	"context"

	checkouttypes "github.com/Apurer/go-checkout-api/internal/domains/checkout/application/types"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
)

// Service defines the checkout use cases exposed to adapters (driving port).
type Service interface {
	StartCheckout(ctx context.Context, input checkouttypes.StartCheckoutInput) (*checkouttypes.SessionView, error)
	GetSession(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.SessionView, error)

	SavedAddresses(ctx context.Context, input checkouttypes.SessionIdentifier) ([]domain.SavedAddress, error)
	ForgetAddress(ctx context.Context, input checkouttypes.ForgetAddressInput) error

	SetAddress(ctx context.Context, input checkouttypes.SetAddressInput) (*checkouttypes.SessionView, error)
	SetShipping(ctx context.Context, input checkouttypes.SetShippingInput) (*checkouttypes.SessionView, error)
	SetPaymentMethod(ctx context.Context, input checkouttypes.SetPaymentMethodInput) (*checkouttypes.SessionView, error)
	SubmitCard(ctx context.Context, input checkouttypes.SubmitCardInput) (*checkouttypes.SessionView, error)

	Advance(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.SessionView, error)
	Retreat(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.SessionView, error)
	GoTo(ctx context.Context, input checkouttypes.GoToStepInput) (*checkouttypes.SessionView, error)

	CompletePayment(ctx context.Context, input checkouttypes.PaymentCallbackInput) (*checkouttypes.SessionView, error)
	FailPayment(ctx context.Context, input checkouttypes.PaymentFailureInput) (*checkouttypes.SessionView, error)
	CancelPayment(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.SessionView, error)

	PlaceOrder(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.OrderConfirmation, error)

	// PurgeExpired deletes drafts whose cleanup-after stamp elapsed and
	// returns how many were removed.
	PurgeExpired(ctx context.Context) (int, error)
}
