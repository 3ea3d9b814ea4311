package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	checkouttypes "github.com/Apurer/go-checkout-api/internal/domains/checkout/application/types"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

// Dependencies bundles the collaborators a checkout session needs. API,
// Durable, and Cart are required; the rest are optional.
type Dependencies struct {
	API       ports.DraftOrderAPI
	Durable   ports.DurableStore
	Cart      ports.CartProvider
	Addresses ports.AddressBook
	Converter ports.CurrencyConverter
	Finalizer ports.FinalizationOrchestrator
	Logger    *slog.Logger
	Clock     func() time.Time
}

// Service orchestrates checkout sessions. Each shopper session carries its
// own guard state; the service itself only keys sessions by id.
type Service struct {
	deps Dependencies

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService wires the checkout service with its collaborators and defaults.
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Finalizer == nil {
		deps.Finalizer = inlineFinalizer{api: deps.API}
	}
	return &Service{
		deps:     deps,
		sessions: map[string]*Session{},
	}
}

// inlineFinalizer converts drafts directly via the collaborator API.
type inlineFinalizer struct {
	api ports.DraftOrderAPI
}

func (f inlineFinalizer) Finalize(ctx context.Context, draftID string) (*domain.FinalOrder, error) {
	return f.api.Convert(ctx, draftID)
}

func (s *Service) session(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		session = newSession(id, &s.deps)
		s.sessions[id] = session
	}
	return session
}

func (s *Service) dropSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// StartCheckout enters the flow: TTL check, reconcile against a durable draft
// id, or seed a fresh draft from the cart.
func (s *Service) StartCheckout(ctx context.Context, input checkouttypes.StartCheckoutInput) (*checkouttypes.SessionView, error) {
	session := s.session(input.SessionID)
	if err := session.start(ctx); err != nil {
		return nil, err
	}
	return session.view(), nil
}

// GetSession returns the current projection, rehydrating from durable records
// when this process has no in-memory state for the id.
func (s *Service) GetSession(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.SessionView, error) {
	s.mu.Lock()
	session, known := s.sessions[input.SessionID]
	s.mu.Unlock()
	if known {
		return session.view(), nil
	}
	draftID, err := s.deps.Durable.DraftID(ctx, input.SessionID)
	if err != nil || draftID == "" {
		return nil, ErrUnknownSession
	}
	session = s.session(input.SessionID)
	if err := session.start(ctx); err != nil {
		return nil, err
	}
	return session.view(), nil
}

// SavedAddresses lists the shopper's remembered addresses for form prefill.
// Sessions without an address book just see an empty list.
func (s *Service) SavedAddresses(ctx context.Context, input checkouttypes.SessionIdentifier) ([]domain.SavedAddress, error) {
	if s.deps.Addresses == nil {
		return nil, nil
	}
	return s.deps.Addresses.List(ctx, input.SessionID)
}

// ForgetAddress drops one remembered address from the shopper's book.
func (s *Service) ForgetAddress(ctx context.Context, input checkouttypes.ForgetAddressInput) error {
	if s.deps.Addresses == nil {
		return ports.ErrNotFound
	}
	return s.deps.Addresses.Forget(ctx, input.SessionID, input.AddressID)
}

func (s *Service) SetAddress(ctx context.Context, input checkouttypes.SetAddressInput) (*checkouttypes.SessionView, error) {
	session := s.session(input.SessionID)
	if err := session.rejectIfCompleted(); err != nil {
		return nil, err
	}
	session.setAddress(input.Form)
	return session.view(), nil
}

func (s *Service) SetShipping(ctx context.Context, input checkouttypes.SetShippingInput) (*checkouttypes.SessionView, error) {
	session := s.session(input.SessionID)
	if err := session.rejectIfCompleted(); err != nil {
		return nil, err
	}
	if err := session.setShipping(input.MethodID, input.Cost, input.Tax); err != nil {
		return nil, err
	}
	return session.view(), nil
}

func (s *Service) SetPaymentMethod(ctx context.Context, input checkouttypes.SetPaymentMethodInput) (*checkouttypes.SessionView, error) {
	session := s.session(input.SessionID)
	if err := session.rejectIfCompleted(); err != nil {
		return nil, err
	}
	if err := session.setPaymentMethod(input.Method); err != nil {
		return nil, err
	}
	return session.view(), nil
}

func (s *Service) SubmitCard(ctx context.Context, input checkouttypes.SubmitCardInput) (*checkouttypes.SessionView, error) {
	session := s.session(input.SessionID)
	if err := session.rejectIfCompleted(); err != nil {
		return nil, err
	}
	if err := session.submitCard(input.Card); err != nil {
		return nil, err
	}
	return session.view(), nil
}

func (s *Service) Advance(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.SessionView, error) {
	session := s.session(input.SessionID)
	if err := session.rejectIfCompleted(); err != nil {
		return nil, err
	}
	if err := session.advance(ctx); err != nil {
		return nil, err
	}
	return session.view(), nil
}

func (s *Service) Retreat(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.SessionView, error) {
	session := s.session(input.SessionID)
	session.retreat()
	return session.view(), nil
}

func (s *Service) GoTo(ctx context.Context, input checkouttypes.GoToStepInput) (*checkouttypes.SessionView, error) {
	session := s.session(input.SessionID)
	session.goTo(input.Step)
	return session.view(), nil
}

func (s *Service) CompletePayment(ctx context.Context, input checkouttypes.PaymentCallbackInput) (*checkouttypes.SessionView, error) {
	session := s.session(input.SessionID)
	if err := session.completePayment(ctx, input); err != nil {
		return nil, err
	}
	return session.view(), nil
}

func (s *Service) FailPayment(ctx context.Context, input checkouttypes.PaymentFailureInput) (*checkouttypes.SessionView, error) {
	session := s.session(input.SessionID)
	session.failPayment(ctx, input.Provider, input.Message)
	return session.view(), nil
}

func (s *Service) CancelPayment(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.SessionView, error) {
	session := s.session(input.SessionID)
	session.cancelPayment(ctx)
	return session.view(), nil
}

func (s *Service) PlaceOrder(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.OrderConfirmation, error) {
	session := s.session(input.SessionID)
	return session.placeOrder(ctx)
}

// PurgeExpired removes drafts whose cleanup-after stamp elapsed, remotely and
// durably, and drops any in-memory session for them.
func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	refs, err := s.deps.Durable.ListExpired(ctx, s.deps.Clock())
	if err != nil {
		return 0, err
	}
	purged := 0
	for _, ref := range refs {
		if ref.DraftID != "" {
			if err := s.deps.API.Delete(ctx, ref.DraftID); err != nil && !errors.Is(err, ports.ErrNotFound) {
				s.deps.Logger.Warn("failed to delete expired draft",
					slog.String("session", ref.SessionID), slog.String("draft", ref.DraftID), slog.String("error", err.Error()))
				continue
			}
		}
		if err := s.deps.Durable.Clear(ctx, ref.SessionID); err != nil {
			s.deps.Logger.Warn("failed to clear durable records",
				slog.String("session", ref.SessionID), slog.String("error", err.Error()))
			continue
		}
		s.dropSession(ref.SessionID)
		purged++
	}
	return purged, nil
}

var _ ports.Service = (*Service)(nil)
