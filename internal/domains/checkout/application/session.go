package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	checkouttypes "github.com/Apurer/go-checkout-api/internal/domains/checkout/application/types"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

// DraftTTL bounds the lifetime of abandoned checkouts.
const DraftTTL = 24 * time.Hour

// Session is the per-shopper checkout session: the authoritative in-memory
// draft order plus the step position and transient form state. All
// cross-component sharing goes through this object; there is no ambient
// global state.
type Session struct {
	id   string
	deps *Dependencies

	mu           sync.Mutex
	draft        *domain.DraftOrder
	form         *domain.AddressForm
	card         *domain.CardForm
	step         domain.Step
	dirty        bool
	warning      string
	payMsg       string
	display      *checkouttypes.DisplayAmount
	confirmation *checkouttypes.OrderConfirmation

	// creating is the reentrancy guard around the remote create: concurrent
	// callers await the in-flight result instead of issuing a second request.
	creating *createAttempt
}

type createAttempt struct {
	done  chan struct{}
	draft *domain.DraftOrder
	err   error
}

func newSession(id string, deps *Dependencies) *Session {
	return &Session{id: id, deps: deps}
}

// start enters (or rehydrates) the checkout flow: it enforces the stale-draft
// TTL, reconciles against a durable draft id when one exists, and otherwise
// seeds a fresh local draft from the cart snapshot.
func (s *Session) start(ctx context.Context) error {
	if err := s.checkCleanup(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	if s.confirmation != nil || s.draft != nil {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	draftID, err := s.deps.Durable.DraftID(ctx, s.id)
	if err != nil {
		s.deps.Logger.Warn("durable draft id unreadable, starting fresh",
			slog.String("session", s.id), slog.String("error", err.Error()))
		draftID = ""
	}
	if draftID != "" {
		return s.reconcile(ctx, draftID)
	}
	if err := s.seedLocal(ctx); err != nil {
		return err
	}
	return s.stampCleanup(ctx)
}

// seedLocal builds the local draft from the cart snapshot. The remote create
// stays lazy: it happens on the first step advance.
func (s *Session) seedLocal(ctx context.Context) error {
	cart, err := s.deps.Cart.Snapshot(ctx, s.id)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEmptyCart, err)
	}
	now := s.deps.Clock()
	number := domain.NewOrderNumber(now, uuid.NewString()[:8])
	draft, err := domain.NewDraftOrder(cart, number, now)
	if err != nil {
		return mapError(err)
	}
	s.mu.Lock()
	s.draft = draft
	s.step = domain.StepAddress
	s.mu.Unlock()
	return nil
}

// reconcile hydrates session state from the remote draft behind a durable id.
// A failed fetch discards the id and starts fresh rather than leaving the
// shopper stuck.
func (s *Session) reconcile(ctx context.Context, draftID string) error {
	remote, err := s.deps.API.Get(ctx, draftID)
	if err != nil {
		s.deps.Logger.Warn("stored draft unavailable, discarding its id",
			slog.String("session", s.id), slog.String("draft", draftID), slog.String("error", err.Error()))
		if clearErr := s.deps.Durable.Clear(ctx, s.id); clearErr != nil {
			s.deps.Logger.Warn("failed to clear durable records", slog.String("session", s.id), slog.String("error", clearErr.Error()))
		}
		if err := s.seedLocal(ctx); err != nil {
			return err
		}
		return s.stampCleanup(ctx)
	}

	step, inferErr := domain.InferStep(remote)
	if inferErr != nil {
		return mapError(fmt.Errorf("%w: draft %s", inferErr, draftID))
	}
	s.mu.Lock()
	s.draft = remote.Clone()
	if remote.ShippingAddress != nil {
		form := domain.AddressToForm(*remote.ShippingAddress)
		s.form = &form
	}
	s.step = step
	s.mu.Unlock()
	return s.stampCleanup(ctx)
}

// ensureRemote performs the lazy remote create exactly once. A second caller
// that arrives while the create is in flight blocks on the shared attempt and
// adopts its result.
func (s *Session) ensureRemote(ctx context.Context) (*domain.DraftOrder, error) {
	s.mu.Lock()
	if s.draft != nil && s.draft.ID != "" {
		draft := s.draft
		s.mu.Unlock()
		return draft, nil
	}
	if s.creating != nil {
		attempt := s.creating
		s.mu.Unlock()
		select {
		case <-attempt.done:
			return attempt.draft, attempt.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.draft == nil {
		s.mu.Unlock()
		if err := s.seedLocal(ctx); err != nil {
			return nil, err
		}
		s.mu.Lock()
	}
	attempt := &createAttempt{done: make(chan struct{})}
	s.creating = attempt
	payload := s.draft.Clone()
	s.mu.Unlock()

	created, err := s.deps.API.Create(ctx, payload)

	s.mu.Lock()
	switch {
	case err != nil:
		attempt.err = fmt.Errorf("%w: %w", ErrCreateFailed, err)
	case s.draft == nil:
		// A TTL reset cleared the session while the create was in flight.
		// The reset could not have deleted the draft remotely (it had no id
		// yet), so adopt the echo instead of dereferencing the cleared slot.
		s.draft = created.Clone()
		attempt.draft = s.draft
	default:
		// Identity is immutable once assigned; local mutations made while the
		// create was in flight win over the remote echo.
		s.draft.ID = created.ID
		if created.OrderNumber != "" {
			s.draft.OrderNumber = created.OrderNumber
		}
		attempt.draft = s.draft
	}
	s.creating = nil
	close(attempt.done)
	draft := s.draft
	s.mu.Unlock()

	if attempt.err != nil {
		return nil, attempt.err
	}
	if err := s.deps.Durable.SaveDraftID(ctx, s.id, draft.ID); err != nil {
		s.deps.Logger.Warn("failed to persist durable draft id",
			slog.String("session", s.id), slog.String("draft", draft.ID), slog.String("error", err.Error()))
	}
	if err := s.stampCleanup(ctx); err != nil {
		s.deps.Logger.Warn("failed to stamp cleanup deadline", slog.String("session", s.id), slog.String("error", err.Error()))
	}
	return draft, nil
}

// applyUpdate merges the partial locally, then persists it remotely. A remote
// failure keeps the local merge and marks the session dirty: losing step
// progress is worse than a stale remote mirror. Create failures get a single
// fallback re-attempt before surfacing.
func (s *Session) applyUpdate(ctx context.Context, update domain.DraftUpdate) error {
	draft, err := s.ensureRemote(ctx)
	if errors.Is(err, ErrCreateFailed) {
		draft, err = s.ensureRemote(ctx)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.draft.Apply(update, s.deps.Clock())
	id := draft.ID
	s.mu.Unlock()

	if _, err := s.deps.API.Update(ctx, id, update); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.warning = "changes saved locally but not yet synced"
		s.mu.Unlock()
		s.deps.Logger.Warn("draft update rejected remotely, keeping local merge",
			slog.String("session", s.id), slog.String("draft", id), slog.String("error", err.Error()))
	} else {
		s.mu.Lock()
		s.dirty = false
		s.warning = ""
		s.mu.Unlock()
	}
	return s.stampCleanup(ctx)
}

func (s *Session) stampCleanup(ctx context.Context) error {
	deadline := s.deps.Clock().Add(DraftTTL)
	if err := s.deps.Durable.StampCleanupAfter(ctx, s.id, deadline); err != nil {
		s.deps.Logger.Warn("failed to stamp cleanup deadline",
			slog.String("session", s.id), slog.String("error", err.Error()))
	}
	return nil
}

// checkCleanup deletes the draft when its cleanup-after stamp has elapsed,
// bounding the lifetime of abandoned checkouts.
func (s *Session) checkCleanup(ctx context.Context) error {
	deadline, err := s.deps.Durable.CleanupAfter(ctx, s.id)
	if err != nil || deadline.IsZero() {
		return nil
	}
	if s.deps.Clock().Before(deadline) {
		return nil
	}
	draftID, _ := s.deps.Durable.DraftID(ctx, s.id)
	if draftID == "" {
		s.mu.Lock()
		if s.draft != nil {
			draftID = s.draft.ID
		}
		s.mu.Unlock()
	}
	if draftID != "" {
		if err := s.deps.API.Delete(ctx, draftID); err != nil && !errors.Is(err, ports.ErrNotFound) {
			s.deps.Logger.Warn("failed to delete expired draft",
				slog.String("session", s.id), slog.String("draft", draftID), slog.String("error", err.Error()))
		}
	}
	if err := s.deps.Durable.Clear(ctx, s.id); err != nil {
		s.deps.Logger.Warn("failed to clear durable records", slog.String("session", s.id), slog.String("error", err.Error()))
	}
	s.mu.Lock()
	s.draft = nil
	s.form = nil
	s.card = nil
	s.step = domain.StepAddress
	s.dirty = false
	s.warning = ""
	s.payMsg = ""
	s.display = nil
	s.mu.Unlock()
	return nil
}

// view assembles the session projection.
func (s *Session) view() *checkouttypes.SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	view := &checkouttypes.SessionView{
		SessionID:      s.id,
		Step:           s.step,
		StepName:       s.step.String(),
		Dirty:          s.dirty,
		Warning:        s.warning,
		PaymentMessage: s.payMsg,
		Completed:      s.confirmation != nil,
	}
	if s.draft != nil {
		view.Draft = s.draft.Clone()
		view.PaymentStatus = s.draft.PaymentStatus
		view.PaymentMethod = s.draft.PaymentMethod
	}
	if s.form != nil {
		form := *s.form
		view.AddressForm = &form
	}
	if s.display != nil {
		display := *s.display
		view.DisplayTotal = &display
	}
	return view
}

func (s *Session) rejectIfCompleted() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.confirmation != nil {
		return ErrSessionCompleted
	}
	return nil
}
