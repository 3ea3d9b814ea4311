package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-checkout-api/internal/domains/checkout/adapters/memory"
	checkouttypes "github.com/Apurer/go-checkout-api/internal/domains/checkout/application/types"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	"github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// countingAPI wraps the draft collaborator with call counters and injectable
// failures.
type countingAPI struct {
	ports.DraftOrderAPI

	creates     atomic.Int32
	createDelay time.Duration
	createHook  func()
	failCreate  atomic.Bool
	failUpdate  atomic.Bool
}

func (a *countingAPI) Create(ctx context.Context, draft *domain.DraftOrder) (*domain.DraftOrder, error) {
	a.creates.Add(1)
	if a.createDelay > 0 {
		time.Sleep(a.createDelay)
	}
	if a.failCreate.Load() {
		return nil, errors.New("upstream unavailable")
	}
	if a.createHook != nil {
		a.createHook()
	}
	return a.DraftOrderAPI.Create(ctx, draft)
}

func (a *countingAPI) Update(ctx context.Context, id string, update domain.DraftUpdate) (*domain.DraftOrder, error) {
	if a.failUpdate.Load() {
		return nil, errors.New("upstream unavailable")
	}
	return a.DraftOrderAPI.Update(ctx, id, update)
}

// fakeAddressBook is an in-test address book keyed by owner.
type fakeAddressBook struct {
	mu     sync.Mutex
	nextID int64
	saved  map[string][]domain.SavedAddress
}

func newFakeAddressBook() *fakeAddressBook {
	return &fakeAddressBook{saved: map[string][]domain.SavedAddress{}}
}

func (b *fakeAddressBook) List(ctx context.Context, ownerID string) ([]domain.SavedAddress, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.SavedAddress(nil), b.saved[ownerID]...), nil
}

func (b *fakeAddressBook) Save(ctx context.Context, ownerID string, address domain.Address) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.saved[ownerID] = append(b.saved[ownerID], domain.SavedAddress{ID: b.nextID, Address: address})
	return nil
}

func (b *fakeAddressBook) Forget(ctx context.Context, ownerID string, id int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.saved[ownerID]
	for i, entry := range entries {
		if entry.ID == id {
			b.saved[ownerID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return ports.ErrNotFound
}

type fixture struct {
	svc       *Service
	api       *countingAPI
	durable   *memory.DurableStore
	cart      *memory.CartStore
	addresses *fakeAddressBook
	clock     *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := newTestClock()
	api := &countingAPI{DraftOrderAPI: memory.NewDraftAPI(memory.WithClock(clock.Now))}
	durable := memory.NewDurableStore()
	cart := memory.NewCartStore()
	addresses := newFakeAddressBook()
	svc := NewService(Dependencies{
		API:       api,
		Durable:   durable,
		Cart:      cart,
		Addresses: addresses,
		Clock:     clock.Now,
	})
	return &fixture{svc: svc, api: api, durable: durable, cart: cart, addresses: addresses, clock: clock}
}

func (f *fixture) seedCart(sessionID string) {
	f.cart.Put(sessionID, domain.CartSnapshot{
		Items: []domain.LineItem{
			{SKU: "SKU-1", Name: "Wireless Mouse", Quantity: 2, UnitPrice: 2500},
			{SKU: "SKU-2", Name: "USB Hub", Quantity: 1, UnitPrice: 5000},
		},
		Subtotal: 10000,
		Currency: "USD",
	})
}

func validForm() domain.AddressForm {
	return domain.AddressForm{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "+1 555 010 2030",
		Address:   "12 Analytical Way",
		City:      "London",
		Region:    "Greater London",
		Country:   "GB",
	}
}

func (f *fixture) toPaymentStep(t *testing.T, sessionID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.StartCheckout(ctx, checkouttypes.StartCheckoutInput{SessionID: sessionID})
	require.NoError(t, err)
	_, err = f.svc.SetAddress(ctx, checkouttypes.SetAddressInput{SessionID: sessionID, Form: validForm()})
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: sessionID})
	require.NoError(t, err)
	_, err = f.svc.SetShipping(ctx, checkouttypes.SetShippingInput{SessionID: sessionID, MethodID: "standard", Cost: 0, Tax: 1800})
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: sessionID})
	require.NoError(t, err)
}

func TestStartCheckout_SeedsDraftFromCart(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")

	view, err := f.svc.StartCheckout(context.Background(), checkouttypes.StartCheckoutInput{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepAddress, view.Step)
	require.NotNil(t, view.Draft)
	require.Equal(t, int64(10000), view.Draft.Subtotal)
	require.Equal(t, int64(10000), view.Draft.Total)
	require.NotEmpty(t, view.Draft.OrderNumber)
	// Create stays lazy until the first step advance.
	require.Empty(t, view.Draft.ID)
	require.EqualValues(t, 0, f.api.creates.Load())
}

func TestStartCheckout_EmptyCart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.StartCheckout(context.Background(), checkouttypes.StartCheckoutInput{SessionID: "s1"})
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestAdvance_InvalidEmailBlocksWithoutRemoteCalls(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	ctx := context.Background()

	_, err := f.svc.StartCheckout(ctx, checkouttypes.StartCheckoutInput{SessionID: "s1"})
	require.NoError(t, err)

	form := validForm()
	form.Email = "not-an-email"
	_, err = f.svc.SetAddress(ctx, checkouttypes.SetAddressInput{SessionID: "s1", Form: form})
	require.NoError(t, err)

	view, err := f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorContains(t, err, "not-an-email")
	require.Nil(t, view)
	require.EqualValues(t, 0, f.api.creates.Load())

	got, err := f.svc.GetSession(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepAddress, got.Step)
}

func TestAdvance_MissingFieldsAggregated(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	ctx := context.Background()

	_, err := f.svc.StartCheckout(ctx, checkouttypes.StartCheckoutInput{SessionID: "s1"})
	require.NoError(t, err)

	form := validForm()
	form.LastName = ""
	form.City = ""
	_, err = f.svc.SetAddress(ctx, checkouttypes.SetAddressInput{SessionID: "s1", Form: form})
	require.NoError(t, err)

	_, err = f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorContains(t, err, "missing required fields: last name, city")
}

func TestAdvance_ShippingRecomputesTotal(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")

	view, err := f.svc.GetSession(context.Background(), checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepPayment, view.Step)
	require.Equal(t, int64(10000), view.Draft.Subtotal)
	require.Equal(t, int64(0), view.Draft.Shipping)
	require.Equal(t, int64(1800), view.Draft.Tax)
	require.Equal(t, int64(11800), view.Draft.Total)
}

func TestAdvance_ConcurrentCallersShareOneCreate(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.api.createDelay = 20 * time.Millisecond
	ctx := context.Background()

	_, err := f.svc.StartCheckout(ctx, checkouttypes.StartCheckoutInput{SessionID: "s1"})
	require.NoError(t, err)
	_, err = f.svc.SetAddress(ctx, checkouttypes.SetAddressInput{SessionID: "s1", Form: validForm()})
	require.NoError(t, err)

	errs := make(chan error, 5)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.EqualValues(t, 1, f.api.creates.Load())
	view, err := f.svc.GetSession(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.NotEmpty(t, view.Draft.ID)
}

func TestAdvance_CreateFailureRetriesOnceThenSurfaces(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.api.failCreate.Store(true)
	ctx := context.Background()

	_, err := f.svc.StartCheckout(ctx, checkouttypes.StartCheckoutInput{SessionID: "s1"})
	require.NoError(t, err)
	_, err = f.svc.SetAddress(ctx, checkouttypes.SetAddressInput{SessionID: "s1", Form: validForm()})
	require.NoError(t, err)

	_, err = f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.ErrorIs(t, err, ErrCreateFailed)
	require.EqualValues(t, 2, f.api.creates.Load())

	// The collaborator recovers; the next advance succeeds.
	f.api.failCreate.Store(false)
	view, err := f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepDelivery, view.Step)
}

func TestAdvance_SessionResetDuringCreateAdoptsRemoteEcho(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	ctx := context.Background()

	_, err := f.svc.StartCheckout(ctx, checkouttypes.StartCheckoutInput{SessionID: "s1"})
	require.NoError(t, err)
	_, err = f.svc.SetAddress(ctx, checkouttypes.SetAddressInput{SessionID: "s1", Form: validForm()})
	require.NoError(t, err)

	// Clear the local draft while the create is in flight, as a TTL reset
	// racing the first advance would.
	session := f.svc.session("s1")
	f.api.createHook = func() {
		session.mu.Lock()
		session.draft = nil
		session.mu.Unlock()
	}

	view, err := f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepDelivery, view.Step)
	require.NotEmpty(t, view.Draft.ID)
}

func TestAdvance_RemoteUpdateFailureKeepsLocalProgress(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	_, err := f.svc.SetPaymentMethod(ctx, checkouttypes.SetPaymentMethodInput{SessionID: "s1", Method: domain.MethodCashOnDelivery})
	require.NoError(t, err)

	f.api.failUpdate.Store(true)
	view, err := f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepReview, view.Step)
	require.True(t, view.Dirty)
	require.NotEmpty(t, view.Warning)

	// A later successful sync clears the flag.
	f.api.failUpdate.Store(false)
	_, err = f.svc.SetShipping(ctx, checkouttypes.SetShippingInput{SessionID: "s1", MethodID: "express", Cost: 1800, Tax: 0})
	require.NoError(t, err)
	_, err = f.svc.GoTo(ctx, checkouttypes.GoToStepInput{SessionID: "s1", Step: int(domain.StepDelivery)})
	require.NoError(t, err)
	view, err = f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.False(t, view.Dirty)
	require.Empty(t, view.Warning)
}

func TestAdvance_CardFieldsAloneAreNotEnough(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	_, err := f.svc.SubmitCard(ctx, checkouttypes.SubmitCardInput{
		SessionID: "s1",
		Card:      domain.CardForm{Number: "4111 1111 1111 1111", Name: "Ada Lovelace", Expiry: "09/27", CVV: "123"},
	})
	require.NoError(t, err)

	// Well-formed card data without a settled capture blocks the step.
	_, err = f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.ErrorIs(t, err, ErrPaymentRequired)
	require.EqualError(t, err, "complete the payment process")

	view, err := f.svc.GetSession(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepPayment, view.Step)
	// Only the masked summary survives on the draft.
	require.NotNil(t, view.Draft.PaymentDetails)
	require.NotNil(t, view.Draft.PaymentDetails.Card)
	require.Equal(t, "1111", view.Draft.PaymentDetails.Card.LastFour)
	require.Equal(t, "A** L*******", view.Draft.PaymentDetails.Card.MaskedName)
}

func TestAdvance_MalformedCardExpiry(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	_, err := f.svc.SubmitCard(ctx, checkouttypes.SubmitCardInput{
		SessionID: "s1",
		Card:      domain.CardForm{Number: "4111111111111111", Name: "Ada Lovelace", Expiry: "13/27", CVV: "123"},
	})
	require.NoError(t, err)

	_, err = f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorContains(t, err, "MM/YY")
}

func TestCompletePayment_IncompletePayloadRejected(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	_, err := f.svc.SetPaymentMethod(ctx, checkouttypes.SetPaymentMethodInput{SessionID: "s1", Method: domain.MethodPayPal})
	require.NoError(t, err)

	_, err = f.svc.CompletePayment(ctx, checkouttypes.PaymentCallbackInput{
		SessionID:     "s1",
		Provider:      "paypal",
		TransactionID: "TX-1",
		PayerID:       "PAYER-1",
		Amount:        11800,
		Currency:      "USD",
		Status:        "COMPLETED",
	})
	require.ErrorIs(t, err, ErrValidation)
	require.ErrorContains(t, err, "payerEmail")

	// The failed callback leaves no durable record and no status change.
	record, recErr := f.durable.LastPayment(ctx, "s1")
	require.NoError(t, recErr)
	require.Nil(t, record)
	view, err := f.svc.GetSession(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.PaymentPending, view.PaymentStatus)
}

func TestCompletePayment_DuplicateCallbackIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	callback := checkouttypes.PaymentCallbackInput{
		SessionID:     "s1",
		Provider:      "paypal",
		TransactionID: "TX-1",
		PayerID:       "PAYER-1",
		PayerEmail:    "ada@example.com",
		Amount:        11800,
		Currency:      "USD",
		Status:        "COMPLETED",
	}
	first, err := f.svc.CompletePayment(ctx, callback)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentPaid, first.PaymentStatus)

	second, err := f.svc.CompletePayment(ctx, callback)
	require.NoError(t, err)
	require.Equal(t, domain.PaymentPaid, second.PaymentStatus)
	require.Equal(t, "TX-1", second.Draft.PaymentDetails.Wallet.TransactionID)
}

func TestCompletePayment_ThenAdvanceReachesReview(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	_, err := f.svc.SetPaymentMethod(ctx, checkouttypes.SetPaymentMethodInput{SessionID: "s1", Method: domain.MethodPayPal})
	require.NoError(t, err)
	_, err = f.svc.CompletePayment(ctx, checkouttypes.PaymentCallbackInput{
		SessionID: "s1", Provider: "paypal", TransactionID: "TX-1", PayerID: "P1",
		PayerEmail: "ada@example.com", Amount: 11800, Currency: "USD", Status: "COMPLETED",
	})
	require.NoError(t, err)

	view, err := f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepReview, view.Step)
}

func TestAdvance_AdoptsDurablePaymentAfterRestart(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	_, err := f.svc.SetPaymentMethod(ctx, checkouttypes.SetPaymentMethodInput{SessionID: "s1", Method: domain.MethodPayPal})
	require.NoError(t, err)

	// The provider callback lands but the remote push is rejected, so only
	// the durable side-channel knows the payment settled.
	f.api.failUpdate.Store(true)
	_, err = f.svc.CompletePayment(ctx, checkouttypes.PaymentCallbackInput{
		SessionID: "s1", Provider: "paypal", TransactionID: "TX-9", PayerID: "P1",
		PayerEmail: "ada@example.com", Amount: 11800, Currency: "USD", Status: "COMPLETED",
	})
	require.NoError(t, err)
	f.api.failUpdate.Store(false)

	// A fresh service instance over the same stores simulates a reload into a
	// new process between the callback and the in-memory update.
	restarted := NewService(Dependencies{
		API:     f.api,
		Durable: f.durable,
		Cart:    f.cart,
		Clock:   f.clock.Now,
	})
	view, err := restarted.GetSession(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepPayment, view.Step)
	require.Equal(t, domain.PaymentPending, view.PaymentStatus)

	_, err = restarted.SetPaymentMethod(ctx, checkouttypes.SetPaymentMethodInput{SessionID: "s1", Method: domain.MethodPayPal})
	require.NoError(t, err)

	view, err = restarted.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepReview, view.Step)
	require.Equal(t, domain.PaymentPaid, view.PaymentStatus)
	require.Equal(t, "TX-9", view.Draft.PaymentDetails.Wallet.TransactionID)
}

func TestFailPayment_SurfacesProviderMessageAndAllowsRetry(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	_, err := f.svc.SetPaymentMethod(ctx, checkouttypes.SetPaymentMethodInput{SessionID: "s1", Method: domain.MethodPayPal})
	require.NoError(t, err)

	view, err := f.svc.FailPayment(ctx, checkouttypes.PaymentFailureInput{SessionID: "s1", Provider: "paypal", Message: "INSTRUMENT_DECLINED"})
	require.NoError(t, err)
	require.Equal(t, domain.PaymentFailed, view.PaymentStatus)
	require.Equal(t, "INSTRUMENT_DECLINED", view.PaymentMessage)

	// Re-selecting the method re-enters the attempt at pending.
	view, err = f.svc.SetPaymentMethod(ctx, checkouttypes.SetPaymentMethodInput{SessionID: "s1", Method: domain.MethodPayPal})
	require.NoError(t, err)
	require.Equal(t, domain.PaymentPending, view.PaymentStatus)
	require.Empty(t, view.PaymentMessage)
}

func TestCancelPayment_SetsCancelledState(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	_, err := f.svc.SetPaymentMethod(ctx, checkouttypes.SetPaymentMethodInput{SessionID: "s1", Method: domain.MethodPayPal})
	require.NoError(t, err)

	view, err := f.svc.CancelPayment(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.PaymentCancelled, view.PaymentStatus)
	require.Equal(t, "payment was cancelled", view.PaymentMessage)
}

func TestPlaceOrder_ManualMethodFullFlow(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	_, err := f.svc.SetPaymentMethod(ctx, checkouttypes.SetPaymentMethodInput{SessionID: "s1", Method: domain.MethodCashOnDelivery})
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)

	confirmation, err := f.svc.PlaceOrder(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.NotEmpty(t, confirmation.OrderID)
	require.Equal(t, int64(11800), confirmation.Total)
	require.Equal(t, "USD", confirmation.Currency)
	require.Len(t, confirmation.Items, 2)

	// Cart and durable traces are gone.
	_, err = f.cart.Snapshot(ctx, "s1")
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	draftID, err := f.durable.DraftID(ctx, "s1")
	require.NoError(t, err)
	require.Empty(t, draftID)
}

func TestPlaceOrder_SecondCallReturnsSameConfirmation(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	_, err := f.svc.SetPaymentMethod(ctx, checkouttypes.SetPaymentMethodInput{SessionID: "s1", Method: domain.MethodBankTransfer})
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)

	first, err := f.svc.PlaceOrder(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	second, err := f.svc.PlaceOrder(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, first.OrderID, second.OrderID)
	require.Equal(t, first.OrderNumber, second.OrderNumber)

	// Mutations after completion are rejected.
	_, err = f.svc.SetAddress(ctx, checkouttypes.SetAddressInput{SessionID: "s1", Form: validForm()})
	require.ErrorIs(t, err, ErrSessionCompleted)
}

func TestSavedAddresses_OptInPlacementRemembersAddress(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	form := validForm()
	form.SaveForReuse = true
	_, err := f.svc.SetAddress(ctx, checkouttypes.SetAddressInput{SessionID: "s1", Form: form})
	require.NoError(t, err)
	_, err = f.svc.SetPaymentMethod(ctx, checkouttypes.SetPaymentMethodInput{SessionID: "s1", Method: domain.MethodCashOnDelivery})
	require.NoError(t, err)
	_, err = f.svc.Advance(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	_, err = f.svc.PlaceOrder(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)

	saved, err := f.svc.SavedAddresses(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	require.NotZero(t, saved[0].ID)
	require.Equal(t, "12 Analytical Way", saved[0].AddressLine1)

	forgottenID := saved[0].ID
	require.NoError(t, f.svc.ForgetAddress(ctx, checkouttypes.ForgetAddressInput{SessionID: "s1", AddressID: forgottenID}))
	saved, err = f.svc.SavedAddresses(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Empty(t, saved)

	err = f.svc.ForgetAddress(ctx, checkouttypes.ForgetAddressInput{SessionID: "s1", AddressID: forgottenID})
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSavedAddresses_WithoutAddressBookIsEmpty(t *testing.T) {
	f := newFixture(t)
	bare := NewService(Dependencies{
		API:     f.api,
		Durable: f.durable,
		Cart:    f.cart,
		Clock:   f.clock.Now,
	})
	ctx := context.Background()

	saved, err := bare.SavedAddresses(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Empty(t, saved)
	require.ErrorIs(t, bare.ForgetAddress(ctx, checkouttypes.ForgetAddressInput{SessionID: "s1", AddressID: 1}), ports.ErrNotFound)
}

func TestPlaceOrder_UnsettledWalletBlocked(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	_, err := f.svc.SetPaymentMethod(ctx, checkouttypes.SetPaymentMethodInput{SessionID: "s1", Method: domain.MethodPayPal})
	require.NoError(t, err)

	_, err = f.svc.PlaceOrder(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.ErrorIs(t, err, ErrPaymentRequired)
}

func TestGetSession_RehydratesFromDurableDraftID(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	// A fresh service instance over the same stores simulates a new process.
	restarted := NewService(Dependencies{
		API:     f.api,
		Durable: f.durable,
		Cart:    f.cart,
		Clock:   f.clock.Now,
	})
	view, err := restarted.GetSession(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepPayment, view.Step)
	require.Equal(t, int64(11800), view.Draft.Total)
	require.NotNil(t, view.AddressForm)
	require.Equal(t, "ada@example.com", view.AddressForm.Email)
}

func TestGetSession_UnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetSession(context.Background(), checkouttypes.SessionIdentifier{SessionID: "nobody"})
	require.ErrorIs(t, err, ErrUnknownSession)
}

func TestStartCheckout_DanglingDraftIDStartsFresh(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	ctx := context.Background()

	require.NoError(t, f.durable.SaveDraftID(ctx, "s1", "gone-draft"))

	view, err := f.svc.StartCheckout(ctx, checkouttypes.StartCheckoutInput{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepAddress, view.Step)
	require.Empty(t, view.Draft.ID)
}

func TestStartCheckout_ElapsedTTLResetsSession(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	before, err := f.svc.GetSession(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	staleID := before.Draft.ID
	require.NotEmpty(t, staleID)

	f.clock.Advance(DraftTTL + time.Minute)
	f.seedCart("s1")

	view, err := f.svc.StartCheckout(ctx, checkouttypes.StartCheckoutInput{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepAddress, view.Step)
	require.Empty(t, view.Draft.ID)

	_, err = f.api.Get(ctx, staleID)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPurgeExpired_RemovesDraftAndDurableRecords(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.seedCart("s2")
	f.toPaymentStep(t, "s1")
	f.toPaymentStep(t, "s2")
	ctx := context.Background()

	// Only s1 goes stale.
	require.NoError(t, f.durable.StampCleanupAfter(ctx, "s1", f.clock.Now().Add(-time.Minute)))

	purged, err := f.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, purged)

	draftID, err := f.durable.DraftID(ctx, "s1")
	require.NoError(t, err)
	require.Empty(t, draftID)
	draftID, err = f.durable.DraftID(ctx, "s2")
	require.NoError(t, err)
	require.NotEmpty(t, draftID)
}

func TestRetreatAndGoTo_BoundSteps(t *testing.T) {
	f := newFixture(t)
	f.seedCart("s1")
	f.toPaymentStep(t, "s1")
	ctx := context.Background()

	view, err := f.svc.Retreat(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepDelivery, view.Step)

	view, err = f.svc.GoTo(ctx, checkouttypes.GoToStepInput{SessionID: "s1", Step: 99})
	require.NoError(t, err)
	require.Equal(t, domain.StepReview, view.Step)

	view, err = f.svc.GoTo(ctx, checkouttypes.GoToStepInput{SessionID: "s1", Step: -3})
	require.NoError(t, err)
	require.Equal(t, domain.StepAddress, view.Step)

	view, err = f.svc.Retreat(ctx, checkouttypes.SessionIdentifier{SessionID: "s1"})
	require.NoError(t, err)
	require.Equal(t, domain.StepAddress, view.Step)
}
