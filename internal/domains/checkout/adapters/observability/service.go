package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	checkouttypes "github.com/Apurer/go-checkout-api/internal/domains/checkout/application/types"
	checkoutdomain "github.com/Apurer/go-checkout-api/internal/domains/checkout/domain"
	checkoutports "github.com/Apurer/go-checkout-api/internal/domains/checkout/ports"
)

const tracerName = "github.com/Apurer/go-checkout-api/internal/domains/checkout/adapters/observability/service"

// Service decorates the checkout service with tracing, logging, and metrics.
type Service struct {
	inner   checkoutports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core checkout service.
func New(inner checkoutports.Service, opts ...Option) checkoutports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) StartCheckout(ctx context.Context, input checkouttypes.StartCheckoutInput) (*checkouttypes.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.StartCheckout",
		trace.WithAttributes(attribute.String("checkout.session_id", input.SessionID)))
	defer span.End()

	s.logInfo(ctx, "starting checkout", slog.String("session", input.SessionID))
	view, err := s.inner.StartCheckout(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to start checkout", slog.String("session", input.SessionID))
	}
	s.metrics.recordStarted(ctx)
	s.logInfo(ctx, "checkout started", slog.String("session", input.SessionID), slog.String("step", view.StepName))
	return view, nil
}

func (s *Service) GetSession(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.GetSession",
		trace.WithAttributes(attribute.String("checkout.session_id", input.SessionID)))
	defer span.End()

	view, err := s.inner.GetSession(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load session", slog.String("session", input.SessionID))
	}
	span.SetAttributes(attribute.String("checkout.step", view.StepName))
	return view, nil
}

func (s *Service) SavedAddresses(ctx context.Context, input checkouttypes.SessionIdentifier) ([]checkoutdomain.SavedAddress, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.SavedAddresses",
		trace.WithAttributes(attribute.String("checkout.session_id", input.SessionID)))
	defer span.End()

	saved, err := s.inner.SavedAddresses(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list saved addresses", slog.String("session", input.SessionID))
	}
	span.SetAttributes(attribute.Int("checkout.saved_addresses", len(saved)))
	return saved, nil
}

func (s *Service) ForgetAddress(ctx context.Context, input checkouttypes.ForgetAddressInput) error {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.ForgetAddress",
		trace.WithAttributes(
			attribute.String("checkout.session_id", input.SessionID),
			attribute.Int64("checkout.address_id", input.AddressID)))
	defer span.End()

	if err := s.inner.ForgetAddress(ctx, input); err != nil {
		return s.handleError(ctx, span, err, "failed to forget saved address", slog.String("session", input.SessionID))
	}
	return nil
}

func (s *Service) SetAddress(ctx context.Context, input checkouttypes.SetAddressInput) (*checkouttypes.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.SetAddress",
		trace.WithAttributes(attribute.String("checkout.session_id", input.SessionID)))
	defer span.End()

	view, err := s.inner.SetAddress(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set address", slog.String("session", input.SessionID))
	}
	return view, nil
}

func (s *Service) SetShipping(ctx context.Context, input checkouttypes.SetShippingInput) (*checkouttypes.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.SetShipping",
		trace.WithAttributes(
			attribute.String("checkout.session_id", input.SessionID),
			attribute.String("checkout.shipping_method", input.MethodID)))
	defer span.End()

	view, err := s.inner.SetShipping(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set shipping", slog.String("session", input.SessionID))
	}
	return view, nil
}

func (s *Service) SetPaymentMethod(ctx context.Context, input checkouttypes.SetPaymentMethodInput) (*checkouttypes.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.SetPaymentMethod",
		trace.WithAttributes(
			attribute.String("checkout.session_id", input.SessionID),
			attribute.String("checkout.payment_method", string(input.Method))))
	defer span.End()

	view, err := s.inner.SetPaymentMethod(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set payment method", slog.String("session", input.SessionID))
	}
	return view, nil
}

func (s *Service) SubmitCard(ctx context.Context, input checkouttypes.SubmitCardInput) (*checkouttypes.SessionView, error) {
	// Card fields never reach span attributes or logs.
	ctx, span := s.tracer.Start(ctx, "CheckoutService.SubmitCard",
		trace.WithAttributes(attribute.String("checkout.session_id", input.SessionID)))
	defer span.End()

	view, err := s.inner.SubmitCard(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to submit card", slog.String("session", input.SessionID))
	}
	return view, nil
}

func (s *Service) Advance(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.Advance",
		trace.WithAttributes(attribute.String("checkout.session_id", input.SessionID)))
	defer span.End()

	view, err := s.inner.Advance(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to advance checkout", slog.String("session", input.SessionID))
	}
	s.metrics.recordStep(ctx, view.StepName)
	s.logInfo(ctx, "checkout advanced", slog.String("session", input.SessionID), slog.String("step", view.StepName))
	return view, nil
}

func (s *Service) Retreat(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.Retreat",
		trace.WithAttributes(attribute.String("checkout.session_id", input.SessionID)))
	defer span.End()

	view, err := s.inner.Retreat(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to retreat checkout", slog.String("session", input.SessionID))
	}
	return view, nil
}

func (s *Service) GoTo(ctx context.Context, input checkouttypes.GoToStepInput) (*checkouttypes.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.GoTo",
		trace.WithAttributes(
			attribute.String("checkout.session_id", input.SessionID),
			attribute.Int("checkout.target_step", input.Step)))
	defer span.End()

	view, err := s.inner.GoTo(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to jump checkout step", slog.String("session", input.SessionID))
	}
	return view, nil
}

func (s *Service) CompletePayment(ctx context.Context, input checkouttypes.PaymentCallbackInput) (*checkouttypes.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.CompletePayment",
		trace.WithAttributes(
			attribute.String("checkout.session_id", input.SessionID),
			attribute.String("checkout.payment_provider", input.Provider)))
	defer span.End()

	s.logInfo(ctx, "payment callback received",
		slog.String("session", input.SessionID), slog.String("provider", input.Provider), slog.String("transaction", input.TransactionID))
	view, err := s.inner.CompletePayment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to complete payment", slog.String("session", input.SessionID))
	}
	s.metrics.recordPayment(ctx, string(view.PaymentStatus))
	return view, nil
}

func (s *Service) FailPayment(ctx context.Context, input checkouttypes.PaymentFailureInput) (*checkouttypes.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.FailPayment",
		trace.WithAttributes(
			attribute.String("checkout.session_id", input.SessionID),
			attribute.String("checkout.payment_provider", input.Provider)))
	defer span.End()

	view, err := s.inner.FailPayment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to record payment failure", slog.String("session", input.SessionID))
	}
	s.metrics.recordPayment(ctx, string(view.PaymentStatus))
	return view, nil
}

func (s *Service) CancelPayment(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.SessionView, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.CancelPayment",
		trace.WithAttributes(attribute.String("checkout.session_id", input.SessionID)))
	defer span.End()

	view, err := s.inner.CancelPayment(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel payment", slog.String("session", input.SessionID))
	}
	s.metrics.recordPayment(ctx, string(view.PaymentStatus))
	return view, nil
}

func (s *Service) PlaceOrder(ctx context.Context, input checkouttypes.SessionIdentifier) (*checkouttypes.OrderConfirmation, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.PlaceOrder",
		trace.WithAttributes(attribute.String("checkout.session_id", input.SessionID)))
	defer span.End()

	s.logInfo(ctx, "placing order", slog.String("session", input.SessionID))
	confirmation, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("session", input.SessionID))
	}
	s.metrics.recordPlaced(ctx, confirmation.Currency)
	s.logInfo(ctx, "order placed",
		slog.String("session", input.SessionID), slog.String("order", confirmation.OrderNumber))
	return confirmation, nil
}

func (s *Service) PurgeExpired(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.PurgeExpired")
	defer span.End()

	purged, err := s.inner.PurgeExpired(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to purge expired drafts")
	}
	span.SetAttributes(attribute.Int("checkout.purged_count", purged))
	if purged > 0 {
		s.logInfo(ctx, "expired drafts purged", slog.Int("count", purged))
	}
	return purged, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	checkoutsStarted metric.Int64Counter
	stepsCompleted   metric.Int64Counter
	paymentOutcomes  metric.Int64Counter
	ordersPlaced     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	started, _ := m.Int64Counter("checkout.service.sessions_started", metric.WithDescription("Number of checkout sessions started"))
	steps, _ := m.Int64Counter("checkout.service.steps_completed", metric.WithDescription("Number of checkout step advances"))
	payments, _ := m.Int64Counter("checkout.service.payment_outcomes", metric.WithDescription("Payment callback outcomes by status"))
	placed, _ := m.Int64Counter("checkout.service.orders_placed", metric.WithDescription("Number of orders placed"))
	return serviceMetrics{checkoutsStarted: started, stepsCompleted: steps, paymentOutcomes: payments, ordersPlaced: placed}
}

func (m serviceMetrics) recordStarted(ctx context.Context) {
	if m.checkoutsStarted != nil {
		m.checkoutsStarted.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordStep(ctx context.Context, step string) {
	if m.stepsCompleted != nil {
		m.stepsCompleted.Add(ctx, 1, metric.WithAttributes(attribute.String("checkout.step", step)))
	}
}

func (m serviceMetrics) recordPayment(ctx context.Context, status string) {
	if m.paymentOutcomes != nil {
		m.paymentOutcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("payment.status", status)))
	}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, currency string) {
	if m.ordersPlaced != nil {
		m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(attribute.String("order.currency", currency)))
	}
}

var _ checkoutports.Service = (*Service)(nil)
