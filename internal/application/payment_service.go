package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/addisrides/service-rental/internal/domain/booking"
	paymentDomain "github.com/addisrides/service-rental/internal/domain/payment"
	"github.com/addisrides/service-rental/internal/events"
	"github.com/addisrides/service-rental/internal/gateway"
	"github.com/addisrides/service-rental/pkg/domain"
	"github.com/addisrides/service-rental/pkg/kafka"
)

// InitializePaymentRequest carries the payer details Chapa requires to open
// a checkout session.
type InitializePaymentRequest struct {
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

// InitializePaymentResult is returned so the client can redirect the payer.
type InitializePaymentResult struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	TxRef       string    `json:"tx_ref"`
	CheckoutURL string    `json:"checkout_url"`
}

// PaymentDTO is the response representation of a payment.
type PaymentDTO struct {
	ID          uuid.UUID  `json:"id"`
	BookingID   uuid.UUID  `json:"booking_id"`
	UserID      uuid.UUID  `json:"user_id"`
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	Method      string     `json:"method"`
	Status      string     `json:"status"`
	TxRef       string     `json:"tx_ref"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PaymentService orchestrates payment initialization and reconciliation
// against the external gateway.
type PaymentService struct {
	payments paymentDomain.PaymentRepository
	bookings bookingDomain.BookingRepository
	gateway  gateway.PaymentGateway
	producer EventPublisher
	logger   *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	payments paymentDomain.PaymentRepository,
	bookings bookingDomain.BookingRepository,
	gw gateway.PaymentGateway,
	producer EventPublisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		bookings: bookings,
		gateway:  gw,
		producer: producer,
		logger:   logger,
	}
}

// InitializePayment opens a checkout session for a pending booking. The
// payment row is persisted before the gateway is called, so a crash between
// the two steps leaves a pending record that verification can reconcile
// rather than an orphaned charge. A booking keeps a single payment row: a
// second initialization is rejected while one is pending or completed, and a
// failed one is re-armed in place with a fresh transaction reference.
func (s *PaymentService) InitializePayment(ctx context.Context, userID, bookingID uuid.UUID, req InitializePaymentRequest) (*InitializePaymentResult, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.UserID() != userID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	if bk.Status().IsTerminal() {
		return nil, domain.NewConflictError(fmt.Sprintf("booking is %s and cannot be paid for", bk.Status()))
	}

	txRef := newTxRef()

	pay, err := s.payments.FindByBookingID(ctx, bookingID)
	switch {
	case err == nil:
		switch pay.Status() {
		case paymentDomain.StatusCompleted:
			return nil, domain.NewConflictError("booking is already paid")
		case paymentDomain.StatusPending:
			return nil, domain.NewConflictError("a payment for this booking is already in progress")
		case paymentDomain.StatusFailed:
			if err := pay.Rearm(txRef); err != nil {
				return nil, err
			}
			pay.IncrementVersion()
			if err := s.payments.Update(ctx, pay); err != nil {
				return nil, err
			}
		default:
			return nil, domain.NewConflictError(fmt.Sprintf("payment is %s and cannot be re-initialized", pay.Status()))
		}
	default:
		if _, ok := err.(*domain.NotFoundError); !ok {
			return nil, err
		}
		pay, err = paymentDomain.NewPayment(
			bookingID,
			userID,
			bk.TotalPriceCents(),
			bk.Currency(),
			paymentDomain.MethodChappa,
			txRef,
		)
		if err != nil {
			return nil, err
		}
		if err := s.payments.Save(ctx, pay); err != nil {
			return nil, err
		}
	}

	result, err := s.gateway.Initialize(ctx, gateway.InitializeRequest{
		AmountCents: pay.AmountCents(),
		Currency:    pay.Currency(),
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		TxRef:       pay.TxRef(),
	})
	if err != nil {
		if markErr := pay.MarkFailed(); markErr == nil {
			pay.IncrementVersion()
			if updErr := s.payments.Update(ctx, pay); updErr != nil {
				s.logger.Error("failed to mark payment failed after gateway error",
					zap.String("tx_ref", pay.TxRef()),
					zap.Error(updErr),
				)
			}
		}
		return nil, err
	}

	s.publishPaymentEvent(ctx, events.PaymentInitialized, pay)

	return &InitializePaymentResult{
		PaymentID:   pay.ID(),
		TxRef:       pay.TxRef(),
		CheckoutURL: result.CheckoutURL,
	}, nil
}

// VerifyPayment asks the gateway for the transaction's status and settles
// the payment record accordingly. It is idempotent: verifying an already
// settled payment returns it unchanged. The gateway is the source of truth;
// callback payloads are never trusted directly.
func (s *PaymentService) VerifyPayment(ctx context.Context, txRef string) (*PaymentDTO, error) {
	pay, err := s.payments.FindByTxRef(ctx, txRef)
	if err != nil {
		if _, ok := err.(*domain.NotFoundError); ok {
			s.logger.Warn("verification requested for unknown transaction reference",
				zap.String("tx_ref", txRef),
			)
		}
		return nil, err
	}

	switch pay.Status() {
	case paymentDomain.StatusCompleted, paymentDomain.StatusFailed, paymentDomain.StatusRefunded:
		// Settled either way; repeat verifications return the recorded
		// outcome without asking the gateway again.
		dto := toPaymentDTO(pay)
		return &dto, nil
	}

	verification, err := s.gateway.Verify(ctx, txRef)
	if err != nil {
		return nil, err
	}

	switch verification.Status {
	case gateway.VerifySuccess:
		if verification.AmountCents != pay.AmountCents() {
			s.logger.Error("verified amount does not match expected amount",
				zap.String("tx_ref", txRef),
				zap.Int64("expected_cents", pay.AmountCents()),
				zap.Int64("verified_cents", verification.AmountCents),
			)
			return nil, domain.NewConflictError("verified amount does not match the booking total")
		}
		if err := pay.MarkCompleted(); err != nil {
			return nil, err
		}
		pay.IncrementVersion()
		if err := s.payments.Update(ctx, pay); err != nil {
			return nil, err
		}
		s.publishPaymentEvent(ctx, events.PaymentCompleted, pay)

	case gateway.VerifyFailed:
		if err := pay.MarkFailed(); err != nil {
			return nil, err
		}
		pay.IncrementVersion()
		if err := s.payments.Update(ctx, pay); err != nil {
			return nil, err
		}
		s.publishPaymentEvent(ctx, events.PaymentFailed, pay)

	case gateway.VerifyPending:
		// Nothing to settle yet; the client can poll again.
	}

	dto := toPaymentDTO(pay)
	return &dto, nil
}

// HandleCallback processes the gateway's server-to-server notification. The
// payload is treated as a hint only; the status is re-verified against the
// gateway before anything is settled.
func (s *PaymentService) HandleCallback(ctx context.Context, txRef string) error {
	txRef = strings.TrimSpace(txRef)
	if txRef == "" {
		return domain.NewValidationError("tx_ref is required")
	}
	_, err := s.VerifyPayment(ctx, txRef)
	return err
}

// GetPaymentForBooking retrieves the payment attached to a booking.
func (s *PaymentService) GetPaymentForBooking(ctx context.Context, userID, bookingID uuid.UUID) (*PaymentDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.UserID() != userID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	pay, err := s.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	dto := toPaymentDTO(pay)
	return &dto, nil
}

func newTxRef() string {
	return fmt.Sprintf("rental-%s", uuid.NewString())
}

func toPaymentDTO(p *paymentDomain.Payment) PaymentDTO {
	return PaymentDTO{
		ID:          p.ID(),
		BookingID:   p.BookingID(),
		UserID:      p.UserID(),
		AmountCents: p.AmountCents(),
		Currency:    p.Currency(),
		Method:      string(p.Method()),
		Status:      string(p.Status()),
		TxRef:       p.TxRef(),
		CompletedAt: p.CompletedAt(),
		FailedAt:    p.FailedAt(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

func (s *PaymentService) publishPaymentEvent(ctx context.Context, eventType string, pay *paymentDomain.Payment) {
	var data interface{}
	switch eventType {
	case events.PaymentInitialized:
		data = events.PaymentInitializedEvent{
			PaymentID:  pay.ID(),
			BookingID:  pay.BookingID(),
			UserID:     pay.UserID(),
			TxRef:      pay.TxRef(),
			Amount:     pay.AmountCents(),
			Currency:   pay.Currency(),
			OccurredAt: time.Now().UTC(),
		}
	case events.PaymentCompleted:
		data = events.PaymentCompletedEvent{
			PaymentID:  pay.ID(),
			BookingID:  pay.BookingID(),
			UserID:     pay.UserID(),
			TxRef:      pay.TxRef(),
			Amount:     pay.AmountCents(),
			Currency:   pay.Currency(),
			OccurredAt: time.Now().UTC(),
		}
	case events.PaymentFailed:
		data = events.PaymentFailedEvent{
			PaymentID:  pay.ID(),
			BookingID:  pay.BookingID(),
			TxRef:      pay.TxRef(),
			OccurredAt: time.Now().UTC(),
		}
	default:
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(serviceName, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}
	if err := s.producer.PublishEvent(ctx, events.TopicPaymentEvents, cloudEvent); err != nil {
		s.logger.Error("failed to publish payment event",
			zap.String("event_type", eventType),
			zap.String("tx_ref", pay.TxRef()),
			zap.Error(err),
		)
	}
}
