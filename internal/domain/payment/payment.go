package payment

import (
	"time"

	"github.com/google/uuid"

	"github.com/addisrides/service-rental/pkg/domain"
)

// Payment is the aggregate root for one payment transaction. Each payment is
// linked 1:1 to a booking; the amount and booking link are fixed at creation
// and only the status moves afterwards, driven by gateway verification.
type Payment struct {
	id          uuid.UUID
	bookingID   uuid.UUID
	userID      uuid.UUID
	amountCents int64
	currency    string
	method      PaymentMethod
	status      PaymentStatus
	txRef       string

	completedAt *time.Time
	failedAt    *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewPayment creates a pending Payment for the booking. The transaction
// reference must be globally unique; callers use a UUID.
func NewPayment(
	bookingID, userID uuid.UUID,
	amountCents int64,
	currency string,
	method PaymentMethod,
	txRef string,
) (*Payment, error) {
	if bookingID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID is required")
	}
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if amountCents <= 0 {
		return nil, domain.NewValidationError("amount must be positive")
	}
	if !method.IsValid() {
		return nil, domain.NewValidationError("unsupported payment method: " + string(method))
	}
	if txRef == "" {
		return nil, domain.NewValidationError("transaction reference is required")
	}

	now := time.Now().UTC()
	return &Payment{
		id:          uuid.New(),
		bookingID:   bookingID,
		userID:      userID,
		amountCents: amountCents,
		currency:    currency,
		method:      method,
		status:      StatusPending,
		txRef:       txRef,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a Payment from persistence data (no validation).
func Reconstruct(
	id, bookingID, userID uuid.UUID,
	amountCents int64,
	currency string,
	method PaymentMethod,
	status PaymentStatus,
	txRef string,
	completedAt, failedAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		id:          id,
		bookingID:   bookingID,
		userID:      userID,
		amountCents: amountCents,
		currency:    currency,
		method:      method,
		status:      status,
		txRef:       txRef,
		completedAt: completedAt,
		failedAt:    failedAt,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (p *Payment) ID() uuid.UUID          { return p.id }
func (p *Payment) BookingID() uuid.UUID   { return p.bookingID }
func (p *Payment) UserID() uuid.UUID      { return p.userID }
func (p *Payment) AmountCents() int64     { return p.amountCents }
func (p *Payment) Currency() string       { return p.currency }
func (p *Payment) Method() PaymentMethod  { return p.method }
func (p *Payment) Status() PaymentStatus  { return p.status }
func (p *Payment) TxRef() string          { return p.txRef }
func (p *Payment) CompletedAt() *time.Time { return p.completedAt }
func (p *Payment) FailedAt() *time.Time   { return p.failedAt }
func (p *Payment) Version() int64         { return p.version }
func (p *Payment) CreatedAt() time.Time   { return p.createdAt }
func (p *Payment) UpdatedAt() time.Time   { return p.updatedAt }

// --- Behavior ---

// MarkCompleted records a successful gateway verification.
func (p *Payment) MarkCompleted() error {
	if !p.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(p.status), string(StatusCompleted))
	}
	now := time.Now().UTC()
	p.status = StatusCompleted
	p.completedAt = &now
	p.updatedAt = now
	return nil
}

// MarkFailed records a failed gateway verification or an unreachable gateway.
func (p *Payment) MarkFailed() error {
	if !p.status.CanTransitionTo(StatusFailed) {
		return domain.NewInvalidStateError(string(p.status), string(StatusFailed))
	}
	now := time.Now().UTC()
	p.status = StatusFailed
	p.failedAt = &now
	p.updatedAt = now
	return nil
}

// MarkRefunded records a refund of a completed payment.
func (p *Payment) MarkRefunded() error {
	if !p.status.CanTransitionTo(StatusRefunded) {
		return domain.NewInvalidStateError(string(p.status), string(StatusRefunded))
	}
	p.status = StatusRefunded
	p.updatedAt = time.Now().UTC()
	return nil
}

// Rearm resets a failed payment back to pending with a fresh transaction
// reference so the renter can retry. The booking keeps its single payment row.
func (p *Payment) Rearm(txRef string) error {
	if p.status != StatusFailed {
		return domain.NewInvalidStateError(string(p.status), string(StatusPending))
	}
	if txRef == "" {
		return domain.NewValidationError("transaction reference is required")
	}
	p.status = StatusPending
	p.txRef = txRef
	p.failedAt = nil
	p.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (p *Payment) IncrementVersion() {
	p.version++
	p.updatedAt = time.Now().UTC()
}
