package payment

import (
	"context"

	"github.com/google/uuid"
)

// PaymentRepository defines the persistence contract for payment aggregates.
// Payments are never deleted.
type PaymentRepository interface {
	// FindByID retrieves a payment by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByTxRef retrieves a payment by its gateway transaction reference.
	FindByTxRef(ctx context.Context, txRef string) (*Payment, error)

	// FindByBookingID retrieves the payment linked to a booking, if any.
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)

	// Save persists a new payment. The unique index on booking_id enforces
	// the one-payment-per-booking invariant at the database level.
	Save(ctx context.Context, p *Payment) error

	// Update persists changes to an existing payment with optimistic locking.
	Update(ctx context.Context, p *Payment) error
}
