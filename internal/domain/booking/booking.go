package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/addisrides/service-rental/pkg/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain. The total price is
// snapshotted from the vehicle's daily rate at creation and never recomputed,
// even if the fleet price changes later.
type Booking struct {
	id             uuid.UUID
	bookingNumber  string
	userID         uuid.UUID
	vehicleID      uuid.UUID
	dateRange      DateRange
	totalDays      int
	totalPriceCents int64
	currency       string
	pickupLocation string
	status         BookingStatus
	contact        *RenterContact

	confirmedAt *time.Time
	cancelledAt *time.Time
	cancelNote  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "BK-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "BK-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=pending.
func NewBooking(
	userID, vehicleID uuid.UUID,
	dateRange DateRange,
	pickupLocation string,
	totalDays int,
	totalPriceCents int64,
	currency string,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if vehicleID == uuid.Nil {
		return nil, domain.NewValidationError("vehicle ID is required")
	}
	if pickupLocation == "" {
		return nil, domain.NewValidationError("pickup location is required")
	}
	if totalDays < 1 {
		return nil, domain.NewValidationError("rental must be at least one day")
	}
	if totalPriceCents <= 0 {
		return nil, domain.NewValidationError("total price must be positive")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:              uuid.New(),
		bookingNumber:   bookingNumber,
		userID:          userID,
		vehicleID:       vehicleID,
		dateRange:       dateRange,
		totalDays:       totalDays,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		pickupLocation:  pickupLocation,
		status:          StatusPending,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	bookingNumber string,
	userID, vehicleID uuid.UUID,
	dateRange DateRange,
	totalDays int,
	totalPriceCents int64,
	currency string,
	pickupLocation string,
	status BookingStatus,
	contact *RenterContact,
	confirmedAt, cancelledAt *time.Time,
	cancelNote string,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:              id,
		bookingNumber:   bookingNumber,
		userID:          userID,
		vehicleID:       vehicleID,
		dateRange:       dateRange,
		totalDays:       totalDays,
		totalPriceCents: totalPriceCents,
		currency:        currency,
		pickupLocation:  pickupLocation,
		status:          status,
		contact:         contact,
		confirmedAt:     confirmedAt,
		cancelledAt:     cancelledAt,
		cancelNote:      cancelNote,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// UserID returns the renting user's ID.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// VehicleID returns the booked vehicle's ID.
func (b *Booking) VehicleID() uuid.UUID { return b.vehicleID }

// DateRange returns the inclusive rental period.
func (b *Booking) DateRange() DateRange { return b.dateRange }

// TotalDays returns the billable day count.
func (b *Booking) TotalDays() int { return b.totalDays }

// TotalPriceCents returns the price snapshotted at creation time.
func (b *Booking) TotalPriceCents() int64 { return b.totalPriceCents }

// Currency returns the currency code.
func (b *Booking) Currency() string { return b.currency }

// PickupLocation returns where the vehicle is collected.
func (b *Booking) PickupLocation() string { return b.pickupLocation }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Contact returns the renter contact details, or nil before confirmation.
func (b *Booking) Contact() *RenterContact { return b.contact }

// ConfirmedAt returns the time the booking was confirmed.
func (b *Booking) ConfirmedAt() *time.Time { return b.confirmedAt }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Confirm transitions the booking from pending to confirmed with validated
// renter contact details.
func (b *Booking) Confirm(contact RenterContact) error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	if contact.IsZero() {
		return domain.NewValidationError("renter contact details are required")
	}
	normalized, err := contact.Validate()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	b.status = StatusConfirmed
	b.contact = &normalized
	b.confirmedAt = &now
	b.updatedAt = now
	return nil
}

// ConfirmFromPayment transitions the booking to confirmed when its payment
// completes. Contact details are not required on this path; they arrive with
// the payment initialization or an earlier explicit confirm.
func (b *Booking) ConfirmFromPayment() error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	now := time.Now().UTC()
	b.status = StatusConfirmed
	b.confirmedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled if it is not in a terminal state.
func (b *Booking) Cancel(reason string) error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
