package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByUserID retrieves bookings belonging to a specific user with pagination.
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindLatestByVehicle retrieves the user's most recent booking for a vehicle.
	FindLatestByVehicle(ctx context.Context, userID, vehicleID uuid.UUID) (*Booking, error)

	// FindConfirmedOverlapping retrieves confirmed bookings for the vehicle
	// whose inclusive date range overlaps the given one.
	FindConfirmedOverlapping(ctx context.Context, vehicleID uuid.UUID, rng DateRange) ([]*Booking, error)

	// HasConfirmedCovering reports whether a confirmed booking for the vehicle
	// covers the given day.
	HasConfirmedCovering(ctx context.Context, vehicleID uuid.UUID, day time.Time) (bool, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// Reserve persists a new booking inside one transaction that row-locks
	// the vehicle and re-checks for conflicting confirmed bookings. The first
	// successful writer wins; losers get a conflict error.
	Reserve(ctx context.Context, bk *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, bk *Booking) error

	// Delete removes a booking permanently (admin), independent of status.
	Delete(ctx context.Context, id uuid.UUID) error
}
