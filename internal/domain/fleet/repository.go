package fleet

import (
	"context"

	"github.com/google/uuid"
)

// VehicleRepository defines the persistence contract for fleet vehicles.
type VehicleRepository interface {
	// FindByID retrieves a vehicle by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)

	// ListAvailable retrieves available vehicles with pagination.
	ListAvailable(ctx context.Context, page, limit int) ([]*Vehicle, int64, error)

	// ListAll retrieves all vehicles with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Vehicle, int64, error)

	// Save persists a new vehicle.
	Save(ctx context.Context, vehicle *Vehicle) error

	// Update persists changes to an existing vehicle with optimistic locking.
	Update(ctx context.Context, vehicle *Vehicle) error

	// Delete removes a vehicle permanently (admin).
	Delete(ctx context.Context, id uuid.UUID) error
}
