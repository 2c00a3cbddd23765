package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	fleetDomain "github.com/addisrides/service-rental/internal/domain/fleet"
	"github.com/addisrides/service-rental/pkg/domain"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Brand            string    `gorm:"type:varchar(60);not null"`
	Model            string    `gorm:"type:varchar(60);not null"`
	Year             int       `gorm:"not null"`
	PlateNumber      string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	VehicleType      string    `gorm:"type:varchar(20);not null;index"`
	Seats            int       `gorm:"not null"`
	Transmission     string    `gorm:"type:varchar(20);not null"`
	FuelType         string    `gorm:"type:varchar(20);not null"`
	PricePerDayCents int64     `gorm:"not null"`
	Available        bool      `gorm:"not null;default:true;index"`
	ImageURL         string    `gorm:"type:text"`
	Version          int64     `gorm:"not null;default:1"`
	CreatedAt        time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt        time.Time `gorm:"type:timestamptz;not null"`
}

func (VehicleModel) TableName() string { return "vehicles" }

// GormVehicleRepository implements VehicleRepository using GORM.
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewGormVehicleRepository creates a new GormVehicleRepository.
func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// FindByID retrieves a vehicle by its unique identifier.
func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (*fleetDomain.Vehicle, error) {
	var model VehicleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Vehicle", id.String())
		}
		return nil, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return toVehicleDomain(&model), nil
}

// ListAvailable retrieves available vehicles with pagination.
func (r *GormVehicleRepository) ListAvailable(ctx context.Context, page, limit int) ([]*fleetDomain.Vehicle, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("available = ?", true), page, limit)
}

// ListAll retrieves all vehicles with pagination (admin).
func (r *GormVehicleRepository) ListAll(ctx context.Context, page, limit int) ([]*fleetDomain.Vehicle, int64, error) {
	return r.list(ctx, r.db.WithContext(ctx), page, limit)
}

func (r *GormVehicleRepository) list(ctx context.Context, q *gorm.DB, page, limit int) ([]*fleetDomain.Vehicle, int64, error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Model(&VehicleModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	var models []VehicleModel
	offset := (page - 1) * limit
	if err := q.Session(&gorm.Session{}).Model(&VehicleModel{}).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vehicles := make([]*fleetDomain.Vehicle, len(models))
	for i, m := range models {
		vehicles[i] = toVehicleDomain(&m)
	}
	return vehicles, total, nil
}

// Save persists a new vehicle.
func (r *GormVehicleRepository) Save(ctx context.Context, vehicle *fleetDomain.Vehicle) error {
	model := toVehicleModel(vehicle)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isConstraintConflict(err) {
			return domain.NewConflictError("a vehicle with this plate number already exists")
		}
		return fmt.Errorf("failed to save vehicle: %w", err)
	}
	return nil
}

// Update persists changes to an existing vehicle with optimistic locking.
func (r *GormVehicleRepository) Update(ctx context.Context, vehicle *fleetDomain.Vehicle) error {
	model := toVehicleModel(vehicle)
	expectedVersion := vehicle.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&VehicleModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"brand":               model.Brand,
			"model":               model.Model,
			"year":                model.Year,
			"vehicle_type":        model.VehicleType,
			"seats":               model.Seats,
			"transmission":        model.Transmission,
			"fuel_type":           model.FuelType,
			"price_per_day_cents": model.PricePerDayCents,
			"available":           model.Available,
			"image_url":           model.ImageURL,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("vehicle was modified by another transaction")
	}
	return nil
}

// Delete removes a vehicle permanently.
func (r *GormVehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&VehicleModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete vehicle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Vehicle", id.String())
	}
	return nil
}

// --- Conversion helpers ---

func toVehicleModel(v *fleetDomain.Vehicle) *VehicleModel {
	return &VehicleModel{
		ID:               v.ID(),
		Brand:            v.Brand(),
		Model:            v.Model(),
		Year:             v.Year(),
		PlateNumber:      v.PlateNumber(),
		VehicleType:      string(v.VehicleType()),
		Seats:            v.Seats(),
		Transmission:     string(v.Transmission()),
		FuelType:         string(v.FuelType()),
		PricePerDayCents: v.PricePerDayCents(),
		Available:        v.Available(),
		ImageURL:         v.ImageURL(),
		Version:          v.Version(),
		CreatedAt:        v.CreatedAt(),
		UpdatedAt:        v.UpdatedAt(),
	}
}

func toVehicleDomain(m *VehicleModel) *fleetDomain.Vehicle {
	return fleetDomain.Reconstruct(
		m.ID,
		m.Brand,
		m.Model,
		m.Year,
		m.PlateNumber,
		fleetDomain.VehicleType(m.VehicleType),
		m.Seats,
		fleetDomain.Transmission(m.Transmission),
		fleetDomain.FuelType(m.FuelType),
		m.PricePerDayCents,
		m.Available,
		m.ImageURL,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
