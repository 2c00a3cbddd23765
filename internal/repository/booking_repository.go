package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/addisrides/service-rental/internal/domain/booking"
	"github.com/addisrides/service-rental/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingNumber   string          `gorm:"uniqueIndex;not null;size:20"`
	UserID          uuid.UUID       `gorm:"type:uuid;index;not null"`
	VehicleID       uuid.UUID       `gorm:"type:uuid;index;not null"`
	PickupDate      time.Time       `gorm:"type:timestamptz;not null"`
	ReturnDate      time.Time       `gorm:"type:timestamptz;not null"`
	TotalDays       int             `gorm:"not null"`
	TotalPriceCents int64           `gorm:"not null"`
	Currency        string          `gorm:"not null;size:3;default:'ETB'"`
	PickupLocation  string          `gorm:"size:200;not null"`
	Status          string          `gorm:"not null;size:20;index"`
	Contact         json.RawMessage `gorm:"type:jsonb"`
	ConfirmedAt     *time.Time      `gorm:""`
	CancelledAt     *time.Time      `gorm:""`
	CancelNote      string          `gorm:"size:500"`
	Version         int64           `gorm:"not null;default:1"`
	CreatedAt       time.Time       `gorm:"not null"`
	UpdatedAt       time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string { return "bookings" }

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toBookingDomain(&model)
}

// FindByUserID retrieves bookings for a specific user with pagination.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find user bookings: %w", err)
	}

	return toBookingDomainSlice(models, total)
}

// FindLatestByVehicle retrieves the user's most recent booking for a vehicle.
func (r *GormBookingRepository) FindLatestByVehicle(ctx context.Context, userID, vehicleID uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND vehicle_id = ?", userID, vehicleID).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", vehicleID.String())
		}
		return nil, fmt.Errorf("failed to find latest booking: %w", err)
	}
	return toBookingDomain(&model)
}

// FindConfirmedOverlapping retrieves confirmed bookings for the vehicle whose
// inclusive [pickup, return] range overlaps the given one:
// pickup <= rng.Return AND return >= rng.Pickup.
func (r *GormBookingRepository) FindConfirmedOverlapping(ctx context.Context, vehicleID uuid.UUID, rng bookingDomain.DateRange) ([]*bookingDomain.Booking, error) {
	models, err := r.findConfirmedOverlapping(ctx, r.db, vehicleID, rng)
	if err != nil {
		return nil, err
	}
	bookings, _, err := toBookingDomainSlice(models, int64(len(models)))
	return bookings, err
}

func (r *GormBookingRepository) findConfirmedOverlapping(ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID, rng bookingDomain.DateRange) ([]BookingModel, error) {
	var models []BookingModel
	err := tx.WithContext(ctx).
		Where("vehicle_id = ? AND status = ? AND pickup_date <= ? AND return_date >= ?",
			vehicleID, bookingDomain.StatusConfirmed, rng.Return, rng.Pickup).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping bookings: %w", err)
	}
	return models, nil
}

// HasConfirmedCovering reports whether a confirmed booking for the vehicle
// covers the given day.
func (r *GormBookingRepository) HasConfirmedCovering(ctx context.Context, vehicleID uuid.UUID, day time.Time) (bool, error) {
	return r.hasConfirmedCovering(ctx, r.db, vehicleID, day)
}

func (r *GormBookingRepository) hasConfirmedCovering(ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID, day time.Time) (bool, error) {
	dayStart := time.Date(day.UTC().Year(), day.UTC().Month(), day.UTC().Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var count int64
	err := tx.WithContext(ctx).Model(&BookingModel{}).
		Where("vehicle_id = ? AND status = ? AND pickup_date < ? AND return_date >= ?",
			vehicleID, bookingDomain.StatusConfirmed, dayEnd, dayStart).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check active booking: %w", err)
	}
	return count > 0, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toBookingDomainSlice(models, total)
}

// Reserve persists a new booking inside one transaction. The vehicle row is
// locked for the duration of the check-then-insert so two concurrent requests
// for the same vehicle serialize; the exclusion constraint on confirmed
// bookings backstops the lock.
func (r *GormBookingRepository) Reserve(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vehicle VehicleModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bk.VehicleID()).
			First(&vehicle).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Vehicle", bk.VehicleID().String())
			}
			return fmt.Errorf("failed to lock vehicle: %w", err)
		}
		if !vehicle.Available {
			return domain.NewConflictError("vehicle is not available for booking")
		}

		covering, err := r.hasConfirmedCovering(ctx, tx, bk.VehicleID(), time.Now().UTC())
		if err != nil {
			return err
		}
		if covering {
			return domain.NewConflictError("vehicle is currently booked")
		}

		overlapping, err := r.findConfirmedOverlapping(ctx, tx, bk.VehicleID(), bk.DateRange())
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return domain.NewConflictError("vehicle is already booked for the requested dates")
		}

		if err := tx.Create(model).Error; err != nil {
			if isConstraintConflict(err) {
				return domain.NewConflictError("vehicle is already booked for the requested dates")
			}
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return nil
	})
	return err
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"contact":      model.Contact,
			"confirmed_at": model.ConfirmedAt,
			"cancelled_at": model.CancelledAt,
			"cancel_note":  model.CancelNote,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		if isConstraintConflict(result.Error) {
			return domain.NewConflictError("vehicle is already booked for the requested dates")
		}
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// Delete removes a booking permanently (admin).
func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BookingModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Booking", id.String())
	}
	return nil
}

// --- Conversion helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	var contactJSON json.RawMessage
	if bk.Contact() != nil {
		data, err := json.Marshal(bk.Contact())
		if err != nil {
			return nil, fmt.Errorf("failed to marshal renter contact: %w", err)
		}
		contactJSON = data
	}

	return &BookingModel{
		ID:              bk.ID(),
		BookingNumber:   bk.BookingNumber(),
		UserID:          bk.UserID(),
		VehicleID:       bk.VehicleID(),
		PickupDate:      bk.DateRange().Pickup,
		ReturnDate:      bk.DateRange().Return,
		TotalDays:       bk.TotalDays(),
		TotalPriceCents: bk.TotalPriceCents(),
		Currency:        bk.Currency(),
		PickupLocation:  bk.PickupLocation(),
		Status:          string(bk.Status()),
		Contact:         contactJSON,
		ConfirmedAt:     bk.ConfirmedAt(),
		CancelledAt:     bk.CancelledAt(),
		CancelNote:      bk.CancelNote(),
		Version:         bk.Version(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}, nil
}

func toBookingDomain(m *BookingModel) (*bookingDomain.Booking, error) {
	var contact *bookingDomain.RenterContact
	if len(m.Contact) > 0 {
		var c bookingDomain.RenterContact
		if err := json.Unmarshal(m.Contact, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal renter contact: %w", err)
		}
		contact = &c
	}

	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.BookingNumber,
		m.UserID,
		m.VehicleID,
		bookingDomain.DateRange{Pickup: m.PickupDate, Return: m.ReturnDate},
		m.TotalDays,
		m.TotalPriceCents,
		m.Currency,
		m.PickupLocation,
		status,
		contact,
		m.ConfirmedAt,
		m.CancelledAt,
		m.CancelNote,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toBookingDomainSlice(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toBookingDomain(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
