package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	paymentDomain "github.com/addisrides/service-rental/internal/domain/payment"
	"github.com/addisrides/service-rental/pkg/domain"
)

// PaymentModel is the GORM model for the payments table. The unique index on
// booking_id enforces one payment per booking; tx_ref is globally unique.
type PaymentModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID   uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null"`
	UserID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	AmountCents int64      `gorm:"not null"`
	Currency    string     `gorm:"not null;size:3;default:'ETB'"`
	Method      string     `gorm:"not null;size:20"`
	Status      string     `gorm:"not null;size:20;index"`
	TxRef       string     `gorm:"uniqueIndex;not null;size:64"`
	CompletedAt *time.Time `gorm:""`
	FailedAt    *time.Time `gorm:""`
	Version     int64      `gorm:"not null;default:1"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentModel) TableName() string { return "payments" }

// GormPaymentRepository is the GORM-based implementation of PaymentRepository.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID retrieves a payment by its unique identifier.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", id.String())
		}
		return nil, fmt.Errorf("failed to find payment by ID: %w", err)
	}
	return toPaymentDomain(&model)
}

// FindByTxRef retrieves a payment by its gateway transaction reference.
func (r *GormPaymentRepository) FindByTxRef(ctx context.Context, txRef string) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("tx_ref = ?", txRef).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", txRef)
		}
		return nil, fmt.Errorf("failed to find payment by tx_ref: %w", err)
	}
	return toPaymentDomain(&model)
}

// FindByBookingID retrieves the payment linked to a booking, if any.
func (r *GormPaymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find payment by booking: %w", err)
	}
	return toPaymentDomain(&model)
}

// Save persists a new payment.
func (r *GormPaymentRepository) Save(ctx context.Context, p *paymentDomain.Payment) error {
	model := toPaymentModel(p)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isConstraintConflict(err) {
			return domain.NewConflictError("a payment already exists for this booking")
		}
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

// Update persists changes to an existing payment with optimistic locking.
// The amount and booking link are intentionally not updatable.
func (r *GormPaymentRepository) Update(ctx context.Context, p *paymentDomain.Payment) error {
	model := toPaymentModel(p)
	expectedVersion := p.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&PaymentModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"tx_ref":       model.TxRef,
			"completed_at": model.CompletedAt,
			"failed_at":    model.FailedAt,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("payment was modified by another transaction")
	}
	return nil
}

// --- Conversion helpers ---

func toPaymentModel(p *paymentDomain.Payment) *PaymentModel {
	return &PaymentModel{
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
		Version:     p.Version(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

func toPaymentDomain(m *PaymentModel) (*paymentDomain.Payment, error) {
	status, err := paymentDomain.ParsePaymentStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return paymentDomain.Reconstruct(
		m.ID,
		m.BookingID,
		m.UserID,
		m.AmountCents,
		m.Currency,
		paymentDomain.PaymentMethod(m.Method),
		status,
		m.TxRef,
		m.CompletedAt,
		m.FailedAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}
