package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/addisrides/service-rental/pkg/domain"
)

// UserModel is the GORM model for the users table. Users are simple records
// rather than a rich aggregate; nothing in the booking core mutates them
// beyond account creation.
type UserModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	FullName     string    `gorm:"type:varchar(120);not null"`
	Email        string    `gorm:"type:varchar(254);uniqueIndex;not null"`
	Phone        string    `gorm:"type:varchar(20)"`
	PasswordHash string    `gorm:"type:varchar(100);not null"`
	Role         string    `gorm:"type:varchar(20);not null;default:'user'"`
	PhotoURL     string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt    time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string { return "users" }

// GormUserRepository provides user persistence.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// FindByID retrieves a user by ID.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*UserModel, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", id.String())
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return &model, nil
}

// FindByEmail retrieves a user by email address.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*UserModel, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", email)
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &model, nil
}

// Exists reports whether a user with the given ID exists.
func (r *GormUserRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// DisplayInfo resolves a user's display name and email for joined views.
func (r *GormUserRepository) DisplayInfo(ctx context.Context, id uuid.UUID) (string, string, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return "", "", err
	}
	return user.FullName, user.Email, nil
}

// Save persists a new user.
func (r *GormUserRepository) Save(ctx context.Context, user *UserModel) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isConstraintConflict(err) {
			return domain.NewConflictError("an account with this email already exists")
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}
