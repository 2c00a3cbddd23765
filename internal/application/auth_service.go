package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/addisrides/service-rental/internal/repository"
	"github.com/addisrides/service-rental/pkg/auth"
	"github.com/addisrides/service-rental/pkg/domain"
	"github.com/addisrides/service-rental/pkg/validator"
)

// SignupRequest holds the data needed to register an account.
type SignupRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResult carries the issued token pair and the account summary.
type AuthResult struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	User         UserDTO `json:"user"`
}

// UserDTO is the response representation of an account.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStore is the persistence surface the auth side needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*repository.UserModel, error)
	Save(ctx context.Context, user *repository.UserModel) error
}

// AuthService handles account registration and login.
type AuthService struct {
	users  UserStore
	jwt    *auth.JWTManager
	logger *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, jwt *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, logger: logger}
}

// Signup registers a new account and issues a token pair.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	if err := validator.ValidateName(req.FullName); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validator.ValidateEmail(email); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	phone, err := validator.ValidatePhone(req.Phone)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &repository.UserModel{
		ID:           uuid.New(),
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Role:         auth.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("account created", zap.String("user_id", user.ID.String()))

	return s.issueTokens(user)
}

// Login verifies credentials and issues a token pair. The same error is
// returned for an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if _, ok := err.(*domain.NotFoundError); ok {
			return nil, domain.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.NewUnauthorizedError("invalid email or password")
	}

	return s.issueTokens(user)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid refresh token")
	}

	access, err := s.jwt.GenerateAccessToken(claims.UserID, claims.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(claims.UserID, claims.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) issueTokens(user *repository.UserModel) (*AuthResult, error) {
	access, err := s.jwt.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User: UserDTO{
			ID:        user.ID,
			FullName:  user.FullName,
			Email:     user.Email,
			Phone:     user.Phone,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		},
	}, nil
}
