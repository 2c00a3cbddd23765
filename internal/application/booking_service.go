package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	bookingDomain "github.com/addisrides/service-rental/internal/domain/booking"
	fleetDomain "github.com/addisrides/service-rental/internal/domain/fleet"
	paymentDomain "github.com/addisrides/service-rental/internal/domain/payment"
	"github.com/addisrides/service-rental/internal/events"
	"github.com/addisrides/service-rental/pkg/domain"
	"github.com/addisrides/service-rental/pkg/kafka"
)

const serviceName = "service-rental"

// EventPublisher is the producer surface the services publish through.
// *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// UserDirectory is the subset of user persistence the booking side needs.
type UserDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	PickupDate     time.Time `json:"pickup_date" binding:"required"`
	ReturnDate     time.Time `json:"return_date" binding:"required"`
	PickupLocation string    `json:"pickup_location" binding:"required"`
}

// ConfirmBookingRequest carries the renter contact details for confirmation.
type ConfirmBookingRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID                    `json:"id"`
	BookingNumber   string                       `json:"booking_number"`
	UserID          uuid.UUID                    `json:"user_id"`
	VehicleID       uuid.UUID                    `json:"vehicle_id"`
	PickupDate      time.Time                    `json:"pickup_date"`
	ReturnDate      time.Time                    `json:"return_date"`
	TotalDays       int                          `json:"total_days"`
	TotalPriceCents int64                        `json:"total_price_cents"`
	Currency        string                       `json:"currency"`
	PickupLocation  string                       `json:"pickup_location"`
	Status          string                       `json:"status"`
	Contact         *bookingDomain.RenterContact `json:"contact,omitempty"`
	ConfirmedAt     *time.Time                   `json:"confirmed_at,omitempty"`
	CancelledAt     *time.Time                   `json:"cancelled_at,omitempty"`
	CancelNote      string                       `json:"cancel_note,omitempty"`
	CreatedAt       time.Time                    `json:"created_at"`
	UpdatedAt       time.Time                    `json:"updated_at"`
}

// BookingHistoryDTO is a booking with its payment joined, for the user's
// booking history views.
type BookingHistoryDTO struct {
	BookingDTO
	Payment *PaymentDTO `json:"payment,omitempty"`
}

// AdminBookingDTO is a booking with user and vehicle summaries joined.
type AdminBookingDTO struct {
	BookingDTO
	UserName     string `json:"user_name"`
	UserEmail    string `json:"user_email"`
	VehicleBrand string `json:"vehicle_brand"`
	VehicleModel string `json:"vehicle_model"`
	PlateNumber  string `json:"plate_number"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	repo     bookingDomain.BookingRepository
	vehicles fleetDomain.VehicleRepository
	users    UserDirectory
	userInfo UserInfoProvider
	payments paymentDomain.PaymentRepository
	pricing  bookingDomain.PricingStrategy
	producer EventPublisher
	logger   *zap.Logger
}

// UserInfoProvider resolves display details for admin views.
type UserInfoProvider interface {
	DisplayInfo(ctx context.Context, id uuid.UUID) (name, email string, err error)
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	repo bookingDomain.BookingRepository,
	vehicles fleetDomain.VehicleRepository,
	users UserDirectory,
	userInfo UserInfoProvider,
	payments paymentDomain.PaymentRepository,
	pricing bookingDomain.PricingStrategy,
	producer EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		repo:     repo,
		vehicles: vehicles,
		users:    users,
		userInfo: userInfo,
		payments: payments,
		pricing:  pricing,
		producer: producer,
		logger:   logger,
	}
}

// CreateBooking creates a pending booking for the given user and vehicle.
// The total price is snapshotted from the vehicle's current daily rate. The
// authoritative conflict check happens inside the repository's reservation
// transaction; whichever request commits first wins.
func (s *BookingService) CreateBooking(ctx context.Context, userID, vehicleID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NewNotFoundError("User", userID.String())
	}

	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !vehicle.Available() {
		return nil, domain.NewConflictError("vehicle is not available for booking")
	}

	rng, err := bookingDomain.NewDateRange(req.PickupDate, req.ReturnDate)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	days := rng.Days()
	priceCents, err := s.pricing.Calculate(days, vehicle.PricePerDayCents())
	if err != nil {
		return nil, domain.NewValidationError(fmt.Sprintf("pricing error: %v", err))
	}

	bk, err := bookingDomain.NewBooking(
		userID,
		vehicleID,
		rng,
		req.PickupLocation,
		days,
		priceCents,
		"ETB",
	)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Reserve(ctx, bk); err != nil {
		return nil, err
	}

	s.publishBookingRequested(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// ConfirmBooking transitions a pending booking to confirmed once the renter
// supplies valid contact details.
func (s *BookingService) ConfirmBooking(ctx context.Context, userID, bookingID uuid.UUID, req ConfirmBookingRequest) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.UserID() != userID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	contact := bookingDomain.RenterContact{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	}
	if err := bk.Confirm(contact); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishBookingConfirmed(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// ConfirmFromPayment confirms a still-pending booking after its payment
// completed. Already-confirmed bookings are a no-op; terminal bookings get a
// logged warning since the money arrived for a dead booking.
func (s *BookingService) ConfirmFromPayment(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if bk.Status() == bookingDomain.StatusConfirmed {
		result := toBookingDTO(bk)
		return &result, nil
	}

	if err := bk.ConfirmFromPayment(); err != nil {
		s.logger.Warn("payment completed for a booking that cannot be confirmed",
			zap.String("booking_id", bookingID.String()),
			zap.String("status", bk.Status().String()),
		)
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishBookingConfirmed(ctx, bk)

	result := toBookingDTO(bk)
	return &result, nil
}

// CancelBooking cancels a booking that is not yet in a terminal state. The
// owning user or an admin may cancel. A completed payment is left untouched;
// refunds are a manual operation.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, cancelledBy uuid.UUID, isAdmin bool, reason string) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && bk.UserID() != cancelledBy {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	if err := bk.Cancel(reason); err != nil {
		return nil, err
	}

	bk.IncrementVersion()
	if err := s.repo.Update(ctx, bk); err != nil {
		return nil, err
	}

	evt := events.BookingCancelledEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		CancelledBy:   cancelledBy,
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, evt)

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a single booking, restricted to its owner unless the
// caller is an admin.
func (s *BookingService) GetBooking(ctx context.Context, callerID uuid.UUID, isAdmin bool, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && bk.UserID() != callerID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// AvailabilityResult reports whether a vehicle can be booked for a range.
type AvailabilityResult struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// CheckAvailability answers whether the vehicle could be booked for the
// requested range. It is advisory only: the reservation itself re-checks
// under a row lock, so a positive answer here can still lose the race.
func (s *BookingService) CheckAvailability(ctx context.Context, vehicleID uuid.UUID, pickup, returnDate time.Time) (*AvailabilityResult, error) {
	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	if !vehicle.Available() {
		return &AvailabilityResult{Reason: "vehicle is not available for booking"}, nil
	}

	rng, err := bookingDomain.NewDateRange(pickup, returnDate)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	covering, err := s.repo.HasConfirmedCovering(ctx, vehicleID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if covering {
		return &AvailabilityResult{Reason: "vehicle is currently booked"}, nil
	}

	overlapping, err := s.repo.FindConfirmedOverlapping(ctx, vehicleID, rng)
	if err != nil {
		return nil, err
	}
	if len(overlapping) > 0 {
		return &AvailabilityResult{Reason: "vehicle is already booked for the requested dates"}, nil
	}

	return &AvailabilityResult{Available: true}, nil
}

// LatestBookingID resolves the user's most recent booking for a vehicle,
// used by the client to obtain the reference for payment initialization.
func (s *BookingService) LatestBookingID(ctx context.Context, userID, vehicleID uuid.UUID) (uuid.UUID, error) {
	bk, err := s.repo.FindLatestByVehicle(ctx, userID, vehicleID)
	if err != nil {
		return uuid.Nil, err
	}
	return bk.ID(), nil
}

// GetBookingHistory retrieves the user's bookings with payments joined.
func (s *BookingService) GetBookingHistory(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingHistoryDTO], error) {
	bookings, total, err := s.repo.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingHistoryDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = BookingHistoryDTO{BookingDTO: toBookingDTO(bk)}
		p, err := s.payments.FindByBookingID(ctx, bk.ID())
		if err == nil {
			pd := toPaymentDTO(p)
			dtos[i].Payment = &pd
		}
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetBookingWithPayment retrieves one of the user's bookings with its payment.
func (s *BookingService) GetBookingWithPayment(ctx context.Context, userID, bookingID uuid.UUID) (*BookingHistoryDTO, error) {
	bk, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.UserID() != userID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	dto := BookingHistoryDTO{BookingDTO: toBookingDTO(bk)}
	if p, err := s.payments.FindByBookingID(ctx, bk.ID()); err == nil {
		pd := toPaymentDTO(p)
		dto.Payment = &pd
	}
	return &dto, nil
}

// HandlePaymentCompleted is the consumer-facing entrypoint for payment
// completion events. Bookings that can no longer be confirmed are logged and
// dropped rather than retried, since redelivery cannot change the outcome.
func (s *BookingService) HandlePaymentCompleted(ctx context.Context, evt events.PaymentCompletedEvent) error {
	_, err := s.ConfirmFromPayment(ctx, evt.BookingID)
	if err != nil {
		if _, ok := err.(*domain.InvalidStateError); ok {
			return nil
		}
		if _, ok := err.(*domain.NotFoundError); ok {
			s.logger.Warn("payment completed for unknown booking",
				zap.String("booking_id", evt.BookingID.String()),
				zap.String("tx_ref", evt.TxRef),
			)
			return nil
		}
		return err
	}
	return nil
}

// --- Admin methods ---

// ListAllBookings returns a paginated list of all bookings with user and
// vehicle details joined (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]AdminBookingDTO, int64, error) {
	bookings, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]AdminBookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = AdminBookingDTO{BookingDTO: toBookingDTO(bk)}

		if name, email, err := s.userInfo.DisplayInfo(ctx, bk.UserID()); err == nil {
			dtos[i].UserName = name
			dtos[i].UserEmail = email
		}
		if v, err := s.vehicles.FindByID(ctx, bk.VehicleID()); err == nil {
			dtos[i].VehicleBrand = v.Brand()
			dtos[i].VehicleModel = v.Model()
			dtos[i].PlateNumber = v.PlateNumber()
		}
	}
	return dtos, total, nil
}

// DeleteBooking hard-deletes a booking regardless of status (admin).
func (s *BookingService) DeleteBooking(ctx context.Context, bookingID uuid.UUID) error {
	return s.repo.Delete(ctx, bookingID)
}

// --- Helpers ---

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
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
		Contact:         bk.Contact(),
		ConfirmedAt:     bk.ConfirmedAt(),
		CancelledAt:     bk.CancelledAt(),
		CancelNote:      bk.CancelNote(),
		CreatedAt:       bk.CreatedAt(),
		UpdatedAt:       bk.UpdatedAt(),
	}
}

func (s *BookingService) publishBookingRequested(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingRequestedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		UserID:        bk.UserID(),
		VehicleID:     bk.VehicleID(),
		PickupDate:    bk.DateRange().Pickup,
		ReturnDate:    bk.DateRange().Return,
		TotalDays:     bk.TotalDays(),
		TotalPrice:    bk.TotalPriceCents(),
		Currency:      bk.Currency(),
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingRequested, evt)
}

func (s *BookingService) publishBookingConfirmed(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingConfirmedEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		UserID:        bk.UserID(),
		VehicleID:     bk.VehicleID(),
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingConfirmed, evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent(serviceName, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
