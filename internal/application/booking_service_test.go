package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	bookingDomain "github.com/addisrides/service-rental/internal/domain/booking"
	fleetDomain "github.com/addisrides/service-rental/internal/domain/fleet"
	"github.com/addisrides/service-rental/internal/events"
	"github.com/addisrides/service-rental/pkg/domain"
)

type bookingFixture struct {
	svc       *BookingService
	bookings  *fakeBookingRepo
	vehicles  *fakeVehicleRepo
	payments  *fakePaymentRepo
	publisher *fakePublisher
	userID    uuid.UUID
	vehicleID uuid.UUID
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	userID := uuid.New()
	users := newFakeUsers(userID)

	vehicles := newFakeVehicleRepo()
	vehicle, err := fleetDomain.NewVehicle(
		"Toyota", "Corolla", 2021, "AA-12345", fleetDomain.VehicleTypeSedan,
		5, fleetDomain.TransmissionAutomatic, fleetDomain.FuelPetrol, 1000, "",
	)
	require.NoError(t, err)
	require.NoError(t, vehicles.Save(context.Background(), vehicle))

	bookings := newFakeBookingRepo()
	payments := newFakePaymentRepo()
	publisher := &fakePublisher{}

	svc := NewBookingService(
		bookings, vehicles, users, users, payments,
		bookingDomain.NewStandardPricingStrategy(),
		publisher, zap.NewNop(),
	)

	return &bookingFixture{
		svc:       svc,
		bookings:  bookings,
		vehicles:  vehicles,
		payments:  payments,
		publisher: publisher,
		userID:    userID,
		vehicleID: vehicle.ID(),
	}
}

func createReq(pickup, ret time.Time) CreateBookingRequest {
	return CreateBookingRequest{
		PickupDate:     pickup,
		ReturnDate:     ret,
		PickupLocation: "Bole International Airport",
	}
}

func testDay(d int) time.Time {
	return time.Date(2024, time.June, d, 0, 0, 0, 0, time.UTC)
}

func TestBookingService_CreateBooking(t *testing.T) {
	t.Run("snapshots price from daily rate", func(t *testing.T) {
		f := newBookingFixture(t)

		dto, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		assert.Equal(t, "pending", dto.Status)
		assert.Equal(t, 2, dto.TotalDays)
		assert.Equal(t, int64(2000), dto.TotalPriceCents)
		assert.Equal(t, "ETB", dto.Currency)

		assert.Equal(t, []string{events.BookingRequested}, f.publisher.typesOn(events.TopicBookingEvents))
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newBookingFixture(t)

		_, err := f.svc.CreateBooking(context.Background(), uuid.New(), f.vehicleID, createReq(testDay(1), testDay(3)))
		var nfErr *domain.NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})

	t.Run("unknown vehicle", func(t *testing.T) {
		f := newBookingFixture(t)

		_, err := f.svc.CreateBooking(context.Background(), f.userID, uuid.New(), createReq(testDay(1), testDay(3)))
		var nfErr *domain.NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})

	t.Run("unavailable vehicle", func(t *testing.T) {
		f := newBookingFixture(t)
		v, _ := f.vehicles.FindByID(context.Background(), f.vehicleID)
		v.SetAvailability(false)

		_, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		var conflictErr *domain.ConflictError
		assert.ErrorAs(t, err, &conflictErr)
	})

	t.Run("invalid date range", func(t *testing.T) {
		f := newBookingFixture(t)

		_, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(3), testDay(1)))
		var vErr *domain.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("overlap with confirmed booking conflicts", func(t *testing.T) {
		f := newBookingFixture(t)

		first, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(5)))
		require.NoError(t, err)
		_, err = f.svc.ConfirmBooking(context.Background(), f.userID, first.ID, ConfirmBookingRequest{
			FullName: "Abebe Bikila", Email: "abebe@example.com", Phone: "911223344",
		})
		require.NoError(t, err)

		_, err = f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(4), testDay(6)))
		var conflictErr *domain.ConflictError
		assert.ErrorAs(t, err, &conflictErr)
	})

	t.Run("disjoint range succeeds after confirmed booking", func(t *testing.T) {
		f := newBookingFixture(t)

		first, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)
		_, err = f.svc.ConfirmBooking(context.Background(), f.userID, first.ID, ConfirmBookingRequest{
			FullName: "Abebe Bikila", Email: "abebe@example.com", Phone: "911223344",
		})
		require.NoError(t, err)

		_, err = f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(10), testDay(12)))
		assert.NoError(t, err)
	})
}

func TestBookingService_ConfirmBooking(t *testing.T) {
	t.Run("owner confirms with contact", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		dto, err := f.svc.ConfirmBooking(context.Background(), f.userID, created.ID, ConfirmBookingRequest{
			FullName: "Abebe Bikila", Email: "abebe@example.com", Phone: "0911223344",
		})
		require.NoError(t, err)

		assert.Equal(t, "confirmed", dto.Status)
		require.NotNil(t, dto.Contact)
		assert.Equal(t, "911223344", dto.Contact.Phone)
		assert.Contains(t, f.publisher.typesOn(events.TopicBookingEvents), events.BookingConfirmed)
	})

	t.Run("another user cannot confirm", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		_, err = f.svc.ConfirmBooking(context.Background(), uuid.New(), created.ID, ConfirmBookingRequest{
			FullName: "Someone Else", Email: "other@example.com", Phone: "911000000",
		})
		var fErr *domain.ForbiddenError
		assert.ErrorAs(t, err, &fErr)
	})

	t.Run("invalid contact is rejected", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		_, err = f.svc.ConfirmBooking(context.Background(), f.userID, created.ID, ConfirmBookingRequest{
			FullName: "A", Email: "bad", Phone: "123",
		})
		var vErr *domain.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestBookingService_ConfirmFromPayment(t *testing.T) {
	t.Run("pending booking confirms", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		dto, err := f.svc.ConfirmFromPayment(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, "confirmed", dto.Status)
	})

	t.Run("already confirmed is a no-op", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)
		_, err = f.svc.ConfirmFromPayment(context.Background(), created.ID)
		require.NoError(t, err)
		eventCount := len(f.publisher.events)

		dto, err := f.svc.ConfirmFromPayment(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, "confirmed", dto.Status)
		assert.Len(t, f.publisher.events, eventCount, "no duplicate event on repeat delivery")
	})

	t.Run("cancelled booking cannot confirm", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)
		_, err = f.svc.CancelBooking(context.Background(), created.ID, f.userID, false, "changed plans")
		require.NoError(t, err)

		_, err = f.svc.ConfirmFromPayment(context.Background(), created.ID)
		var stateErr *domain.InvalidStateError
		assert.ErrorAs(t, err, &stateErr)
	})
}

func TestBookingService_HandlePaymentCompleted(t *testing.T) {
	t.Run("confirms the booking", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		err = f.svc.HandlePaymentCompleted(context.Background(), events.PaymentCompletedEvent{
			PaymentID: uuid.New(),
			BookingID: created.ID,
			UserID:    f.userID,
			TxRef:     "rental-abc",
		})
		require.NoError(t, err)

		bk, err := f.bookings.FindByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, bookingDomain.StatusConfirmed, bk.Status())
	})

	t.Run("unknown booking is dropped without error", func(t *testing.T) {
		f := newBookingFixture(t)

		err := f.svc.HandlePaymentCompleted(context.Background(), events.PaymentCompletedEvent{
			PaymentID: uuid.New(),
			BookingID: uuid.New(),
			TxRef:     "rental-xyz",
		})
		assert.NoError(t, err)
	})

	t.Run("terminal booking is dropped without error", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)
		_, err = f.svc.CancelBooking(context.Background(), created.ID, f.userID, false, "")
		require.NoError(t, err)

		err = f.svc.HandlePaymentCompleted(context.Background(), events.PaymentCompletedEvent{
			BookingID: created.ID,
		})
		assert.NoError(t, err)
	})
}

func TestBookingService_CancelBooking(t *testing.T) {
	t.Run("owner cancels", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		dto, err := f.svc.CancelBooking(context.Background(), created.ID, f.userID, false, "trip off")
		require.NoError(t, err)
		assert.Equal(t, "cancelled", dto.Status)
		assert.Equal(t, "trip off", dto.CancelNote)
		assert.Contains(t, f.publisher.typesOn(events.TopicBookingEvents), events.BookingCancelled)
	})

	t.Run("admin cancels someone else's booking", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		dto, err := f.svc.CancelBooking(context.Background(), created.ID, uuid.New(), true, "fraud review")
		require.NoError(t, err)
		assert.Equal(t, "cancelled", dto.Status)
	})

	t.Run("non-owner non-admin is forbidden", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		_, err = f.svc.CancelBooking(context.Background(), created.ID, uuid.New(), false, "")
		var fErr *domain.ForbiddenError
		assert.ErrorAs(t, err, &fErr)
	})

	t.Run("cancelled booking cannot cancel again", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)
		_, err = f.svc.CancelBooking(context.Background(), created.ID, f.userID, false, "")
		require.NoError(t, err)

		_, err = f.svc.CancelBooking(context.Background(), created.ID, f.userID, false, "")
		var stateErr *domain.InvalidStateError
		assert.ErrorAs(t, err, &stateErr)
	})
}

func TestBookingService_Queries(t *testing.T) {
	t.Run("availability pre-check", func(t *testing.T) {
		f := newBookingFixture(t)

		result, err := f.svc.CheckAvailability(context.Background(), f.vehicleID, testDay(1), testDay(3))
		require.NoError(t, err)
		assert.True(t, result.Available)

		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(5)))
		require.NoError(t, err)
		_, err = f.svc.ConfirmFromPayment(context.Background(), created.ID)
		require.NoError(t, err)

		result, err = f.svc.CheckAvailability(context.Background(), f.vehicleID, testDay(4), testDay(6))
		require.NoError(t, err)
		assert.False(t, result.Available)
		assert.NotEmpty(t, result.Reason)

		result, err = f.svc.CheckAvailability(context.Background(), f.vehicleID, testDay(10), testDay(12))
		require.NoError(t, err)
		assert.True(t, result.Available)

		_, err = f.svc.CheckAvailability(context.Background(), f.vehicleID, testDay(3), testDay(1))
		var vErr *domain.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})

	t.Run("latest booking id for vehicle", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		id, err := f.svc.LatestBookingID(context.Background(), f.userID, f.vehicleID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, id)
	})

	t.Run("booking history joins payment", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		result, err := f.svc.GetBookingHistory(context.Background(), f.userID, 1, 20)
		require.NoError(t, err)
		require.Len(t, result.Items, 1)
		assert.Equal(t, created.ID, result.Items[0].ID)
		assert.Nil(t, result.Items[0].Payment, "no payment yet")
	})

	t.Run("get booking restricted to owner", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		_, err = f.svc.GetBooking(context.Background(), uuid.New(), false, created.ID)
		var fErr *domain.ForbiddenError
		assert.ErrorAs(t, err, &fErr)

		dto, err := f.svc.GetBooking(context.Background(), uuid.New(), true, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, dto.ID)
	})

	t.Run("admin list joins user and vehicle", func(t *testing.T) {
		f := newBookingFixture(t)
		_, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		items, total, err := f.svc.ListAllBookings(context.Background(), 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, "Test Renter", items[0].UserName)
		assert.Equal(t, "Toyota", items[0].VehicleBrand)
		assert.Equal(t, "AA-12345", items[0].PlateNumber)
	})

	t.Run("delete booking", func(t *testing.T) {
		f := newBookingFixture(t)
		created, err := f.svc.CreateBooking(context.Background(), f.userID, f.vehicleID, createReq(testDay(1), testDay(3)))
		require.NoError(t, err)

		require.NoError(t, f.svc.DeleteBooking(context.Background(), created.ID))

		_, err = f.bookings.FindByID(context.Background(), created.ID)
		assert.Error(t, err)
	})
}
