package application

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/addisrides/service-rental/internal/domain/booking"
	fleetDomain "github.com/addisrides/service-rental/internal/domain/fleet"
	paymentDomain "github.com/addisrides/service-rental/internal/domain/payment"
	"github.com/addisrides/service-rental/internal/gateway"
	"github.com/addisrides/service-rental/pkg/domain"
	"github.com/addisrides/service-rental/pkg/kafka"
)

// fakeBookingRepo is an in-memory BookingRepository.
type fakeBookingRepo struct {
	bookings   map[uuid.UUID]*bookingDomain.Booking
	reserveErr error
	updateErr  error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*bookingDomain.Booking)}
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	bk, ok := r.bookings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return bk, nil
}

func (r *fakeBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.UserID() == userID {
			out = append(out, bk)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) FindLatestByVehicle(_ context.Context, userID, vehicleID uuid.UUID) (*bookingDomain.Booking, error) {
	var latest *bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.UserID() != userID || bk.VehicleID() != vehicleID {
			continue
		}
		if latest == nil || bk.CreatedAt().After(latest.CreatedAt()) {
			latest = bk
		}
	}
	if latest == nil {
		return nil, domain.NewNotFoundError("Booking", vehicleID.String())
	}
	return latest, nil
}

func (r *fakeBookingRepo) FindConfirmedOverlapping(_ context.Context, vehicleID uuid.UUID, rng bookingDomain.DateRange) ([]*bookingDomain.Booking, error) {
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		if bk.VehicleID() == vehicleID && bk.Status() == bookingDomain.StatusConfirmed && bk.DateRange().Overlaps(rng) {
			out = append(out, bk)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) HasConfirmedCovering(_ context.Context, vehicleID uuid.UUID, day time.Time) (bool, error) {
	for _, bk := range r.bookings {
		if bk.VehicleID() == vehicleID && bk.Status() == bookingDomain.StatusConfirmed && bk.DateRange().ContainsDay(day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) ListAll(_ context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var out []*bookingDomain.Booking
	for _, bk := range r.bookings {
		out = append(out, bk)
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) Reserve(_ context.Context, bk *bookingDomain.Booking) error {
	if r.reserveErr != nil {
		return r.reserveErr
	}
	for _, existing := range r.bookings {
		if existing.VehicleID() == bk.VehicleID() &&
			existing.Status() == bookingDomain.StatusConfirmed &&
			existing.DateRange().Overlaps(bk.DateRange()) {
			return domain.NewConflictError("vehicle is already booked for the requested dates")
		}
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Update(_ context.Context, bk *bookingDomain.Booking) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.bookings[bk.ID()]; !ok {
		return domain.NewNotFoundError("Booking", bk.ID().String())
	}
	r.bookings[bk.ID()] = bk
	return nil
}

func (r *fakeBookingRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.bookings[id]; !ok {
		return domain.NewNotFoundError("Booking", id.String())
	}
	delete(r.bookings, id)
	return nil
}

// fakeVehicleRepo is an in-memory VehicleRepository.
type fakeVehicleRepo struct {
	vehicles map[uuid.UUID]*fleetDomain.Vehicle
}

func newFakeVehicleRepo() *fakeVehicleRepo {
	return &fakeVehicleRepo{vehicles: make(map[uuid.UUID]*fleetDomain.Vehicle)}
}

func (r *fakeVehicleRepo) FindByID(_ context.Context, id uuid.UUID) (*fleetDomain.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, domain.NewNotFoundError("Vehicle", id.String())
	}
	return v, nil
}

func (r *fakeVehicleRepo) ListAvailable(_ context.Context, page, limit int) ([]*fleetDomain.Vehicle, int64, error) {
	var out []*fleetDomain.Vehicle
	for _, v := range r.vehicles {
		if v.Available() {
			out = append(out, v)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeVehicleRepo) ListAll(_ context.Context, page, limit int) ([]*fleetDomain.Vehicle, int64, error) {
	var out []*fleetDomain.Vehicle
	for _, v := range r.vehicles {
		out = append(out, v)
	}
	return out, int64(len(out)), nil
}

func (r *fakeVehicleRepo) Save(_ context.Context, v *fleetDomain.Vehicle) error {
	r.vehicles[v.ID()] = v
	return nil
}

func (r *fakeVehicleRepo) Update(_ context.Context, v *fleetDomain.Vehicle) error {
	if _, ok := r.vehicles[v.ID()]; !ok {
		return domain.NewNotFoundError("Vehicle", v.ID().String())
	}
	r.vehicles[v.ID()] = v
	return nil
}

func (r *fakeVehicleRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.vehicles[id]; !ok {
		return domain.NewNotFoundError("Vehicle", id.String())
	}
	delete(r.vehicles, id)
	return nil
}

// fakePaymentRepo is an in-memory PaymentRepository.
type fakePaymentRepo struct {
	payments map[uuid.UUID]*paymentDomain.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*paymentDomain.Payment)}
}

func (r *fakePaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*paymentDomain.Payment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, domain.NewNotFoundError("Payment", id.String())
	}
	return p, nil
}

func (r *fakePaymentRepo) FindByTxRef(_ context.Context, txRef string) (*paymentDomain.Payment, error) {
	for _, p := range r.payments {
		if p.TxRef() == txRef {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("Payment", txRef)
}

func (r *fakePaymentRepo) FindByBookingID(_ context.Context, bookingID uuid.UUID) (*paymentDomain.Payment, error) {
	for _, p := range r.payments {
		if p.BookingID() == bookingID {
			return p, nil
		}
	}
	return nil, domain.NewNotFoundError("Payment", bookingID.String())
}

func (r *fakePaymentRepo) Save(_ context.Context, p *paymentDomain.Payment) error {
	for _, existing := range r.payments {
		if existing.BookingID() == p.BookingID() {
			return domain.NewConflictError("a payment already exists for this booking")
		}
	}
	r.payments[p.ID()] = p
	return nil
}

func (r *fakePaymentRepo) Update(_ context.Context, p *paymentDomain.Payment) error {
	if _, ok := r.payments[p.ID()]; !ok {
		return domain.NewNotFoundError("Payment", p.ID().String())
	}
	r.payments[p.ID()] = p
	return nil
}

// fakeUsers satisfies UserDirectory and UserInfoProvider.
type fakeUsers struct {
	known map[uuid.UUID]struct{ name, email string }
}

func newFakeUsers(ids ...uuid.UUID) *fakeUsers {
	f := &fakeUsers{known: make(map[uuid.UUID]struct{ name, email string })}
	for _, id := range ids {
		f.known[id] = struct{ name, email string }{"Test Renter", "renter@example.com"}
	}
	return f
}

func (f *fakeUsers) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.known[id]
	return ok, nil
}

func (f *fakeUsers) DisplayInfo(_ context.Context, id uuid.UUID) (string, string, error) {
	info, ok := f.known[id]
	if !ok {
		return "", "", domain.NewNotFoundError("User", id.String())
	}
	return info.name, info.email, nil
}

// fakePublisher records published events.
type fakePublisher struct {
	events []publishedEvent
	err    error
}

type publishedEvent struct {
	topic string
	event kafka.CloudEvent
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic string, event kafka.CloudEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{topic: topic, event: event})
	return nil
}

func (f *fakePublisher) typesOn(topic string) []string {
	var out []string
	for _, e := range f.events {
		if e.topic == topic {
			out = append(out, e.event.Type)
		}
	}
	return out
}

// fakeGateway is a scriptable PaymentGateway.
type fakeGateway struct {
	initResult *gateway.InitializeResult
	initErr    error
	initCalls  int

	verifyResult *gateway.VerifyResult
	verifyErr    error
	verifyCalls  int
}

func (g *fakeGateway) Initialize(_ context.Context, req gateway.InitializeRequest) (*gateway.InitializeResult, error) {
	g.initCalls++
	if g.initErr != nil {
		return nil, g.initErr
	}
	if g.initResult != nil {
		return g.initResult, nil
	}
	return &gateway.InitializeResult{CheckoutURL: "https://checkout.chapa.co/pay/" + req.TxRef}, nil
}

func (g *fakeGateway) Verify(_ context.Context, txRef string) (*gateway.VerifyResult, error) {
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if g.verifyResult != nil {
		return g.verifyResult, nil
	}
	return &gateway.VerifyResult{Status: gateway.VerifyPending}, nil
}
