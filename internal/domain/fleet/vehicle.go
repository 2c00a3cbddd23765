package fleet

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VehicleType categorizes a rentable vehicle.
type VehicleType string

const (
	VehicleTypeSedan     VehicleType = "sedan"
	VehicleTypeSUV       VehicleType = "suv"
	VehicleTypeHatchback VehicleType = "hatchback"
	VehicleTypePickup    VehicleType = "pickup"
	VehicleTypeVan       VehicleType = "van"
	VehicleTypeMinibus   VehicleType = "minibus"
)

// IsValid returns true if the vehicle type is recognized.
func (t VehicleType) IsValid() bool {
	switch t {
	case VehicleTypeSedan, VehicleTypeSUV, VehicleTypeHatchback,
		VehicleTypePickup, VehicleTypeVan, VehicleTypeMinibus:
		return true
	}
	return false
}

// Transmission is the gearbox type of a vehicle.
type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

// IsValid returns true if the transmission is recognized.
func (t Transmission) IsValid() bool {
	return t == TransmissionManual || t == TransmissionAutomatic
}

// FuelType is the fuel a vehicle runs on.
type FuelType string

const (
	FuelPetrol   FuelType = "petrol"
	FuelDiesel   FuelType = "diesel"
	FuelHybrid   FuelType = "hybrid"
	FuelElectric FuelType = "electric"
)

// IsValid returns true if the fuel type is recognized.
func (f FuelType) IsValid() bool {
	switch f {
	case FuelPetrol, FuelDiesel, FuelHybrid, FuelElectric:
		return true
	}
	return false
}

// Vehicle is the aggregate root for a rentable fleet vehicle.
type Vehicle struct {
	id               uuid.UUID
	brand            string
	model            string
	year             int
	plateNumber      string
	vehicleType      VehicleType
	seats            int
	transmission     Transmission
	fuelType         FuelType
	pricePerDayCents int64
	available        bool
	imageURL         string
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
}

// NewVehicle creates a new available vehicle with validated fields.
func NewVehicle(
	brand, model string,
	year int,
	plateNumber string,
	vehicleType VehicleType,
	seats int,
	transmission Transmission,
	fuelType FuelType,
	pricePerDayCents int64,
	imageURL string,
) (*Vehicle, error) {
	if brand == "" {
		return nil, fmt.Errorf("brand is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if year < 1990 || year > time.Now().UTC().Year()+1 {
		return nil, fmt.Errorf("invalid year: %d", year)
	}
	if plateNumber == "" {
		return nil, fmt.Errorf("plate number is required")
	}
	if !vehicleType.IsValid() {
		return nil, fmt.Errorf("invalid vehicle type: %s", vehicleType)
	}
	if seats < 1 {
		return nil, fmt.Errorf("seats must be positive")
	}
	if !transmission.IsValid() {
		return nil, fmt.Errorf("invalid transmission: %s", transmission)
	}
	if !fuelType.IsValid() {
		return nil, fmt.Errorf("invalid fuel type: %s", fuelType)
	}
	if pricePerDayCents <= 0 {
		return nil, fmt.Errorf("daily price must be positive")
	}

	now := time.Now().UTC()
	return &Vehicle{
		id:               uuid.New(),
		brand:            brand,
		model:            model,
		year:             year,
		plateNumber:      plateNumber,
		vehicleType:      vehicleType,
		seats:            seats,
		transmission:     transmission,
		fuelType:         fuelType,
		pricePerDayCents: pricePerDayCents,
		available:        true,
		imageURL:         imageURL,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct rebuilds a Vehicle from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	brand, model string,
	year int,
	plateNumber string,
	vehicleType VehicleType,
	seats int,
	transmission Transmission,
	fuelType FuelType,
	pricePerDayCents int64,
	available bool,
	imageURL string,
	version int64,
	createdAt, updatedAt time.Time,
) *Vehicle {
	return &Vehicle{
		id:               id,
		brand:            brand,
		model:            model,
		year:             year,
		plateNumber:      plateNumber,
		vehicleType:      vehicleType,
		seats:            seats,
		transmission:     transmission,
		fuelType:         fuelType,
		pricePerDayCents: pricePerDayCents,
		available:        available,
		imageURL:         imageURL,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

func (v *Vehicle) ID() uuid.UUID              { return v.id }
func (v *Vehicle) Brand() string              { return v.brand }
func (v *Vehicle) Model() string              { return v.model }
func (v *Vehicle) Year() int                  { return v.year }
func (v *Vehicle) PlateNumber() string        { return v.plateNumber }
func (v *Vehicle) VehicleType() VehicleType   { return v.vehicleType }
func (v *Vehicle) Seats() int                 { return v.seats }
func (v *Vehicle) Transmission() Transmission { return v.transmission }
func (v *Vehicle) FuelType() FuelType         { return v.fuelType }
func (v *Vehicle) PricePerDayCents() int64    { return v.pricePerDayCents }
func (v *Vehicle) Available() bool            { return v.available }
func (v *Vehicle) ImageURL() string           { return v.imageURL }
func (v *Vehicle) Version() int64             { return v.version }
func (v *Vehicle) CreatedAt() time.Time       { return v.createdAt }
func (v *Vehicle) UpdatedAt() time.Time       { return v.updatedAt }

// --- Behavior ---

// UpdateDetails replaces the vehicle's descriptive attributes. Existing
// bookings keep their snapshotted price regardless of price changes here.
func (v *Vehicle) UpdateDetails(
	brand, model string,
	year int,
	vehicleType VehicleType,
	seats int,
	transmission Transmission,
	fuelType FuelType,
	pricePerDayCents int64,
	imageURL string,
) error {
	if brand == "" || model == "" {
		return fmt.Errorf("brand and model are required")
	}
	if !vehicleType.IsValid() {
		return fmt.Errorf("invalid vehicle type: %s", vehicleType)
	}
	if !transmission.IsValid() {
		return fmt.Errorf("invalid transmission: %s", transmission)
	}
	if !fuelType.IsValid() {
		return fmt.Errorf("invalid fuel type: %s", fuelType)
	}
	if pricePerDayCents <= 0 {
		return fmt.Errorf("daily price must be positive")
	}
	if seats < 1 {
		return fmt.Errorf("seats must be positive")
	}

	v.brand = brand
	v.model = model
	v.year = year
	v.vehicleType = vehicleType
	v.seats = seats
	v.transmission = transmission
	v.fuelType = fuelType
	v.pricePerDayCents = pricePerDayCents
	v.imageURL = imageURL
	v.updatedAt = time.Now().UTC()
	return nil
}

// SetAvailability flips the fleet-level availability flag. This is an admin
// control independent of booking-level date conflicts.
func (v *Vehicle) SetAvailability(available bool) {
	v.available = available
	v.updatedAt = time.Now().UTC()
}

// IncrementVersion bumps the version for optimistic locking.
func (v *Vehicle) IncrementVersion() {
	v.version++
	v.updatedAt = time.Now().UTC()
}
