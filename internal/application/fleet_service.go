package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	fleetDomain "github.com/addisrides/service-rental/internal/domain/fleet"
	"github.com/addisrides/service-rental/pkg/domain"
)

// CreateVehicleRequest holds the data needed to register a vehicle.
type CreateVehicleRequest struct {
	Brand            string `json:"brand" binding:"required"`
	Model            string `json:"model" binding:"required"`
	Year             int    `json:"year" binding:"required"`
	PlateNumber      string `json:"plate_number" binding:"required"`
	VehicleType      string `json:"vehicle_type" binding:"required"`
	Seats            int    `json:"seats" binding:"required"`
	Transmission     string `json:"transmission" binding:"required"`
	FuelType         string `json:"fuel_type" binding:"required"`
	PricePerDayCents int64  `json:"price_per_day_cents" binding:"required"`
	ImageURL         string `json:"image_url"`
}

// UpdateVehicleRequest holds the data for updating a vehicle's details.
type UpdateVehicleRequest struct {
	Brand            string `json:"brand" binding:"required"`
	Model            string `json:"model" binding:"required"`
	Year             int    `json:"year" binding:"required"`
	VehicleType      string `json:"vehicle_type" binding:"required"`
	Seats            int    `json:"seats" binding:"required"`
	Transmission     string `json:"transmission" binding:"required"`
	FuelType         string `json:"fuel_type" binding:"required"`
	PricePerDayCents int64  `json:"price_per_day_cents" binding:"required"`
	ImageURL         string `json:"image_url"`
}

// VehicleDTO is the response representation of a vehicle.
type VehicleDTO struct {
	ID               uuid.UUID `json:"id"`
	Brand            string    `json:"brand"`
	Model            string    `json:"model"`
	Year             int       `json:"year"`
	PlateNumber      string    `json:"plate_number"`
	VehicleType      string    `json:"vehicle_type"`
	Seats            int       `json:"seats"`
	Transmission     string    `json:"transmission"`
	FuelType         string    `json:"fuel_type"`
	PricePerDayCents int64     `json:"price_per_day_cents"`
	Available        bool      `json:"available"`
	ImageURL         string    `json:"image_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// FleetService manages the rentable vehicle catalog.
type FleetService struct {
	repo   fleetDomain.VehicleRepository
	logger *zap.Logger
}

// NewFleetService creates a new FleetService.
func NewFleetService(repo fleetDomain.VehicleRepository, logger *zap.Logger) *FleetService {
	return &FleetService{repo: repo, logger: logger}
}

// CreateVehicle registers a new vehicle in the fleet (admin).
func (s *FleetService) CreateVehicle(ctx context.Context, req CreateVehicleRequest) (*VehicleDTO, error) {
	vehicle, err := fleetDomain.NewVehicle(
		req.Brand,
		req.Model,
		req.Year,
		req.PlateNumber,
		fleetDomain.VehicleType(req.VehicleType),
		req.Seats,
		fleetDomain.Transmission(req.Transmission),
		fleetDomain.FuelType(req.FuelType),
		req.PricePerDayCents,
		req.ImageURL,
	)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Save(ctx, vehicle); err != nil {
		return nil, err
	}

	dto := toVehicleDTO(vehicle)
	return &dto, nil
}

// GetVehicle retrieves a single vehicle by ID.
func (s *FleetService) GetVehicle(ctx context.Context, id uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toVehicleDTO(vehicle)
	return &dto, nil
}

// ListAvailableVehicles returns a paginated list of vehicles open for booking.
func (s *FleetService) ListAvailableVehicles(ctx context.Context, page, limit int) (*domain.PaginatedResult[VehicleDTO], error) {
	vehicles, total, err := s.repo.ListAvailable(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toVehicleDTOs(vehicles), total, page, limit)
	return &result, nil
}

// ListAllVehicles returns a paginated list of the whole fleet (admin).
func (s *FleetService) ListAllVehicles(ctx context.Context, page, limit int) (*domain.PaginatedResult[VehicleDTO], error) {
	vehicles, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	result := domain.NewPaginatedResult(toVehicleDTOs(vehicles), total, page, limit)
	return &result, nil
}

// UpdateVehicle replaces a vehicle's descriptive details (admin).
func (s *FleetService) UpdateVehicle(ctx context.Context, id uuid.UUID, req UpdateVehicleRequest) (*VehicleDTO, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := vehicle.UpdateDetails(
		req.Brand,
		req.Model,
		req.Year,
		fleetDomain.VehicleType(req.VehicleType),
		req.Seats,
		fleetDomain.Transmission(req.Transmission),
		fleetDomain.FuelType(req.FuelType),
		req.PricePerDayCents,
		req.ImageURL,
	); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	vehicle.IncrementVersion()
	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	dto := toVehicleDTO(vehicle)
	return &dto, nil
}

// SetVehicleAvailability flips a vehicle's fleet-level availability (admin).
func (s *FleetService) SetVehicleAvailability(ctx context.Context, id uuid.UUID, available bool) (*VehicleDTO, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	vehicle.SetAvailability(available)
	vehicle.IncrementVersion()
	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, err
	}

	dto := toVehicleDTO(vehicle)
	return &dto, nil
}

// DeleteVehicle removes a vehicle from the fleet (admin).
func (s *FleetService) DeleteVehicle(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func toVehicleDTO(v *fleetDomain.Vehicle) VehicleDTO {
	return VehicleDTO{
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
		CreatedAt:        v.CreatedAt(),
		UpdatedAt:        v.UpdatedAt(),
	}
}

func toVehicleDTOs(vehicles []*fleetDomain.Vehicle) []VehicleDTO {
	dtos := make([]VehicleDTO, len(vehicles))
	for i, v := range vehicles {
		dtos[i] = toVehicleDTO(v)
	}
	return dtos
}
