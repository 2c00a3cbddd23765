package booking

import "fmt"

// PricingStrategy defines the interface for calculating rental prices.
type PricingStrategy interface {
	// Calculate returns the total price in cents for a rental of the given
	// length at the vehicle's daily rate.
	Calculate(days int, pricePerDayCents int64) (int64, error)
}

// StandardPricingStrategy implements the flat daily-rate pricing used across
// the fleet: total = days * daily rate, snapshotted onto the booking at
// creation time.
type StandardPricingStrategy struct{}

// NewStandardPricingStrategy creates a new StandardPricingStrategy.
func NewStandardPricingStrategy() *StandardPricingStrategy {
	return &StandardPricingStrategy{}
}

// Calculate computes the total rental price in cents.
func (s *StandardPricingStrategy) Calculate(days int, pricePerDayCents int64) (int64, error) {
	if days < 1 {
		return 0, fmt.Errorf("rental must be at least one day")
	}
	if pricePerDayCents <= 0 {
		return 0, fmt.Errorf("daily price must be positive")
	}
	return int64(days) * pricePerDayCents, nil
}
