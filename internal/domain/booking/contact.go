package booking

import (
	"github.com/addisrides/service-rental/pkg/domain"
	"github.com/addisrides/service-rental/pkg/validator"
)

// RenterContact is the contact detail set required to confirm a booking.
type RenterContact struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// Validate checks the contact fields and returns a normalized copy with the
// phone number in its 9-digit local form.
func (c RenterContact) Validate() (RenterContact, error) {
	if err := validator.ValidateName(c.FullName); err != nil {
		return RenterContact{}, domain.NewValidationError(err.Error())
	}
	if err := validator.ValidateEmail(c.Email); err != nil {
		return RenterContact{}, domain.NewValidationError(err.Error())
	}
	phone, err := validator.ValidatePhone(c.Phone)
	if err != nil {
		return RenterContact{}, domain.NewValidationError(err.Error())
	}
	return RenterContact{FullName: c.FullName, Email: c.Email, Phone: phone}, nil
}

// IsZero reports whether no contact details have been supplied.
func (c RenterContact) IsZero() bool {
	return c.FullName == "" && c.Email == "" && c.Phone == ""
}
