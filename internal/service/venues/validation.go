package venues

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

const (
	maxVenueNameLength = 255
	maxAddressLength   = 500
	maxCityLength      = 100
	maxPhoneLength     = 32
	maxCourtNameLength = 100
)

func validateVenueFields(name, address, city, phone string) error {
	if strings.TrimSpace(name) == "" || utf8.RuneCountInString(name) > maxVenueNameLength {
		return fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidInput, maxVenueNameLength)
	}
	if strings.TrimSpace(address) == "" || utf8.RuneCountInString(address) > maxAddressLength {
		return fmt.Errorf("%w: address must be 1-%d characters", ErrInvalidInput, maxAddressLength)
	}
	if strings.TrimSpace(city) == "" || utf8.RuneCountInString(city) > maxCityLength {
		return fmt.Errorf("%w: city must be 1-%d characters", ErrInvalidInput, maxCityLength)
	}
	if len(phone) > maxPhoneLength {
		return fmt.Errorf("%w: phone is too long", ErrInvalidInput)
	}
	return nil
}

func validateCourt(c *domain.Court) error {
	if c.Name == "" || utf8.RuneCountInString(c.Name) > maxCourtNameLength {
		return fmt.Errorf("%w: name must be 1-%d characters", ErrInvalidInput, maxCourtNameLength)
	}
	if c.ExternalRef != nil && strings.TrimSpace(*c.ExternalRef) == "" {
		return fmt.Errorf("%w: externalRef must not be blank", ErrInvalidInput)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
