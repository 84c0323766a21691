package users

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-CourtBooking/internal/service/users/models"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // ограничение bcrypt
	maxNameLength     = 255
	maxPhoneLength    = 32
)

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return nil
}

func validateRegister(req *models.RegisterRequest) error {
	if err := validateEmail(req.Email); err != nil {
		return err
	}
	if len(req.Password) < minPasswordLength || len(req.Password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be %d-%d characters", ErrInvalidInput, minPasswordLength, maxPasswordLength)
	}
	if strings.TrimSpace(req.FullName) == "" {
		return fmt.Errorf("%w: fullName is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(req.FullName) > maxNameLength {
		return fmt.Errorf("%w: fullName is too long", ErrInvalidInput)
	}
	if req.Phone != nil && len(*req.Phone) > maxPhoneLength {
		return fmt.Errorf("%w: phone is too long", ErrInvalidInput)
	}
	return nil
}

func validateProfileUpdate(req *models.UpdateProfileRequest) error {
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" || utf8.RuneCountInString(name) > maxNameLength {
			return fmt.Errorf("%w: fullName must be 1-%d characters", ErrInvalidInput, maxNameLength)
		}
	}
	if req.Phone != nil && len(*req.Phone) > maxPhoneLength {
		return fmt.Errorf("%w: phone is too long", ErrInvalidInput)
	}
	return nil
}
