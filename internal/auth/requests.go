package auth

import (
	"errors"
	"fmt"
	"strings"

	"mcq-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r LoginRequest) Validate() error {
	return validationError(validate.Struct(r))
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r SignupRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	return validationError(validate.Struct(r))
}

// validationError turns validator output into an ErrInvalidInput naming the
// first failing field.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("%w: %s is required", domain.ErrInvalidInput, field)
		case "email":
			return fmt.Errorf("%w: %s must be a valid email", domain.ErrInvalidInput, field)
		case "min":
			return fmt.Errorf("%w: %s must be at least %s characters", domain.ErrInvalidInput, field, fe.Param())
		case "max":
			return fmt.Errorf("%w: %s must be at most %s characters", domain.ErrInvalidInput, field, fe.Param())
		}
		return fmt.Errorf("%w: %s is invalid", domain.ErrInvalidInput, field)
	}
	return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
}
