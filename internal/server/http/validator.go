package http

import (
	"github.com/go-playground/validator/v10"

	"github.com/routedash/routedash/pkg/errorbank"
)

// requestValidator adapts go-playground/validator to echo's Validator
// interface, turning tag violations into bad request errors.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	return &requestValidator{validate: validator.New()}
}

func (v *requestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return errorbank.BadRequest("invalid request payload",
			errorbank.WithDetail("validation", err.Error()),
			errorbank.WithCause(err))
	}
	return nil
}
