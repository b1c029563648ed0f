package validators

import (
	"traffic-rollup/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	// TagResolution accepts a window resolution name such as "hour".
	TagResolution = "resolution"
)

type Validate = validator.Validate

type ValidationErrors = validator.ValidationErrors

type FieldError = validator.FieldError

// New returns a validator with the domain tags registered.
func New() *Validate {
	validate := validator.New()
	// Registration only fails on an empty tag or nil func.
	_ = validate.RegisterValidation(TagResolution, isResolution)
	return validate
}

func isResolution(fl validator.FieldLevel) bool {
	_, err := models.ParseResolution(fl.Field().String())
	return err == nil
}
