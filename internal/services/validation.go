package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/terraincognita07/miffy/internal/models"
	"github.com/terraincognita07/miffy/internal/schedule"
)

var ErrInvalidInput = errors.New("invalid input")

var (
	inputValidator     *validator.Validate
	inputValidatorOnce sync.Once
)

func validate() *validator.Validate {
	inputValidatorOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("clocktime", func(fl validator.FieldLevel) bool {
			return schedule.ValidClockTime(fl.Field().String())
		})
		_ = v.RegisterValidation("medcolor", func(fl validator.FieldLevel) bool {
			return models.IsMedicationColor(fl.Field().String())
		})
		inputValidator = v
	})
	return inputValidator
}

// validateInput checks struct tags and reports the first failing field in
// the wrapped ErrInvalidInput.
func validateInput(input any) error {
	err := validate().Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		first := fieldErrors[0]
		return fmt.Errorf("%w: %s failed %s", ErrInvalidInput, first.Field(), first.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidInput, err)
}
