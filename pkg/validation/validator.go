// Package validation validates request payloads and strips markup from
// free-text input.
package validation

import (
	"fmt"
	"html"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Aidin1998/pricecatalog/pkg/errors"
)

// Validator wraps go-playground/validator with a strict HTML sanitizer.
type Validator struct {
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	logger    *zap.Logger
}

// NewValidator creates a validator reporting JSON field names.
func NewValidator(logger *zap.Logger) *Validator {
	v := &Validator{
		validate:  validator.New(),
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger,
	}
	Configure(v.validate)
	return v
}

// Configure registers the tag name and decimal type functions on validate.
// gin's binding engine is configured with it too so both report alike.
func Configure(validate *validator.Validate) {
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
}

// ValidateStruct validates s using its struct tags. Failures are returned
// as an InvalidInput error listing every rejected field.
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return FromValidationError(err)
}

// FromValidationError converts validator failures to an InvalidInput
// error; other errors pass through unchanged.
func FromValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]errors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, errors.FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: errorMessage(fe),
		})
	}
	return errors.InvalidInput.WithFields(fields)
}

// SanitizeName strips markup and surrounding whitespace from a name.
// Entities escaped by the sanitizer are decoded again so "H&M" survives.
func (v *Validator) SanitizeName(input string) string {
	if input == "" {
		return input
	}
	sanitized := html.UnescapeString(v.sanitizer.Sanitize(input))
	if sanitized != input {
		v.logger.Debug("markup removed from input", zap.String("input", input))
	}
	return strings.TrimSpace(sanitized)
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on %s validation", fe.Field(), fe.Tag())
	}
}
