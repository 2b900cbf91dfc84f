package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gmubooktrading/api/internal/api/shared"
	"github.com/gmubooktrading/api/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Validator checks request models against their struct tags. It knows the
// institution's email domain for the campus_email rule.
type Validator struct {
	validate    *validator.Validate
	emailDomain string
}

// NewValidator creates a Validator for emailDomain (for example "gmu.edu").
func NewValidator(emailDomain string) *Validator {
	v := &Validator{
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		emailDomain: strings.TrimPrefix(strings.ToLower(emailDomain), "@"),
	}

	// Report JSON field names so clients can map details onto their payloads.
	v.validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v.validate, "campus_email", func(fl validator.FieldLevel) bool {
		return domain.ValidateCampusEmail(fl.Field().String(), v.emailDomain) == nil
	})
	mustRegister(v.validate, "rent_unit", func(fl validator.FieldLevel) bool {
		return domain.IsValidRentUnit(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		// ALLOW-PANIC: registration only fails on programmer error
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// normalizer is implemented by request models that canonicalize their
// fields (trimming, lower-casing emails) before validation.
type normalizer interface {
	Normalize()
}

// Check normalizes req when it supports it and validates it. It returns nil
// when every constraint holds.
func (v *Validator) Check(req any) []shared.FieldError {
	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}

	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []shared.FieldError{{Field: "body", Message: "invalid request"}}
	}

	details := make([]shared.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, shared.FieldError{
			Field:   fieldPath(fe),
			Message: v.message(fe),
		})
	}
	return details
}

// fieldPath drops the struct name from the namespace, leaving the JSON path
// such as "images[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func (v *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return fmt.Sprintf("is required when %s is not provided", toSnake(fe.Param()))
	case "required_if":
		return "is required for rent listings"
	case "campus_email":
		return fmt.Sprintf("must be a valid @%s email address", v.emailDomain)
	case "rent_unit":
		return domain.ErrInvalidRentUnit.Error()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "http_url", "url":
		return domain.ErrInvalidImageURL.Error()
	case "gt":
		return "must be greater than " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return "must be at most " + fe.Param()
	default:
		return "is invalid"
	}
}

// toSnake converts a Go field name used in a tag parameter to its JSON name.
func toSnake(name string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range name {
		upper := r >= 'A' && r <= 'Z'
		if upper {
			if prevLower {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		prevLower = !upper
		b.WriteRune(r)
	}
	return b.String()
}

// validationDetails converts a domain validation error into response details.
func validationDetails(err error) ([]shared.FieldError, bool) {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return nil, false
	}
	return []shared.FieldError{{Field: ve.Field, Message: ve.Message}}, true
}
