package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	instance *validator.Validate
	once     sync.Once
)

var partyIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]{0,127}$`)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		_ = instance.RegisterValidation("party_id", func(fl validator.FieldLevel) bool {
			return partyIDPattern.MatchString(fl.Field().String())
		})
	})
	return instance
}

// Struct validates s against its `validate` tags and flattens the
// failures into a single readable error.
func Struct(s interface{}) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}
	parts := make([]string, 0, len(errs))
	for _, fe := range errs {
		parts = append(parts, describe(fe))
	}
	return fmt.Errorf("%s", strings.Join(parts, "; "))
}

// PartyID reports whether id is a well-formed party or entity identifier.
func PartyID(id string) bool {
	return get().Var(id, "required,party_id") == nil
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "datetime":
		return fmt.Sprintf("%s must match layout %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be an absolute url", field)
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "party_id":
		return fmt.Sprintf("%s is not a valid identifier", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
