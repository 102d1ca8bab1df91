package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/devcamper/devcamper-api/internal/shared"
)

// Validator wraps go-playground/validator and reports failures as
// ErrValidation with messages keyed by JSON field name.
type Validator struct {
	validate *validator.Validate
}

// NewValidator constructs a Validator.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct validates s.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return shared.Wrap(shared.ErrValidation, err, strings.Join(msgs, ", "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Please add a %s", field)
	case "email":
		return "Please add a valid email"
	case "url":
		return fmt.Sprintf("Please use a valid URL for %s", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s can not be more than %s characters", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// Bind decodes the JSON body into dst and validates it. On failure the error
// response is already written and false is returned.
func (v *Validator) Bind(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := DecodeJSON(r, dst); err != nil {
		RespondError(w, err)
		return false
	}
	if err := v.Struct(dst); err != nil {
		RespondError(w, err)
		return false
	}
	return true
}
