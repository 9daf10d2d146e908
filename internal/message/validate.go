package message

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the payload of m against its struct tags. It returns a
// *ValidationError naming the first offending field, or nil.
func Validate(m Message) error {
	if m == nil {
		return &ValidationError{Field: "type", Reason: "missing message"}
	}
	if _, ok := m.(Unknown); ok {
		return nil
	}

	err := validate.Struct(m)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{
			Type:   m.MessageType(),
			Field:  fe.Field(),
			Reason: reason(fe),
		}
	}
	return &ValidationError{Type: m.MessageType(), Field: "payload", Reason: err.Error()}
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must not be empty"
	default:
		return "failed " + fe.Tag()
	}
}
