package validation

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FieldError is one failed rule with a stable machine-readable code so
// clients can map it to a form field without parsing English.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks struct tags and returns every failed field. Nil means
// the value passed; validation always fails closed on rule errors.
func Validate(s interface{}) []FieldError {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "", Code: "INVALID_INPUT", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   snakeCase(fe.Field()),
			Code:    codeFor(fe),
			Message: messageFor(fe),
		})
	}
	return out
}

func codeFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "REQUIRED"
	case "email":
		return "INVALID_EMAIL"
	case "len", "numeric":
		if strings.EqualFold(fe.Field(), "phone") {
			return "INVALID_PHONE"
		}
		return "INVALID_FORMAT"
	case "min", "max":
		return "OUT_OF_RANGE"
	case "oneof":
		return "INVALID_CHOICE"
	default:
		return "INVALID_INPUT"
	}
}

func messageFor(fe validator.FieldError) string {
	field := snakeCase(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "len":
		return field + " must be exactly " + fe.Param() + " characters"
	case "numeric":
		return field + " must contain digits only"
	case "min":
		return field + " must be at least " + fe.Param()
	case "max":
		return field + " must be at most " + fe.Param()
	case "oneof":
		return field + " must be one of: " + fe.Param()
	default:
		return field + " is invalid"
	}
}

func snakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
