package domain

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrUnknownVariant  = errors.New("unknown product variant")
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-()]{8,}$`)
)

// FieldError names the offending field (by its JSON name) and why it failed.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+" "+fe.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field is among the failures.
func (v ValidationErrors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("email_address", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	return v
}

func IsEmail(s string) bool { return emailPattern.MatchString(s) }

func IsPhone(s string) bool { return phonePattern.MatchString(s) }

func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldPath(fe.Namespace()), Reason: reason(fe)})
	}
	return out
}

// fieldPath turns "ShippingInfo.Customer.email" into "email" and
// "ExchangeRequest.oldItem.sku" into "oldItem.sku": the struct name and
// embedded (untagged) struct names are dropped.
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		if i == 0 || p == "" || unicode.IsUpper(rune(p[0])) {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email_address":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
