package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "aegis/pkg/domain-errors"
	s "aegis/pkg/string"
)

var (
	usernamePattern    = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,30}$`)
	fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("fingerprint", func(fl validator.FieldLevel) bool {
		return fingerprintPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate validates a struct using the default validator and returns a domain error
func Validate(req any) error {
	if err := defaultValidator.Struct(req); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// Var validates a single value against a tag expression, naming it field in
// the resulting message.
func Var(field string, value any, tag string) error {
	if err := defaultValidator.Var(value, tag); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
			return dErrors.New(dErrors.CodeValidation, message(field, validationErrs[0]))
		}
		return dErrors.New(dErrors.CodeValidation, field+" is invalid")
	}
	return nil
}

// IP validates an IP address literal (v4 or v6).
func IP(ip string) error {
	return Var("ip", ip, "required,ip")
}

// Username validates a login name: 3-30 letters, digits, underscores or hyphens.
func Username(username string) error {
	return Var("username", username, "required,username")
}

// Fingerprint validates a device fingerprint: a lowercase hex SHA-256 digest.
func Fingerprint(fp string) error {
	return Var("fingerprint", fp, "required,fingerprint")
}

// ErrorMessage converts a validator error into a human-readable message
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request"
	}

	fe := validationErrs[0]
	fieldName := fe.Field()
	if fieldName == "" {
		fieldName = fe.StructField()
	}
	return message(s.ToSnakeCase(fieldName), fe)
}

func message(field string, fe validator.FieldError) string {
	switch fe.ActualTag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "ip":
		return fmt.Sprintf("%s must be a valid IP address", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid uuid", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "username":
		return fmt.Sprintf("%s must be 3-30 characters of letters, numbers, underscores or hyphens", field)
	case "fingerprint":
		return fmt.Sprintf("%s must be a 64 character hex digest", field)
	default:
		if field == "" {
			return "invalid request"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}
