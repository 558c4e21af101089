// pkg/validator/validator.go
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their wire name: form tag first, then json.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	registerCustomValidators()
}

func registerCustomValidators() {
	validate.RegisterValidation("simpleemail", func(fl validator.FieldLevel) bool {
		return ValidateEmail(fl.Field().String()) == nil
	})

	validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// ValidateStruct runs tag validation and converts the first failure into an
// *Error so callers see one error type.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return newError(CodeRequired, fe.Field(), fmt.Sprintf("%s is required", fe.Field()))
	case "max":
		return newError(CodeInvalidFormat, fe.Field(), fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
	case "simpleemail":
		return newError(CodeInvalidFormat, fe.Field(), "Invalid email format")
	default:
		return newError(CodeInvalidFormat, fe.Field(), fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
