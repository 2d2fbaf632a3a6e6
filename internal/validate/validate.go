// Package validate wraps a shared go-playground validator and converts its
// failures into INVALID_CONFIG errors named by the parameter's file key.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

// validate is a singleton validator instance.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	// Report fields by the key users write in parameter files.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// Struct validates s against its `validate` tags and returns the first
// failure as an INVALID_CONFIG error.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return gerrors.Wrap(gerrors.ErrCodeInternal, err, "validate")
	}
	return format(verrs[0])
}

func format(e validator.FieldError) error {
	field, param := e.Field(), e.Param()
	switch e.Tag() {
	case "required":
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "%s is required", field)
	case "min", "gte":
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "%s must be >= %s, got %v", field, param, e.Value())
	case "gt":
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "%s must be > %s, got %v", field, param, e.Value())
	case "lt":
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "%s must be < %s, got %v", field, param, e.Value())
	case "max", "lte":
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "%s must be <= %s, got %v", field, param, e.Value())
	case "oneof":
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "%s must be one of [%s], got %v", field, param, e.Value())
	default:
		return gerrors.New(gerrors.ErrCodeInvalidConfig, "%s: validation failed (%s)", field, e.Tag())
	}
}
