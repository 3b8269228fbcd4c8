// Package validation checks configuration structs against their `validate`
// tags and reports failures as field-level validation errors.
package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/agentstation/datastory/pkg/errors"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their mapstructure key so messages match the
		// config file and flags.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v. Every failing field becomes a *errors.ValidationError;
// several failures are joined.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return errors.WrapValidation("config", err)
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &errors.ValidationError{
			Field:   fe.Field(),
			Value:   fe.Value(),
			Message: message(fe),
		})
	}
	return stderrors.Join(out...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	case "required_if":
		return fmt.Sprintf("is required when %s", fe.Param())
	case "hostname_rfc1123", "ip", "hostname|ip":
		return "must be a host name or IP address"
	}
	return fmt.Sprintf("failed the %q check", fe.Tag())
}
