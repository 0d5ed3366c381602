package validator

import (
	"errors"
	"strings"

	val "github.com/go-playground/validator/v10"
)

var messages = map[string]string{
	"required":    "{field} is required",
	"gte":         "{field} must be greater than or equal to {param}",
	"lte":         "{field} must be less than or equal to {param}",
	"oneof":       "{field} must be one of {param}",
	"max":         "{field} must be less than or equal to {param}",
	"min":         "{field} must be greater than or equal to {param}",
	"email":       "{field} must be a valid email address",
	"uuid":        "{field} must be a valid UUID",
	"datetime":    "{field} must match the format {param}",
	"url":         "{field} must be a valid URL",
	"len":         "{field} must have length {param}",
	"mimetypes":   "{field} must be one of {param}",
	"maxfilesize": "{field} must not exceed {param} MB",
}

// message renders the first failed rule that has a template; unknown rules fall back to
// the library text.
func message(err error) string {
	var errs val.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	for _, fieldErr := range errs {
		template, ok := messages[fieldErr.Tag()]
		if !ok {
			continue
		}

		return strings.NewReplacer("{field}", fieldErr.Field(), "{param}", fieldErr.Param()).Replace(template)
	}

	return errs.Error()
}
