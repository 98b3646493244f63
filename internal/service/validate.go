package service

import (
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/sakif/newsdesk/internal/apperror"
)

// asValidationError converts an ozzo-validation result into the application's
// error taxonomy. When several fields fail, the alphabetically first one is
// reported so the error is deterministic.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}

	verrs, ok := err.(validation.Errors)
	if !ok {
		return apperror.ValidationFailed("", err.Error())
	}

	fields := make([]string, 0, len(verrs))
	for field := range verrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	field := fields[0]
	return apperror.ValidationFailed(field, field+": "+verrs[field].Error())
}
