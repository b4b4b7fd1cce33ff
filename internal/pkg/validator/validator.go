package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Details flattens a binding or validation error into field -> failed tag.
// Returns nil when err carries no field errors (e.g. malformed JSON).
func Details(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}
