package validator

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type signinForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

func TestDetails(t *testing.T) {
	validate := validator.New()

	assert.Nil(t, Details(validate.Struct(signinForm{Email: "a@x.com", Password: "p1"})))

	details := Details(validate.Struct(signinForm{Email: "nope"}))
	assert.Equal(t, map[string]string{"Email": "email", "Password": "required"}, details)
}

func TestDetails_NonValidationError(t *testing.T) {
	assert.Nil(t, Details(errors.New("unexpected EOF")))
	assert.Nil(t, Details(nil))
}
