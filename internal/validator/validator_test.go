package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registerForm struct {
	Username string `json:"username" validate:"notblank,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(&registerForm{Username: "al", Email: "a@b.co", Password: "12345678"})
	assert.NoError(t, err)
}

func TestValidate_FieldsUseJSONNames(t *testing.T) {
	v := New()
	err := v.Validate(&registerForm{Username: "   ", Email: "nope", Password: "short"})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "This field is required", vErr.Errors["username"])
	assert.Equal(t, "Must be a valid email address", vErr.Errors["email"])
	assert.Equal(t, "Must be at least 8 characters long", vErr.Errors["password"])
	assert.Contains(t, err.Error(), "field 'email'")
}

func TestValidate_FormTagFallback(t *testing.T) {
	type postForm struct {
		Title string `form:"title" validate:"required,min=2"`
	}
	err := New().Validate(&postForm{Title: "x"})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "title")
}

func TestValidate_MaxBytes(t *testing.T) {
	type passwordForm struct {
		Password string  `json:"password" validate:"required,min=8,maxbytes=72"`
		Optional *string `json:"optional" validate:"omitempty,maxbytes=72"`
	}
	v := New()

	assert.NoError(t, v.Validate(&passwordForm{Password: strings.Repeat("a", 72)}))

	err := v.Validate(&passwordForm{Password: strings.Repeat("a", 73)})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Must be at most 72 bytes long", vErr.Errors["password"])

	// 25 рун по 3 байта: по рунам проходит, по байтам нет
	err = v.Validate(&passwordForm{Password: strings.Repeat("€", 25)})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "password")

	long := strings.Repeat("b", 80)
	err = v.Validate(&passwordForm{Password: "12345678", Optional: &long})
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Errors, "optional")
}
