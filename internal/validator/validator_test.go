package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Q        string `query:"q" validate:"required,max=5"`
	Order    string `query:"order" validate:"omitempty,oneof=asc desc"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
	Confirm  string `json:"confirmPassword" validate:"omitempty,eqfield=Password"`
	Internal int    `validate:"min=0"`
}

func TestValidate_Valid(t *testing.T) {
	v := New()

	err := v.Validate(&sample{Q: "love", Order: "asc", Email: "a@b.co", Password: "x", Confirm: "x"})
	assert.NoError(t, err)
}

func TestValidate_WireFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(&sample{Q: "", Order: "up", Internal: -1})
	require.Error(t, err)

	errs, ok := err.(ValidationErrors)
	require.True(t, ok)

	fields := make([]string, 0, len(errs))
	for _, e := range errs {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"q", "order", "Internal"}, fields)
	assert.Contains(t, err.Error(), "q is required")
	assert.Contains(t, err.Error(), "order must be one of: asc desc")
}

func TestValidate_MessagesAndRedaction(t *testing.T) {
	v := New()

	err := v.Validate(&sample{Q: "ok", Email: "not-an-email", Password: "secret1", Confirm: "secret2"})
	require.Error(t, err)

	errs := err.(ValidationErrors)
	require.Len(t, errs, 2)

	for _, e := range errs {
		switch e.Field {
		case "email":
			assert.Equal(t, "email must be a valid email address", e.Message)
			assert.Equal(t, "not-an-email", e.Value)
		case "confirmPassword":
			assert.Equal(t, "confirmPassword must match password", e.Message)
			assert.Empty(t, e.Value, "password values must not be echoed")
		default:
			t.Fatalf("unexpected field %q", e.Field)
		}
	}
}
