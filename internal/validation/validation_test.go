package validation_test

import (
	"testing"

	"github.com/Sanalemba991/digiallink-sa/internal/validation"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string `validate:"required"`
	Email string `validate:"required,emailshape"`
}

func TestEmailPattern(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"first.last@sub.example.co", true},
		{"a@b.c", true},
		{"user@example", false},
		{"user example@example.com", false},
		{"@example.com", false},
		{"user@@example.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.valid, validation.EmailPattern.MatchString(tt.email))
		})
	}
}

func TestNew_RequiredBeforeShape(t *testing.T) {
	v := validation.New()

	err := v.Struct(sample{Name: "", Email: "user@example.com"})
	assert.True(t, validation.HasTag(err, "required"))
	assert.False(t, validation.HasTag(err, "emailshape"))

	err = v.Struct(sample{Name: "Jane", Email: "not-an-email"})
	assert.False(t, validation.HasTag(err, "required"))
	assert.True(t, validation.HasTag(err, "emailshape"))

	field, tag := validation.FailedTag(err)
	assert.Equal(t, "Email", field)
	assert.Equal(t, "emailshape", tag)

	assert.NoError(t, v.Struct(sample{Name: "Jane", Email: "jane@example.com"}))
}

func TestHasTag_NonValidationError(t *testing.T) {
	assert.False(t, validation.HasTag(nil, "required"))
	field, tag := validation.FailedTag(nil)
	assert.Empty(t, field)
	assert.Empty(t, tag)
}
