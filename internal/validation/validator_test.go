package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleArgs struct {
	StreamID int64    `json:"streamId" validate:"required,gt=0"`
	Message  string   `json:"message" validate:"required"`
	Count    int64    `json:"count" validate:"gte=0"`
	Options  []string `json:"options" validate:"omitempty,min=2"`
}

func TestStructReportsWireFieldName(t *testing.T) {
	v := New()

	err := v.Struct(sampleArgs{StreamID: 1, Message: ""})
	require.Error(t, err)

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "message", fieldErr.Field)
	assert.Equal(t, "must not be empty", fieldErr.Reason)
}

func TestStructReasonPerTag(t *testing.T) {
	v := New()

	cases := []struct {
		name   string
		args   sampleArgs
		field  string
		reason string
	}{
		{"missing stream id", sampleArgs{Message: "hi"}, "streamId", "must not be empty"},
		{"negative count", sampleArgs{StreamID: 1, Message: "hi", Count: -5}, "count", "must be at least 0"},
		{"too few options", sampleArgs{StreamID: 1, Message: "hi", Options: []string{"a"}}, "options", "must be at least 2"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := v.Struct(tc.args)
			require.Error(t, err)

			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, tc.field, fieldErr.Field)
			assert.Equal(t, tc.reason, fieldErr.Reason)
		})
	}
}

func TestStructValidInput(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(sampleArgs{StreamID: 1, Message: "hi"}))
}

func TestFieldErrorMessage(t *testing.T) {
	err := NewFieldError("streamId", "must be greater than 0")
	assert.Equal(t, "invalid streamId: must be greater than 0", err.Error())
}
