package chat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream-live-public/internal/validation"
)

func TestParseMessageType(t *testing.T) {
	for _, valid := range []string{"Text", "Emoji", "Sticker", "System"} {
		mt, err := ParseMessageType(valid)
		require.NoError(t, err)
		assert.Equal(t, MessageType(valid), mt)
	}

	_, err := ParseMessageType("text")
	require.Error(t, err, "matching is case sensitive")

	var fieldErr *validation.FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "messageType", fieldErr.Field)
}

func TestParseReactionType(t *testing.T) {
	for _, valid := range []string{"Like", "Love", "Laugh", "Wow", "Sad", "Angry"} {
		rt, err := ParseReactionType(valid)
		require.NoError(t, err)
		assert.Equal(t, ReactionType(valid), rt)
	}

	_, err := ParseReactionType("Dislike")
	require.Error(t, err)

	var fieldErr *validation.FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "reactionType", fieldErr.Field)
	assert.Contains(t, fieldErr.Reason, "Dislike")
}
