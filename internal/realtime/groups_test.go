package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupNames(t *testing.T) {
	assert.Equal(t, "chat_123", ChatGroup(123))
	assert.Equal(t, "stream_123", StreamGroup(123))
	assert.Equal(t, "Video_123", VideoGroup(123))
	assert.Equal(t, "user_123", UserGroup(123))
	assert.Equal(t, "user_123_notifications", UserNotificationsGroup(123))
	assert.Equal(t, "invite_123", InviteGroup(123))
	assert.Equal(t, "referral_123", ReferralGroup(123))
}

// The same numeric id must never land two entity types in the same group.
func TestGroupNamesCollisionFree(t *testing.T) {
	id := int64(123)
	names := []string{
		ChatGroup(id),
		StreamGroup(id),
		VideoGroup(id),
		UserGroup(id),
		UserNotificationsGroup(id),
		InviteGroup(id),
		ReferralGroup(id),
	}

	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		_, dup := seen[name]
		assert.False(t, dup, "duplicate group name %q", name)
		seen[name] = struct{}{}
	}
}
