package realtime

import "fmt"

// Group name constructors. The prefixes are part of the wire contract: the
// same numeric id must map to distinct groups per entity type
// (chat_123, stream_123 and Video_123 never collide).

func ChatGroup(streamID int64) string { return fmt.Sprintf("chat_%d", streamID) }

func StreamGroup(streamID int64) string { return fmt.Sprintf("stream_%d", streamID) }

func VideoGroup(videoID int64) string { return fmt.Sprintf("Video_%d", videoID) }

func UserGroup(userID int64) string { return fmt.Sprintf("user_%d", userID) }

func UserNotificationsGroup(userID int64) string {
	return fmt.Sprintf("user_%d_notifications", userID)
}

func InviteGroup(inviteID int64) string { return fmt.Sprintf("invite_%d", inviteID) }

func ReferralGroup(referralID int64) string { return fmt.Sprintf("referral_%d", referralID) }
