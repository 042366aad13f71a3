package chat

import (
	"time"

	"github.com/vidstream-live-public/internal/validation"
)

// MessageType enumerates the kinds of chat message a stream chat accepts.
type MessageType string

const (
	MessageTypeText    MessageType = "Text"
	MessageTypeEmoji   MessageType = "Emoji"
	MessageTypeSticker MessageType = "Sticker"
	MessageTypeSystem  MessageType = "System"
)

// ParseMessageType maps the string-typed client input onto the enumeration.
// Unknown values come back as a field error naming the offending input.
func ParseMessageType(s string) (MessageType, error) {
	switch MessageType(s) {
	case MessageTypeText, MessageTypeEmoji, MessageTypeSticker, MessageTypeSystem:
		return MessageType(s), nil
	default:
		return "", validation.NewFieldError("messageType", "unrecognized message type "+s)
	}
}

// ReactionType enumerates stream chat reactions.
type ReactionType string

const (
	ReactionLike  ReactionType = "Like"
	ReactionLove  ReactionType = "Love"
	ReactionLaugh ReactionType = "Laugh"
	ReactionWow   ReactionType = "Wow"
	ReactionSad   ReactionType = "Sad"
	ReactionAngry ReactionType = "Angry"
)

func ParseReactionType(s string) (ReactionType, error) {
	switch ReactionType(s) {
	case ReactionLike, ReactionLove, ReactionLaugh, ReactionWow, ReactionSad, ReactionAngry:
		return ReactionType(s), nil
	default:
		return "", validation.NewFieldError("reactionType", "unrecognized reaction type "+s)
	}
}

// Message is a persisted chat message as returned to clients.
type Message struct {
	ID        int64       `json:"id"`
	StreamID  int64       `json:"streamId"`
	UserID    int64       `json:"userId"`
	Content   string      `json:"content"`
	Type      MessageType `json:"messageType"`
	Emoji     string      `json:"emoji,omitempty"`
	Pinned    bool        `json:"pinned"`
	Deleted   bool        `json:"deleted"`
	CreatedAt time.Time   `json:"createdAt"`
}

// MessageRequest carries an already-validated message into the store.
type MessageRequest struct {
	StreamID int64
	UserID   int64
	Content  string
	Type     MessageType
	Emoji    string
}

// Reaction is a persisted stream chat reaction.
type Reaction struct {
	ID        int64        `json:"id"`
	StreamID  int64        `json:"streamId"`
	UserID    int64        `json:"userId"`
	Type      ReactionType `json:"reactionType"`
	CreatedAt time.Time    `json:"createdAt"`
}

// Poll is a stream chat poll together with its options and vote counts.
type Poll struct {
	ID                   int64        `json:"id"`
	StreamID             int64        `json:"streamId"`
	CreatedBy            int64        `json:"createdBy"`
	Question             string       `json:"question"`
	Description          string       `json:"description,omitempty"`
	AllowMultipleChoices bool         `json:"allowMultipleChoices"`
	Options              []PollOption `json:"options"`
	CreatedAt            time.Time    `json:"createdAt"`
}

type PollOption struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Position int    `json:"position"`
	Votes    int64  `json:"votes"`
}

// PollRequest carries a new poll into the store.
type PollRequest struct {
	StreamID             int64
	CreatedBy            int64
	Question             string
	Description          string
	Options              []string
	AllowMultipleChoices bool
}
