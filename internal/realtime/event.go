package realtime

// Event is a named server-to-client message. Delivery is at-most-once to
// whoever is subscribed at send time; there is no queuing or replay.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// Event names emitted by the chat hub.
const (
	EventError            = "Error"
	EventChatHistory      = "ChatHistory"
	EventUserJoinedChat   = "UserJoinedChat"
	EventUserLeftChat     = "UserLeftChat"
	EventMessageReceived  = "MessageReceived"
	EventReactionReceived = "ReactionReceived"
	EventPollCreated      = "PollCreated"
	EventPollUpdated      = "PollUpdated"
	EventMessagePinned    = "MessagePinned"
	EventMessageDeleted   = "MessageDeleted"
)

// Event names emitted by the live-stream hub.
const (
	EventViewerJoined         = "ViewerJoined"
	EventViewerLeft           = "ViewerLeft"
	EventStreamUpdateReceived = "StreamUpdateReceived"
	EventViewerCountUpdated   = "ViewerCountUpdated"
	EventSuperChatReceived    = "SuperChatReceived"
)

// Event names emitted by the notification hub.
const (
	EventReceiveNotification           = "ReceiveNotification"
	EventReceiveGlobalNotification     = "ReceiveGlobalNotification"
	EventSubscribedToNotifications     = "SubscribedToNotifications"
	EventUnsubscribedFromNotifications = "UnsubscribedFromNotifications"
)

// Event names emitted by the video hub.
const (
	EventReactionCountsUpdated  = "ReactionCountsUpdated"
	EventCommentCountUpdated    = "CommentCountUpdated"
	EventCommentReactionUpdated = "CommentReactionUpdated"
)

// errorPayload is the body of every Error event. Field and Reason are set only
// for validation failures.
type errorPayload struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason,omitempty"`
}
