package chat

import "context"

// Service is the persistence collaborator behind the chat hub. The hub only
// transports what this service has already accepted and stored.
type Service interface {
	// History returns the given page of a stream's messages, newest first.
	History(ctx context.Context, streamID int64, page, pageSize int) ([]Message, error)
	SaveMessage(ctx context.Context, req MessageRequest) (*Message, error)
	SaveReaction(ctx context.Context, streamID, userID int64, reaction ReactionType) (*Reaction, error)
	CreatePoll(ctx context.Context, req PollRequest) (*Poll, error)
	// Vote records a user's option choices on a poll.
	Vote(ctx context.Context, pollID, userID int64, optionIDs []int64) error
	// Poll fetches a poll with up-to-date vote counts; used after a vote to
	// discover the owning stream and rebroadcast current tallies.
	Poll(ctx context.Context, pollID int64) (*Poll, error)
	// PinMessage and DeleteMessage return the affected message including its
	// stream id so the hub can target the right group.
	PinMessage(ctx context.Context, messageID int64) (*Message, error)
	DeleteMessage(ctx context.Context, messageID int64) (*Message, error)
}
