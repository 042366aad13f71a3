package realtime

import (
	"context"
	"encoding/json"

	"github.com/vidstream-live-public/pkg/logger"
)

// VideoHub relays like/dislike/comment counters scoped to a video's group.
// Pure relay: no persistence, no authentication, symmetric join/leave.
type VideoHub struct {
	*Hub
}

func NewVideoHub(reg Registry, logg logger.Logger) *VideoHub {
	h := &VideoHub{Hub: NewHub("video", reg, logg)}

	h.Handle("JoinVideoGroup", h.join, MethodOpts{Failure: "Failed to join video group"})
	h.Handle("LeaveVideoGroup", h.leave, MethodOpts{Silent: true})
	h.Handle("UpdateReactionCounts", h.updateReactionCounts, MethodOpts{Failure: "Failed to update reaction counts"})
	h.Handle("UpdateCommentCount", h.updateCommentCount, MethodOpts{Failure: "Failed to update comment count"})
	h.Handle("UpdateCommentReactionCount", h.updateCommentReactionCount, MethodOpts{Failure: "Failed to update comment reaction count"})

	return h
}

type videoRefArgs struct {
	VideoID int64 `json:"videoId" validate:"required,gt=0"`
}

func (h *VideoHub) join(_ context.Context, c *Caller, payload json.RawMessage) error {
	var args videoRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}
	h.JoinGroup(c, VideoGroup(args.VideoID))
	return nil
}

func (h *VideoHub) leave(_ context.Context, c *Caller, payload json.RawMessage) error {
	var args videoRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}
	h.LeaveGroup(c, VideoGroup(args.VideoID))
	return nil
}

type reactionCountsArgs struct {
	VideoID  int64 `json:"videoId" validate:"required,gt=0"`
	Likes    int64 `json:"likes" validate:"gte=0"`
	Dislikes int64 `json:"dislikes" validate:"gte=0"`
}

func (h *VideoHub) updateReactionCounts(_ context.Context, _ *Caller, payload json.RawMessage) error {
	var args reactionCountsArgs
	if err := decode(payload, &args); err != nil {
		return err
	}
	h.SendToGroup(VideoGroup(args.VideoID), Event{Event: EventReactionCountsUpdated, Payload: args})
	return nil
}

type commentCountArgs struct {
	VideoID      int64 `json:"videoId" validate:"required,gt=0"`
	CommentCount int64 `json:"commentCount" validate:"gte=0"`
}

func (h *VideoHub) updateCommentCount(_ context.Context, _ *Caller, payload json.RawMessage) error {
	var args commentCountArgs
	if err := decode(payload, &args); err != nil {
		return err
	}
	h.SendToGroup(VideoGroup(args.VideoID), Event{Event: EventCommentCountUpdated, Payload: args})
	return nil
}

type commentReactionArgs struct {
	VideoID   int64 `json:"videoId" validate:"required,gt=0"`
	CommentID int64 `json:"commentId" validate:"required,gt=0"`
	Likes     int64 `json:"likes" validate:"gte=0"`
}

func (h *VideoHub) updateCommentReactionCount(_ context.Context, _ *Caller, payload json.RawMessage) error {
	var args commentReactionArgs
	if err := decode(payload, &args); err != nil {
		return err
	}
	h.SendToGroup(VideoGroup(args.VideoID), Event{Event: EventCommentReactionUpdated, Payload: args})
	return nil
}
