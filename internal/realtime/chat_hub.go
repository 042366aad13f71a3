package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vidstream-live-public/internal/chat"
	"github.com/vidstream-live-public/pkg/logger"
)

// History replay served to a joining connection.
const (
	historyPage     = 1
	historyPageSize = 50
)

// ChatHub serves per-live-stream chat: history replay on join, message,
// reaction and poll broadcast, and moderation actions. Every method requires
// an authenticated caller.
type ChatHub struct {
	*Hub
	chats chat.Service
}

func NewChatHub(reg Registry, chats chat.Service, logg logger.Logger) *ChatHub {
	h := &ChatHub{Hub: NewHub("chat", reg, logg), chats: chats}

	h.Handle("JoinChat", h.joinChat, MethodOpts{RequireAuth: true, Failure: "Failed to join chat"})
	h.Handle("LeaveChat", h.leaveChat, MethodOpts{RequireAuth: true, Silent: true})
	h.Handle("SendMessage", h.sendMessage, MethodOpts{RequireAuth: true, Failure: "Failed to send message"})
	h.Handle("SendReaction", h.sendReaction, MethodOpts{RequireAuth: true, Failure: "Failed to send reaction"})
	h.Handle("CreatePoll", h.createPoll, MethodOpts{RequireAuth: true, Failure: "Failed to create poll"})
	h.Handle("VotePoll", h.votePoll, MethodOpts{RequireAuth: true, Failure: "Failed to vote"})
	h.Handle("PinMessage", h.pinMessage, MethodOpts{RequireAuth: true, Failure: "Failed to pin message"})
	h.Handle("DeleteMessage", h.deleteMessage, MethodOpts{RequireAuth: true, Failure: "Failed to delete message"})

	return h
}

type chatPresenceNotice struct {
	UserID    int64     `json:"userId"`
	StreamID  int64     `json:"streamId"`
	Timestamp time.Time `json:"timestamp"`
}

type joinChatArgs struct {
	StreamID int64 `json:"streamId" validate:"required,gt=0"`
}

func (h *ChatHub) joinChat(ctx context.Context, c *Caller, payload json.RawMessage) error {
	var args joinChatArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	// The join itself is not rolled back when the history fetch fails.
	h.JoinGroup(c, ChatGroup(args.StreamID))

	history, err := h.chats.History(ctx, args.StreamID, historyPage, historyPageSize)
	if err != nil {
		return err
	}
	h.SendToCaller(c, Event{Event: EventChatHistory, Payload: history})

	h.SendToGroup(ChatGroup(args.StreamID), Event{
		Event:   EventUserJoinedChat,
		Payload: chatPresenceNotice{UserID: c.UserID, StreamID: args.StreamID, Timestamp: time.Now().UTC()},
	})
	return nil
}

func (h *ChatHub) leaveChat(_ context.Context, c *Caller, payload json.RawMessage) error {
	var args joinChatArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	h.LeaveGroup(c, ChatGroup(args.StreamID))
	h.SendToGroup(ChatGroup(args.StreamID), Event{
		Event:   EventUserLeftChat,
		Payload: chatPresenceNotice{UserID: c.UserID, StreamID: args.StreamID, Timestamp: time.Now().UTC()},
	})
	return nil
}

type sendMessageArgs struct {
	StreamID    int64  `json:"streamId" validate:"required,gt=0"`
	Message     string `json:"message" validate:"required"`
	MessageType string `json:"messageType"`
	Emoji       string `json:"emoji"`
}

func (h *ChatHub) sendMessage(ctx context.Context, c *Caller, payload json.RawMessage) error {
	var args sendMessageArgs
	if err := decode(payload, &args); err != nil {
		return err
	}
	if args.MessageType == "" {
		args.MessageType = string(chat.MessageTypeText)
	}

	msgType, err := chat.ParseMessageType(args.MessageType)
	if err != nil {
		return err
	}

	msg, err := h.chats.SaveMessage(ctx, chat.MessageRequest{
		StreamID: args.StreamID,
		UserID:   c.UserID,
		Content:  args.Message,
		Type:     msgType,
		Emoji:    args.Emoji,
	})
	if err != nil {
		return err
	}

	h.SendToGroup(ChatGroup(args.StreamID), Event{Event: EventMessageReceived, Payload: msg})
	return nil
}

type sendReactionArgs struct {
	StreamID     int64  `json:"streamId" validate:"required,gt=0"`
	ReactionType string `json:"reactionType" validate:"required"`
}

func (h *ChatHub) sendReaction(ctx context.Context, c *Caller, payload json.RawMessage) error {
	var args sendReactionArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	reaction, err := chat.ParseReactionType(args.ReactionType)
	if err != nil {
		return err
	}

	saved, err := h.chats.SaveReaction(ctx, args.StreamID, c.UserID, reaction)
	if err != nil {
		return err
	}

	h.SendToGroup(ChatGroup(args.StreamID), Event{Event: EventReactionReceived, Payload: saved})
	return nil
}

type createPollArgs struct {
	StreamID             int64    `json:"streamId" validate:"required,gt=0"`
	Question             string   `json:"question" validate:"required"`
	Description          string   `json:"description"`
	Options              []string `json:"options" validate:"required,min=2,dive,required"`
	AllowMultipleChoices bool     `json:"allowMultipleChoices"`
}

func (h *ChatHub) createPoll(ctx context.Context, c *Caller, payload json.RawMessage) error {
	var args createPollArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	poll, err := h.chats.CreatePoll(ctx, chat.PollRequest{
		StreamID:             args.StreamID,
		CreatedBy:            c.UserID,
		Question:             args.Question,
		Description:          args.Description,
		Options:              args.Options,
		AllowMultipleChoices: args.AllowMultipleChoices,
	})
	if err != nil {
		return err
	}

	h.SendToGroup(ChatGroup(args.StreamID), Event{Event: EventPollCreated, Payload: poll})
	return nil
}

type votePollArgs struct {
	PollID    int64   `json:"pollId" validate:"required,gt=0"`
	OptionIDs []int64 `json:"optionIds" validate:"required,min=1"`
}

func (h *ChatHub) votePoll(ctx context.Context, c *Caller, payload json.RawMessage) error {
	var args votePollArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	if err := h.chats.Vote(ctx, args.PollID, c.UserID, args.OptionIDs); err != nil {
		return err
	}

	// Re-fetch to discover the owning stream and current tallies; the update
	// goes to the stream's chat group, not a poll-scoped group.
	poll, err := h.chats.Poll(ctx, args.PollID)
	if err != nil {
		return err
	}

	h.SendToGroup(ChatGroup(poll.StreamID), Event{Event: EventPollUpdated, Payload: poll})
	return nil
}

type messageRefArgs struct {
	MessageID int64 `json:"messageId" validate:"required,gt=0"`
}

func (h *ChatHub) pinMessage(ctx context.Context, c *Caller, payload json.RawMessage) error {
	var args messageRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	msg, err := h.chats.PinMessage(ctx, args.MessageID)
	if err != nil {
		return err
	}

	h.SendToGroup(ChatGroup(msg.StreamID), Event{Event: EventMessagePinned, Payload: msg})
	return nil
}

func (h *ChatHub) deleteMessage(ctx context.Context, c *Caller, payload json.RawMessage) error {
	var args messageRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	msg, err := h.chats.DeleteMessage(ctx, args.MessageID)
	if err != nil {
		return err
	}

	h.SendToGroup(ChatGroup(msg.StreamID), Event{Event: EventMessageDeleted, Payload: msg})
	return nil
}
