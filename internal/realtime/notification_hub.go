package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vidstream-live-public/pkg/logger"
)

// NotificationHub delivers direct-to-user and broadcast-to-all system
// notifications and manages topic group membership (user, invite, referral).
// It is the only hub with automatic membership tied to the connection
// lifecycle: authenticated connections join their own notification group on
// connect and leave it on disconnect.
type NotificationHub struct {
	*Hub
}

func NewNotificationHub(reg Registry, logg logger.Logger) *NotificationHub {
	h := &NotificationHub{Hub: NewHub("notifications", reg, logg)}

	h.Handle("SendNotificationToUser", h.sendToUser, MethodOpts{Failure: "Failed to send notification"})
	h.Handle("SendGlobalNotification", h.sendGlobal, MethodOpts{Failure: "Failed to send global notification"})
	h.Handle("SubscribeToNotifications", h.subscribe, MethodOpts{Failure: "Failed to subscribe to notifications"})
	h.Handle("UnsubscribeFromNotifications", h.unsubscribe, MethodOpts{Failure: "Failed to unsubscribe from notifications"})
	h.Handle("JoinUserGroup", h.joinUserGroup, MethodOpts{Failure: "Failed to join user group"})
	h.Handle("LeaveUserGroup", h.leaveUserGroup, MethodOpts{Silent: true})
	h.Handle("JoinInviteGroup", h.joinInviteGroup, MethodOpts{Failure: "Failed to join invite group"})
	h.Handle("LeaveInviteGroup", h.leaveInviteGroup, MethodOpts{Silent: true})
	h.Handle("JoinReferralGroup", h.joinReferralGroup, MethodOpts{Failure: "Failed to join referral group"})
	h.Handle("LeaveReferralGroup", h.leaveReferralGroup, MethodOpts{Silent: true})

	h.OnConnect(func(c *Caller) {
		if c.Authenticated() {
			h.JoinGroup(c, UserNotificationsGroup(c.UserID))
		}
	})
	h.OnDisconnect(func(c *Caller) {
		if c.Authenticated() {
			h.LeaveGroup(c, UserNotificationsGroup(c.UserID))
		}
	})

	return h
}

type notification struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type userNotificationArgs struct {
	UserID  int64  `json:"userId" validate:"required,gt=0"`
	Message string `json:"message" validate:"required"`
}

func (h *NotificationHub) sendToUser(_ context.Context, _ *Caller, payload json.RawMessage) error {
	var args userNotificationArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	// A user-targeted send, not a group broadcast: every connection bound to
	// the logical user receives it.
	h.SendToUser(args.UserID, Event{
		Event:   EventReceiveNotification,
		Payload: notification{Message: args.Message, Timestamp: time.Now().UTC()},
	})
	return nil
}

type globalNotificationArgs struct {
	Message string `json:"message" validate:"required"`
}

func (h *NotificationHub) sendGlobal(_ context.Context, _ *Caller, payload json.RawMessage) error {
	var args globalNotificationArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	h.SendToAll(Event{
		Event:   EventReceiveGlobalNotification,
		Payload: notification{Message: args.Message, Timestamp: time.Now().UTC()},
	})
	return nil
}

type userRefArgs struct {
	UserID int64 `json:"userId" validate:"required,gt=0"`
}

func (h *NotificationHub) subscribe(_ context.Context, c *Caller, payload json.RawMessage) error {
	var args userRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	h.JoinGroup(c, UserNotificationsGroup(args.UserID))
	h.SendToCaller(c, Event{Event: EventSubscribedToNotifications, Payload: args})
	return nil
}

func (h *NotificationHub) unsubscribe(_ context.Context, c *Caller, payload json.RawMessage) error {
	var args userRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	h.LeaveGroup(c, UserNotificationsGroup(args.UserID))
	h.SendToCaller(c, Event{Event: EventUnsubscribedFromNotifications, Payload: args})
	return nil
}

func (h *NotificationHub) joinUserGroup(_ context.Context, c *Caller, payload json.RawMessage) error {
	var args userRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}
	h.JoinGroup(c, UserGroup(args.UserID))
	return nil
}

func (h *NotificationHub) leaveUserGroup(_ context.Context, c *Caller, payload json.RawMessage) error {
	var args userRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}
	h.LeaveGroup(c, UserGroup(args.UserID))
	return nil
}

type inviteRefArgs struct {
	InviteID int64 `json:"inviteId" validate:"required,gt=0"`
}

func (h *NotificationHub) joinInviteGroup(_ context.Context, c *Caller, payload json.RawMessage) error {
	var args inviteRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}
	h.JoinGroup(c, InviteGroup(args.InviteID))
	return nil
}

func (h *NotificationHub) leaveInviteGroup(_ context.Context, c *Caller, payload json.RawMessage) error {
	var args inviteRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}
	h.LeaveGroup(c, InviteGroup(args.InviteID))
	return nil
}

type referralRefArgs struct {
	ReferralID int64 `json:"referralId" validate:"required,gt=0"`
}

func (h *NotificationHub) joinReferralGroup(_ context.Context, c *Caller, payload json.RawMessage) error {
	var args referralRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}
	h.JoinGroup(c, ReferralGroup(args.ReferralID))
	return nil
}

func (h *NotificationHub) leaveReferralGroup(_ context.Context, c *Caller, payload json.RawMessage) error {
	var args referralRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}
	h.LeaveGroup(c, ReferralGroup(args.ReferralID))
	return nil
}
