package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/vidstream-live-public/pkg/logger"
)

// ViewerTracker maintains per-stream viewer counts across nodes.
type ViewerTracker interface {
	Join(ctx context.Context, streamID int64) (int64, error)
	Leave(ctx context.Context, streamID int64) (int64, error)
}

// StreamHub relays live-stream events: viewer join/leave notices, stream
// updates, viewer-count pushes and super-chat monetization payloads. It is a
// trusted relay: callers are not authenticated and opaque payloads are not
// schema-validated.
type StreamHub struct {
	*Hub
	tracker ViewerTracker

	mu     sync.Mutex
	joined map[string]map[int64]struct{} // connID -> streamIDs, for counter cleanup
}

// NewStreamHub builds the hub; tracker may be nil, which disables automatic
// viewer-count pushes.
func NewStreamHub(reg Registry, tracker ViewerTracker, logg logger.Logger) *StreamHub {
	h := &StreamHub{
		Hub:     NewHub("stream", reg, logg),
		tracker: tracker,
		joined:  make(map[string]map[int64]struct{}),
	}

	h.Handle("JoinStream", h.joinStream, MethodOpts{Failure: "Failed to join stream"})
	h.Handle("LeaveStream", h.leaveStream, MethodOpts{Silent: true})
	h.Handle("SendStreamUpdate", h.sendStreamUpdate, MethodOpts{Failure: "Failed to send stream update"})
	h.Handle("UpdateViewerCount", h.updateViewerCount, MethodOpts{Failure: "Failed to update viewer count"})
	h.Handle("SendSuperChat", h.sendSuperChat, MethodOpts{Failure: "Failed to send super chat"})

	h.OnDisconnect(h.cleanupViewer)
	return h
}

type streamViewerNotice struct {
	StreamID  int64     `json:"streamId"`
	Timestamp time.Time `json:"timestamp"`
}

type viewerCountNotice struct {
	StreamID    int64 `json:"streamId"`
	ViewerCount int64 `json:"viewerCount"`
}

type streamRefArgs struct {
	StreamID int64 `json:"streamId" validate:"required,gt=0"`
}

func (h *StreamHub) joinStream(ctx context.Context, c *Caller, payload json.RawMessage) error {
	var args streamRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	h.JoinGroup(c, StreamGroup(args.StreamID))
	h.markJoined(c.ConnID, args.StreamID)
	h.SendToGroup(StreamGroup(args.StreamID), Event{
		Event:   EventViewerJoined,
		Payload: streamViewerNotice{StreamID: args.StreamID, Timestamp: time.Now().UTC()},
	})

	if h.tracker != nil {
		count, err := h.tracker.Join(ctx, args.StreamID)
		if err != nil {
			return err
		}
		h.SendToGroup(StreamGroup(args.StreamID), Event{
			Event:   EventViewerCountUpdated,
			Payload: viewerCountNotice{StreamID: args.StreamID, ViewerCount: count},
		})
	}
	return nil
}

func (h *StreamHub) leaveStream(ctx context.Context, c *Caller, payload json.RawMessage) error {
	var args streamRefArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	h.LeaveGroup(c, StreamGroup(args.StreamID))
	h.unmarkJoined(c.ConnID, args.StreamID)
	h.SendToGroup(StreamGroup(args.StreamID), Event{
		Event:   EventViewerLeft,
		Payload: streamViewerNotice{StreamID: args.StreamID, Timestamp: time.Now().UTC()},
	})

	if h.tracker != nil {
		count, err := h.tracker.Leave(ctx, args.StreamID)
		if err != nil {
			return err
		}
		h.SendToGroup(StreamGroup(args.StreamID), Event{
			Event:   EventViewerCountUpdated,
			Payload: viewerCountNotice{StreamID: args.StreamID, ViewerCount: count},
		})
	}
	return nil
}

type streamUpdateArgs struct {
	StreamID   int64           `json:"streamId" validate:"required,gt=0"`
	UpdateData json.RawMessage `json:"updateData"`
}

func (h *StreamHub) sendStreamUpdate(_ context.Context, _ *Caller, payload json.RawMessage) error {
	var args streamUpdateArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	h.SendToGroup(StreamGroup(args.StreamID), Event{Event: EventStreamUpdateReceived, Payload: args.UpdateData})
	return nil
}

type updateViewerCountArgs struct {
	StreamID    int64 `json:"streamId" validate:"required,gt=0"`
	ViewerCount int64 `json:"viewerCount" validate:"gte=0"`
}

func (h *StreamHub) updateViewerCount(_ context.Context, _ *Caller, payload json.RawMessage) error {
	var args updateViewerCountArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	h.SendToGroup(StreamGroup(args.StreamID), Event{
		Event:   EventViewerCountUpdated,
		Payload: viewerCountNotice{StreamID: args.StreamID, ViewerCount: args.ViewerCount},
	})
	return nil
}

type superChatArgs struct {
	StreamID  int64           `json:"streamId" validate:"required,gt=0"`
	SuperChat json.RawMessage `json:"superChat"`
}

func (h *StreamHub) sendSuperChat(_ context.Context, _ *Caller, payload json.RawMessage) error {
	var args superChatArgs
	if err := decode(payload, &args); err != nil {
		return err
	}

	h.SendToGroup(StreamGroup(args.StreamID), Event{Event: EventSuperChatReceived, Payload: args.SuperChat})
	return nil
}

func (h *StreamHub) markJoined(connID string, streamID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.joined[connID] == nil {
		h.joined[connID] = make(map[int64]struct{})
	}
	h.joined[connID][streamID] = struct{}{}
}

func (h *StreamHub) unmarkJoined(connID string, streamID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.joined[connID], streamID)
	if len(h.joined[connID]) == 0 {
		delete(h.joined, connID)
	}
}

// cleanupViewer releases the viewer counters of a connection that dropped
// without calling LeaveStream.
func (h *StreamHub) cleanupViewer(c *Caller) {
	h.mu.Lock()
	streams := h.joined[c.ConnID]
	delete(h.joined, c.ConnID)
	h.mu.Unlock()

	if h.tracker == nil {
		return
	}
	for streamID := range streams {
		count, err := h.tracker.Leave(context.Background(), streamID)
		if err != nil {
			h.log.Errorf("viewer cleanup stream=%d conn=%s: %v", streamID, c.ConnID, err)
			continue
		}
		h.SendToGroup(StreamGroup(streamID), Event{
			Event:   EventViewerCountUpdated,
			Payload: viewerCountNotice{StreamID: streamID, ViewerCount: count},
		})
	}
}
