package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidstream-live-public/internal/validation"
	"github.com/vidstream-live-public/pkg/logger"
)

// fakeConn records every event delivered to a connection.
type fakeConn struct {
	mu     sync.Mutex
	events []Event
}

func (f *fakeConn) enqueue(ev Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return true
}

func (f *fakeConn) received(name string) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Event
	for _, ev := range f.events {
		if ev.Event == name {
			out = append(out, ev)
		}
	}
	return out
}

func (f *fakeConn) lastError(t *testing.T) errorPayload {
	t.Helper()
	evs := f.received(EventError)
	require.NotEmpty(t, evs, "expected an Error event")
	payload, ok := evs[len(evs)-1].Payload.(errorPayload)
	require.True(t, ok, "Error payload has unexpected type")
	return payload
}

func testLogger() logger.Logger {
	return logger.NewLogger("error")
}

func mustPayload(t *testing.T, v any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func TestHubGroupBroadcastDelivery(t *testing.T) {
	h := NewHub("test", NewRegistry(), testLogger())
	member := &fakeConn{}
	outsider := &fakeConn{}

	a := h.Connect("conn-a", 1, member)
	h.Connect("conn-b", 2, outsider)

	h.JoinGroup(a, "chat_42")
	h.SendToGroup("chat_42", Event{Event: "Ping", Payload: "hello"})

	assert.Len(t, member.received("Ping"), 1)
	assert.Empty(t, outsider.received("Ping"))

	h.LeaveGroup(a, "chat_42")
	h.SendToGroup("chat_42", Event{Event: "Ping", Payload: "again"})
	assert.Len(t, member.received("Ping"), 1, "no delivery after leaving")
}

func TestHubSendToUserReachesAllConnections(t *testing.T) {
	h := NewHub("test", NewRegistry(), testLogger())
	first := &fakeConn{}
	second := &fakeConn{}
	other := &fakeConn{}

	h.Connect("conn-1", 7, first)
	h.Connect("conn-2", 7, second)
	h.Connect("conn-3", 8, other)

	h.SendToUser(7, Event{Event: "Direct"})

	assert.Len(t, first.received("Direct"), 1)
	assert.Len(t, second.received("Direct"), 1)
	assert.Empty(t, other.received("Direct"))
}

func TestHubSendToAll(t *testing.T) {
	h := NewHub("test", NewRegistry(), testLogger())
	conns := []*fakeConn{{}, {}, {}}
	for i, fc := range conns {
		h.Connect(string(rune('a'+i)), 0, fc)
	}

	h.SendToAll(Event{Event: "Global"})
	for _, fc := range conns {
		assert.Len(t, fc.received("Global"), 1)
	}
}

func TestHubDisconnectCleansMemberships(t *testing.T) {
	h := NewHub("test", NewRegistry(), testLogger())
	fc := &fakeConn{}
	c := h.Connect("conn-a", 5, fc)
	h.JoinGroup(c, "stream_9")

	h.Disconnect(c)

	h.SendToGroup("stream_9", Event{Event: "Gone"})
	h.SendToUser(5, Event{Event: "Gone"})
	assert.Empty(t, fc.received("Gone"))
}

func TestDispatchUnknownMethod(t *testing.T) {
	h := NewHub("test", NewRegistry(), testLogger())
	fc := &fakeConn{}
	c := h.Connect("conn-a", 1, fc)

	h.Dispatch(context.Background(), c, "Nope", nil)

	assert.Contains(t, fc.lastError(t).Message, "Unknown method")
}

func TestDispatchRequiresAuth(t *testing.T) {
	h := NewHub("test", NewRegistry(), testLogger())
	called := false
	h.Handle("Secure", func(context.Context, *Caller, json.RawMessage) error {
		called = true
		return nil
	}, MethodOpts{RequireAuth: true})

	fc := &fakeConn{}
	anon := h.Connect("conn-a", 0, fc)
	h.Dispatch(context.Background(), anon, "Secure", nil)

	assert.False(t, called, "handler must not run for anonymous callers")
	assert.Equal(t, "User not authenticated", fc.lastError(t).Message)
}

func TestDispatchValidationErrorSurfacesField(t *testing.T) {
	h := NewHub("test", NewRegistry(), testLogger())
	h.Handle("Check", func(context.Context, *Caller, json.RawMessage) error {
		return validation.NewFieldError("message", "must not be empty")
	}, MethodOpts{Failure: "Failed to check"})

	fc := &fakeConn{}
	c := h.Connect("conn-a", 1, fc)
	h.Dispatch(context.Background(), c, "Check", nil)

	errPayload := fc.lastError(t)
	assert.Equal(t, "message", errPayload.Field)
	assert.Equal(t, "must not be empty", errPayload.Reason)
}

func TestDispatchGenericFailureMessage(t *testing.T) {
	h := NewHub("test", NewRegistry(), testLogger())
	h.Handle("Boom", func(context.Context, *Caller, json.RawMessage) error {
		return errors.New("pg: connection refused")
	}, MethodOpts{Failure: "Failed to boom"})

	fc := &fakeConn{}
	c := h.Connect("conn-a", 1, fc)
	h.Dispatch(context.Background(), c, "Boom", nil)

	errPayload := fc.lastError(t)
	assert.Equal(t, "Failed to boom", errPayload.Message)
	assert.Empty(t, errPayload.Field, "root cause details stay in server logs")
}

func TestDispatchSilentMethodSwallowsErrors(t *testing.T) {
	h := NewHub("test", NewRegistry(), testLogger())
	h.Handle("Quiet", func(context.Context, *Caller, json.RawMessage) error {
		return errors.New("boom")
	}, MethodOpts{Silent: true})

	fc := &fakeConn{}
	c := h.Connect("conn-a", 1, fc)
	h.Dispatch(context.Background(), c, "Quiet", nil)

	assert.Empty(t, fc.received(EventError))
}
