package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/vidstream-live-public/internal/validation"
	"github.com/vidstream-live-public/pkg/logger"
)

// sender delivers events to a single connection. Implemented by Client in
// production and by test doubles in hub tests.
type sender interface {
	enqueue(ev Event) bool
}

// Bridge fans broadcasts out to hub instances on other nodes. Optional; a nil
// bridge keeps all delivery node-local.
type Bridge interface {
	PublishGroup(hub, group string, ev Event) error
	PublishUser(hub string, userID int64, ev Event) error
	PublishAll(hub string, ev Event) error
}

// HandlerFunc is a hub method body. The returned error feeds the shared
// dispatch policy; handlers never talk to the caller about failures directly.
type HandlerFunc func(ctx context.Context, c *Caller, payload json.RawMessage) error

// MethodOpts declares the cross-cutting behavior of a hub method.
type MethodOpts struct {
	// RequireAuth aborts the call with an Error event when the connection has
	// no logical user.
	RequireAuth bool
	// Silent suppresses the Error event on failure; the error is only logged.
	// Used where no response is expected (LeaveChat, lifecycle hooks).
	Silent bool
	// Failure is the generic message emitted for unexpected errors.
	Failure string
}

type method struct {
	name string
	fn   HandlerFunc
	opts MethodOpts
}

// Hub is one real-time endpoint: a set of named methods invocable by
// connected clients, plus group/user/all broadcast primitives.
type Hub struct {
	name     string
	log      logger.Logger
	registry Registry
	bridge   Bridge

	mu      sync.RWMutex
	conns   map[string]sender
	methods map[string]method

	onConnect    func(c *Caller)
	onDisconnect func(c *Caller)
}

func NewHub(name string, reg Registry, logg logger.Logger) *Hub {
	return &Hub{
		name:     name,
		log:      logg.WithModule("hub:" + name),
		registry: reg,
		conns:    make(map[string]sender),
		methods:  make(map[string]method),
	}
}

func (h *Hub) Name() string { return h.name }

// SetBridge attaches cross-node fanout. Must be called before connections
// arrive.
func (h *Hub) SetBridge(b Bridge) { h.bridge = b }

// Handle registers a named method.
func (h *Hub) Handle(name string, fn HandlerFunc, opts MethodOpts) {
	if opts.Failure == "" {
		opts.Failure = "Failed to execute " + name
	}
	h.methods[name] = method{name: name, fn: fn, opts: opts}
}

// Caller identifies the connection behind an inbound method call.
type Caller struct {
	ConnID string
	UserID int64
	hub    *Hub
}

func (c *Caller) Authenticated() bool { return c.UserID != 0 }

// Connect registers a live connection with the hub. UserID is 0 for anonymous
// callers (the relay hubs accept those).
func (h *Hub) Connect(connID string, userID int64, s sender) *Caller {
	h.mu.Lock()
	h.conns[connID] = s
	h.mu.Unlock()

	if userID != 0 {
		h.registry.Bind(connID, userID)
	}

	c := &Caller{ConnID: connID, UserID: userID, hub: h}
	h.log.Infof("connected conn=%s user=%d", connID, userID)
	if h.onConnect != nil {
		h.onConnect(c)
	}
	return c
}

// Disconnect runs the disconnect hook and drops every group membership of the
// connection; clients rely on this instead of leaving groups explicitly.
func (h *Hub) Disconnect(c *Caller) {
	if h.onDisconnect != nil {
		h.onDisconnect(c)
	}
	h.registry.RemoveAll(c.ConnID)

	h.mu.Lock()
	delete(h.conns, c.ConnID)
	h.mu.Unlock()
	h.log.Infof("disconnected conn=%s user=%d", c.ConnID, c.UserID)
}

func (h *Hub) OnConnect(fn func(c *Caller))    { h.onConnect = fn }
func (h *Hub) OnDisconnect(fn func(c *Caller)) { h.onDisconnect = fn }

// Dispatch routes one inbound frame through the shared error policy.
func (h *Hub) Dispatch(ctx context.Context, c *Caller, name string, payload json.RawMessage) {
	m, ok := h.methods[name]
	if !ok {
		h.SendToCaller(c, Event{Event: EventError, Payload: errorPayload{Message: "Unknown method: " + name}})
		return
	}

	if m.opts.RequireAuth && !c.Authenticated() {
		h.log.Warnf("%s rejected: unauthenticated conn=%s", m.name, c.ConnID)
		if !m.opts.Silent {
			h.SendToCaller(c, Event{Event: EventError, Payload: errorPayload{Message: "User not authenticated"}})
		}
		return
	}

	if err := m.fn(ctx, c, payload); err != nil {
		h.fail(c, m, err)
	}
}

func (h *Hub) fail(c *Caller, m method, err error) {
	var fieldErr *validation.FieldError
	switch {
	case errors.Is(err, ErrUnauthenticated):
		h.log.Warnf("%s rejected: unauthenticated conn=%s", m.name, c.ConnID)
		if !m.opts.Silent {
			h.SendToCaller(c, Event{Event: EventError, Payload: errorPayload{Message: "User not authenticated"}})
		}
	case errors.As(err, &fieldErr):
		h.log.Warnf("%s rejected: %v conn=%s", m.name, err, c.ConnID)
		if !m.opts.Silent {
			h.SendToCaller(c, Event{Event: EventError, Payload: errorPayload{
				Message: fieldErr.Error(),
				Field:   fieldErr.Field,
				Reason:  fieldErr.Reason,
			}})
		}
	default:
		h.log.Errorf("%s failed: %v conn=%s user=%d", m.name, err, c.ConnID, c.UserID)
		if !m.opts.Silent {
			h.SendToCaller(c, Event{Event: EventError, Payload: errorPayload{Message: m.opts.Failure}})
		}
	}
}

// JoinGroup adds the caller's connection to a named group.
func (h *Hub) JoinGroup(c *Caller, group string) { h.registry.Add(c.ConnID, group) }

// LeaveGroup removes the caller's connection from a named group.
func (h *Hub) LeaveGroup(c *Caller, group string) { h.registry.Remove(c.ConnID, group) }

// SendToCaller emits an event to the calling connection only.
func (h *Hub) SendToCaller(c *Caller, ev Event) {
	h.deliver(c.ConnID, ev)
}

// SendToGroup broadcasts to every current member of a group, on this node and
// (when a bridge is attached) on every other node.
func (h *Hub) SendToGroup(group string, ev Event) {
	h.DeliverGroup(group, ev)
	if h.bridge != nil {
		if err := h.bridge.PublishGroup(h.name, group, ev); err != nil {
			h.log.Errorf("bridge publish group=%s event=%s: %v", group, ev.Event, err)
		}
	}
}

// SendToUser emits to every connection belonging to a logical user.
func (h *Hub) SendToUser(userID int64, ev Event) {
	h.DeliverUser(userID, ev)
	if h.bridge != nil {
		if err := h.bridge.PublishUser(h.name, userID, ev); err != nil {
			h.log.Errorf("bridge publish user=%d event=%s: %v", userID, ev.Event, err)
		}
	}
}

// SendToAll emits to every connection on this hub.
func (h *Hub) SendToAll(ev Event) {
	h.DeliverAll(ev)
	if h.bridge != nil {
		if err := h.bridge.PublishAll(h.name, ev); err != nil {
			h.log.Errorf("bridge publish all event=%s: %v", ev.Event, err)
		}
	}
}

// DeliverGroup delivers to local group members only. The bridge calls this
// for broadcasts originating on other nodes.
func (h *Hub) DeliverGroup(group string, ev Event) {
	for _, connID := range h.registry.MembersOf(group) {
		h.deliver(connID, ev)
	}
}

// DeliverUser delivers to the user's local connections only.
func (h *Hub) DeliverUser(userID int64, ev Event) {
	for _, connID := range h.registry.ConnectionsOf(userID) {
		h.deliver(connID, ev)
	}
}

// DeliverAll delivers to every local connection.
func (h *Hub) DeliverAll(ev Event) {
	h.mu.RLock()
	connIDs := make([]string, 0, len(h.conns))
	for connID := range h.conns {
		connIDs = append(connIDs, connID)
	}
	h.mu.RUnlock()
	for _, connID := range connIDs {
		h.deliver(connID, ev)
	}
}

func (h *Hub) deliver(connID string, ev Event) {
	h.mu.RLock()
	s, ok := h.conns[connID]
	h.mu.RUnlock()
	if ok && !s.enqueue(ev) {
		h.log.Warnf("dropped %s for conn=%s: send buffer full", ev.Event, connID)
	}
}
