package realtime

import "sync"

// Registry tracks group membership and the logical user behind each
// connection. It is deliberately an injectable interface so hub logic can be
// exercised without a live transport; the hub owns the production instance.
type Registry interface {
	// Add puts a connection into a named group. Idempotent.
	Add(connID, group string)
	// Remove takes a connection out of a named group.
	Remove(connID, group string)
	// MembersOf lists the connections currently in a group.
	MembersOf(group string) []string
	// Bind associates a connection with a logical user id.
	Bind(connID string, userID int64)
	// ConnectionsOf lists all connections belonging to a logical user.
	ConnectionsOf(userID int64) []string
	// RemoveAll drops every membership and binding of a connection.
	// Called when the transport reports a disconnect.
	RemoveAll(connID string)
}

type memoryRegistry struct {
	mu      sync.RWMutex
	groups  map[string]map[string]struct{} // group -> connIDs
	byConn  map[string]map[string]struct{} // connID -> groups
	users   map[int64]map[string]struct{}  // userID -> connIDs
	binding map[string]int64               // connID -> userID
}

// NewRegistry returns the in-memory Registry used in production; membership
// lives only as long as the owning connections.
func NewRegistry() Registry {
	return &memoryRegistry{
		groups:  make(map[string]map[string]struct{}),
		byConn:  make(map[string]map[string]struct{}),
		users:   make(map[int64]map[string]struct{}),
		binding: make(map[string]int64),
	}
}

func (r *memoryRegistry) Add(connID, group string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.groups[group] == nil {
		r.groups[group] = make(map[string]struct{})
	}
	r.groups[group][connID] = struct{}{}
	if r.byConn[connID] == nil {
		r.byConn[connID] = make(map[string]struct{})
	}
	r.byConn[connID][group] = struct{}{}
}

func (r *memoryRegistry) Remove(connID, group string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(connID, group)
}

func (r *memoryRegistry) removeLocked(connID, group string) {
	if members, ok := r.groups[group]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.groups, group)
		}
	}
	if groups, ok := r.byConn[connID]; ok {
		delete(groups, group)
		if len(groups) == 0 {
			delete(r.byConn, connID)
		}
	}
}

func (r *memoryRegistry) MembersOf(group string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]string, 0, len(r.groups[group]))
	for connID := range r.groups[group] {
		members = append(members, connID)
	}
	return members
}

func (r *memoryRegistry) Bind(connID string, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.users[userID] == nil {
		r.users[userID] = make(map[string]struct{})
	}
	r.users[userID][connID] = struct{}{}
	r.binding[connID] = userID
}

func (r *memoryRegistry) ConnectionsOf(userID int64) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conns := make([]string, 0, len(r.users[userID]))
	for connID := range r.users[userID] {
		conns = append(conns, connID)
	}
	return conns
}

func (r *memoryRegistry) RemoveAll(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for group := range r.byConn[connID] {
		r.removeLocked(connID, group)
	}
	if userID, ok := r.binding[connID]; ok {
		delete(r.binding, connID)
		if conns, ok := r.users[userID]; ok {
			delete(conns, connID)
			if len(conns) == 0 {
				delete(r.users, userID)
			}
		}
	}
}
