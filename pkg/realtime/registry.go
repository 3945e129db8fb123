package realtime

import "sync"

// Conn is a live connection as seen by the registry. The transport layer owns
// the connection for its lifetime; the registry only holds a non-owning
// reference, so removal never closes anything.
type Conn interface {
	UserID() uint
	Send(payload []byte) error
}

// Registry is the process-wide bidirectional index of live connections:
// chat -> subscriber set and user -> connection set. Purely in-memory, safe
// for concurrent connect/disconnect/broadcast. Construct one per process and
// pass it by reference; tests build their own.
type Registry struct {
	mu     sync.RWMutex
	byUser map[uint]map[Conn]struct{}
	byChat map[string]map[Conn]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[uint]map[Conn]struct{}),
		byChat: make(map[string]map[Conn]struct{}),
	}
}

// Register adds the connection under its user's index. Idempotent.
func (r *Registry) Register(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.byUser[c.UserID()]
	if set == nil {
		set = make(map[Conn]struct{})
		r.byUser[c.UserID()] = set
	}
	set[c] = struct{}{}
}

// Subscribe adds the connection to the chat's subscriber set.
func (r *Registry) Subscribe(chatID string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set := r.byChat[chatID]
	if set == nil {
		set = make(map[Conn]struct{})
		r.byChat[chatID] = set
	}
	set[c] = struct{}{}
}

// SubscribeUsers subscribes every connection currently registered under any
// of userIDs to the chat. Used on chat creation so already-connected members
// start receiving events without reconnecting.
func (r *Registry) SubscribeUsers(chatID string, userIDs []uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var set map[Conn]struct{}
	for _, uid := range userIDs {
		for c := range r.byUser[uid] {
			if set == nil {
				set = r.byChat[chatID]
				if set == nil {
					set = make(map[Conn]struct{})
					r.byChat[chatID] = set
				}
			}
			set[c] = struct{}{}
		}
	}
}

// Unsubscribe removes all of the user's connections from the chat's
// subscriber set, dropping the set entirely once empty.
func (r *Registry) Unsubscribe(chatID string, userID uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.byChat[chatID]
	if !ok {
		return
	}
	for c := range set {
		if c.UserID() == userID {
			delete(set, c)
		}
	}
	if len(set) == 0 {
		delete(r.byChat, chatID)
	}
}

// DropChat removes the chat's subscriber set entirely and returns the
// connections that were in it, so the caller can notify them first.
func (r *Registry) DropChat(chatID string) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.byChat[chatID]
	if !ok {
		return nil
	}
	delete(r.byChat, chatID)
	conns := make([]Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}

// Deregister removes the connection from the user index and from every chat
// subscriber set. Sets that become empty are dropped, so the registry never
// accumulates empty entries.
func (r *Registry) Deregister(c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.byUser[c.UserID()]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(r.byUser, c.UserID())
		}
	}
	for chatID, set := range r.byChat {
		if _, ok := set[c]; ok {
			delete(set, c)
			if len(set) == 0 {
				delete(r.byChat, chatID)
			}
		}
	}
}

// Subscribers returns a snapshot of the chat's subscriber set; nil when the
// chat has no live viewers.
func (r *Registry) Subscribers(chatID string) []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.byChat[chatID]
	if !ok {
		return nil
	}
	conns := make([]Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}
