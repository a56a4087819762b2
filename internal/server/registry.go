package server

import "sync"

// Registry tracks the open sessions of each identity. It is purely
// in-memory; after a restart it refills as clients reconnect. The mutex
// is required because registrations and lookups happen on different
// goroutines (connection handlers vs the dispatch loop).
type Registry struct {
	mu       sync.RWMutex
	sessions map[int]map[*Client]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[int]map[*Client]struct{}),
	}
}

func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userId := c.user.Id
	if r.sessions[userId] == nil {
		r.sessions[userId] = make(map[*Client]struct{})
	}
	r.sessions[userId][c] = struct{}{}
}

// Unregister removes the session from whichever identity it belongs to.
// Unregistering a session that was never registered is a no-op.
func (r *Registry) Unregister(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userId := c.user.Id
	clients, ok := r.sessions[userId]
	if !ok {
		return
	}

	delete(clients, c)
	if len(clients) == 0 {
		delete(r.sessions, userId)
	}
}

func (r *Registry) SessionsFor(userId int) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.sessions[userId]))
	for c := range r.sessions[userId] {
		clients = append(clients, c)
	}

	return clients
}

func (r *Registry) All() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var clients []*Client
	for _, sessions := range r.sessions {
		for c := range sessions {
			clients = append(clients, c)
		}
	}

	return clients
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var n int
	for _, sessions := range r.sessions {
		n += len(sessions)
	}

	return n
}
