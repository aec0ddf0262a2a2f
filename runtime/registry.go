package runtime

import (
	"coin-chat/contract"
	"log/slog"
	"sync"
)

// Registry maps a username to the outbound half of its live connection.
// One instance is owned by the server for its whole uptime.
type Registry struct {
	mu          sync.RWMutex
	connections map[string]contract.Outbound
	log         *slog.Logger
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		connections: make(map[string]contract.Outbound),
		log:         log,
	}
}

// Register stores the connection of a user. A previous connection for the
// same user is superseded but not closed: its next send is expected to fail.
func (r *Registry) Register(username string, outbound contract.Outbound) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.connections[username]; ok {
		r.log.Debug("Connection superseded", "user", username)
	}
	r.connections[username] = outbound
}

// Unregister removes the user's entry, whatever connection it points to.
func (r *Registry) Unregister(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.connections, username)
}

// Release removes the user's entry only if it still points to outbound.
// A superseded connection ending its loop must not evict its replacement.
func (r *Registry) Release(username string, outbound contract.Outbound) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.connections[username]
	if !ok || current != outbound {
		return false
	}
	delete(r.connections, username)
	return true
}

func (r *Registry) Lookup(username string) (contract.Outbound, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	outbound, ok := r.connections[username]
	return outbound, ok
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// Close closes every registered connection and empties the registry.
// Called once at shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	connections := r.connections
	r.connections = make(map[string]contract.Outbound)
	r.mu.Unlock()

	for username, outbound := range connections {
		if err := outbound.Close(); err != nil {
			r.log.Debug("Closing connection failed", "user", username, "error", err)
		}
	}
}
