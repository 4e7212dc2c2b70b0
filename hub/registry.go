package hub

import (
	"sync"

	"github.com/skillsenselab/eventhub/errors"
	"github.com/skillsenselab/eventhub/logger"
)

// Registry is the process-wide mapping from routing key to live connections.
// It owns admission control and removal; all mutation and every read goes
// through its lock, and sends never happen while the lock is held.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]map[string]*Connection // key -> connection ID -> connection
	limit int
	log   *logger.Logger
}

// Stats is a point-in-time snapshot of registry occupancy.
type Stats struct {
	Keys  map[string]int `json:"keys"`
	Total int            `json:"total"`
}

// NewRegistry creates a registry with the given per-key connection limit.
func NewRegistry(limit int) *Registry {
	return &Registry{
		conns: make(map[string]map[string]*Connection),
		limit: limit,
		log:   logger.WithComponent("registry"),
	}
}

// Register admits the connection under its routing key. It returns a
// CapacityExceeded error, leaving the registry untouched, when the key is at
// its limit. The key's set is created lazily on first insert.
func (r *Registry) Register(conn *Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := conn.Key()
	set := r.conns[key]
	if len(set) >= r.limit {
		r.log.Warn("Connection rejected, key at capacity", map[string]interface{}{
			logger.FieldRoutingKey: key,
			"limit":                r.limit,
		})
		return errors.CapacityExceeded(key, r.limit)
	}
	if set == nil {
		set = make(map[string]*Connection)
		r.conns[key] = set
	}
	set[conn.ID()] = conn

	r.log.Debug("Connection registered", map[string]interface{}{
		logger.FieldConnectionID: conn.ID(),
		logger.FieldRoutingKey:   key,
		"key_connections":        len(set),
	})
	return nil
}

// Unregister removes the connection and closes it. Removing twice, or
// removing a connection that was never registered, is a no-op. The key's
// entry is deleted once its set becomes empty.
func (r *Registry) Unregister(conn *Connection) {
	r.mu.Lock()
	key := conn.Key()
	set, ok := r.conns[key]
	if ok {
		if _, present := set[conn.ID()]; present {
			delete(set, conn.ID())
			if len(set) == 0 {
				delete(r.conns, key)
			}
		} else {
			ok = false
		}
	}
	r.mu.Unlock()

	// Close outside the lock; Close is idempotent so racing teardown paths
	// are harmless.
	conn.Close()

	if ok {
		r.log.Debug("Connection unregistered", map[string]interface{}{
			logger.FieldConnectionID: conn.ID(),
			logger.FieldRoutingKey:   key,
		})
	}
}

// ConnectionsFor returns a copy-on-read snapshot of the key's connections.
// Broadcast iterates the snapshot so sends happen outside the lock.
func (r *Registry) ConnectionsFor(key string) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.conns[key]
	if len(set) == 0 {
		return nil
	}
	snapshot := make([]*Connection, 0, len(set))
	for _, conn := range set {
		snapshot = append(snapshot, conn)
	}
	return snapshot
}

// Stats returns per-key connection counts and their sum.
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := Stats{Keys: make(map[string]int, len(r.conns))}
	for key, set := range r.conns {
		stats.Keys[key] = len(set)
		stats.Total += len(set)
	}
	return stats
}

// CloseAll unregisters and closes every connection. Used at shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	var all []*Connection
	for _, set := range r.conns {
		for _, conn := range set {
			all = append(all, conn)
		}
	}
	r.conns = make(map[string]map[string]*Connection)
	r.mu.Unlock()

	for _, conn := range all {
		conn.Close()
	}
	r.log.Debug("All connections closed", map[string]interface{}{
		"count": len(all),
	})
}
