package socket

import (
	"sync"

	socketio "github.com/googollee/go-socket.io"
)

// SessionRegistry tracks live socket connections by id and delivers outbound
// events to them. It implements arena.Emitter. Emitting to an id that is no
// longer (or never was) connected is a silent no-op; partial delivery is a
// transport concern the engine does not see.
type SessionRegistry struct {
	mu    sync.RWMutex
	conns map[string]socketio.Conn
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{conns: make(map[string]socketio.Conn)}
}

// Add registers a connection under its id.
func (sr *SessionRegistry) Add(connID string, conn socketio.Conn) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	sr.conns[connID] = conn
}

// Remove forgets a connection.
func (sr *SessionRegistry) Remove(connID string) {
	sr.mu.Lock()
	defer sr.mu.Unlock()
	delete(sr.conns, connID)
}

// Emit sends an event to one connection.
func (sr *SessionRegistry) Emit(connID, event string, payload interface{}) {
	sr.mu.RLock()
	conn, ok := sr.conns[connID]
	sr.mu.RUnlock()
	if !ok {
		return
	}
	if payload == nil {
		conn.Emit(event)
		return
	}
	conn.Emit(event, payload)
}

// Count reports the number of live connections.
func (sr *SessionRegistry) Count() int {
	sr.mu.RLock()
	defer sr.mu.RUnlock()
	return len(sr.conns)
}
