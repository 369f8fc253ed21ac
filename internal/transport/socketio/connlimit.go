package socketio

import (
	"sync"
)

// ConnectionLimiter caps concurrent external (non-localhost) connections.
// Local connections are always allowed without limit. When a new external
// connection exceeds the cap, the oldest external connection is evicted; the
// newest listener wins, which suits a single-user music client.
type ConnectionLimiter struct {
	mu          sync.Mutex
	maxExternal int
	// external client IDs, oldest first
	external []string
	// all tracked connections: clientID -> remoteIP
	connections map[string]string
}

// NewConnectionLimiter creates a limiter allowing up to maxExternal concurrent
// non-localhost connections.
func NewConnectionLimiter(maxExternal int) *ConnectionLimiter {
	return &ConnectionLimiter{
		maxExternal: maxExternal,
		external:    make([]string, 0),
		connections: make(map[string]string),
	}
}

// TryAdd registers a new connection. It returns whether the connection is
// allowed and the ID of any evicted client (empty string if none).
func (cl *ConnectionLimiter) TryAdd(clientID, remoteIP string) (allowed bool, evictedID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.connections[clientID]; exists {
		return true, ""
	}

	cl.connections[clientID] = remoteIP

	if isLocalIP(remoteIP) {
		return true, ""
	}

	cl.external = append(cl.external, clientID)

	if len(cl.external) > cl.maxExternal {
		evictedID = cl.external[0]
		cl.external = cl.external[1:]
		delete(cl.connections, evictedID)
		return true, evictedID
	}

	return true, ""
}

// Remove unregisters a connection when a client disconnects.
func (cl *ConnectionLimiter) Remove(clientID string) {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	ip, exists := cl.connections[clientID]
	if !exists {
		return
	}

	delete(cl.connections, clientID)

	if isLocalIP(ip) {
		return
	}

	for i, id := range cl.external {
		if id == clientID {
			cl.external = append(cl.external[:i], cl.external[i+1:]...)
			break
		}
	}
}

// isLocalIP returns true if the IP address is localhost.
func isLocalIP(ip string) bool {
	return ip == "127.0.0.1" || ip == "::1"
}
