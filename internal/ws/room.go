package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// room is the set of connections watching one item.
type room struct {
	mu    sync.RWMutex
	conns map[*clientConn]struct{}
}

func newRoom() *room { return &room{conns: make(map[*clientConn]struct{})} }

func (r *room) add(c *clientConn) {
	r.mu.Lock()
	r.conns[c] = struct{}{}
	r.mu.Unlock()
}

func (r *room) remove(c *clientConn) {
	r.mu.Lock()
	delete(r.conns, c)
	r.mu.Unlock()
	c.rawConn.Close()
}

// broadcast writes outside the lock; connections that fail the write are
// evicted from the room.
func (r *room) broadcast(msg []byte) {
	r.mu.RLock()
	conns := make([]*clientConn, 0, len(r.conns))
	for c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	var dead []*clientConn
	for _, c := range conns {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		r.remove(c)
	}
}
