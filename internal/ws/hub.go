package ws

import (
	"sync"
)

// Hub keeps client sets per itemID.
type Hub struct {
	rooms sync.Map // itemID -> *room
}

func NewHub() *Hub { return &Hub{} }

// Broadcast is called by the Redis subscriber.
func (h *Hub) Broadcast(itemID string, msg []byte) {
	if v, ok := h.rooms.Load(itemID); ok {
		v.(*room).broadcast(msg)
	}
}
func (h *Hub) Join(itemID string, c *clientConn) {
	r, _ := h.rooms.LoadOrStore(itemID, newRoom())
	r.(*room).add(c)
}

func (h *Hub) Leave(itemID string, c *clientConn) {
	if v, ok := h.rooms.Load(itemID); ok {
		v.(*room).remove(c)
	}
}
