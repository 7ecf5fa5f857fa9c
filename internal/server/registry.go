package server

import (
	"context"
	"encoding/json"
	"sync"

	ws "nhooyr.io/websocket"
)

// Registry keeps at most one recognizer connection per stream.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*ws.Conn
}

func NewRegistry() *Registry { return &Registry{conns: make(map[string]*ws.Conn)} }

// Replace sets the connection for a stream and closes the previous one if present.
func (r *Registry) Replace(streamID string, c *ws.Conn) (prevClosed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.conns[streamID]; ok && old != nil {
		_ = old.Close(ws.StatusNormalClosure, "replaced")
		prevClosed = true
	}
	r.conns[streamID] = c
	return
}

func (r *Registry) Remove(streamID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, streamID)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Broadcast sends v to every connected stream, best effort. Returns the
// first write error, if any.
func (r *Registry) Broadcast(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	r.mu.Lock()
	conns := make([]*ws.Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		if werr := c.Write(ctx, ws.MessageText, b); werr != nil && firstErr == nil {
			firstErr = werr
		}
	}
	return firstErr
}
