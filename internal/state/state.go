// Package state tracks whether the agent is currently speaking.
package state

import (
	"sync"
	"time"
)

// Conversation is the concurrency-guarded agent-speaking flag. Writes are
// serialized; the last writer wins. No history is kept beyond the timestamp
// of the most recent change.
type Conversation struct {
	mu         sync.RWMutex
	speaking   bool
	lastChange time.Time
}

func NewConversation() *Conversation {
	return &Conversation{lastChange: time.Now().UTC()}
}

// SetSpeaking updates the flag and reports whether the value changed.
func (c *Conversation) SetSpeaking(speaking bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	changed := c.speaking != speaking
	c.speaking = speaking
	c.lastChange = time.Now().UTC()
	return changed
}

func (c *Conversation) Speaking() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.speaking
}

// LastChange returns when the flag was last written.
func (c *Conversation) LastChange() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastChange
}
