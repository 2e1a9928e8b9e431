package output

import "sync"

// Guard coordinates dist readers with promotion. The zero value is ready to use.
type Guard struct {
	mu sync.RWMutex
}

// Read runs fn while holding the shared lock.
func (g *Guard) Read(fn func() error) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fn()
}

// Write runs fn while holding the exclusive lock.
func (g *Guard) Write(fn func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn()
}
