package studio

import (
	"sync"

	"github.com/cristianadrielbraun/qrultimate/internal/render"
)

// Pane is the visible preview surface a binding is mounted into.
type Pane struct {
	mu      sync.RWMutex
	surface *render.Surface
	version uint64
}

// Show implements render.Container.
func (p *Pane) Show(s *render.Surface) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.surface = s
	p.version++
}

// Surface returns the surface currently on display, nil before the first
// render.
func (p *Pane) Surface() *render.Surface {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.surface
}

// Version increases on every Show. Handlers use it as a cache buster.
func (p *Pane) Version() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}
