package usecase

import "sync"

// inFlightGuard tracks notes with a mutation pending, so a double-submitted
// action is refused instead of racing its twin.
type inFlightGuard struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

func newInFlightGuard() *inFlightGuard {
	return &inFlightGuard{pending: make(map[string]struct{})}
}

func (g *inFlightGuard) acquire(id string) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.pending[id]; busy {
		return nil, false
	}
	g.pending[id] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.pending, id)
		g.mu.Unlock()
	}, true
}

func (g *inFlightGuard) busy(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.pending[id]
	return ok
}
