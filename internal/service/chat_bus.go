package service

import (
	"context"
	"sync"
)

// LocalThreadBus is an in-process ThreadBus for single instance deployments.
type LocalThreadBus struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewLocalThreadBus() *LocalThreadBus {
	return &LocalThreadBus{subs: make(map[string]map[chan struct{}]struct{})}
}

// Publish never blocks. A subscriber that has not drained its last signal
// misses nothing since it reloads the whole thread anyway.
func (b *LocalThreadBus) Publish(_ context.Context, matchID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[matchID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

func (b *LocalThreadBus) Watch(_ context.Context, matchID string) (<-chan struct{}, func() error, error) {
	ch := make(chan struct{}, 1) // one pending signal is enough
	b.mu.Lock()
	if b.subs[matchID] == nil {
		b.subs[matchID] = make(map[chan struct{}]struct{})
	}
	b.subs[matchID][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	closer := func() error {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[matchID], ch)
			if len(b.subs[matchID]) == 0 {
				delete(b.subs, matchID)
			}
			close(ch)
		})
		return nil
	}
	return ch, closer, nil
}
