package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const ChatChannelPrefix = "chat:thread:"

// ChatBus signals "this thread changed" across API instances.
type ChatBus struct {
	RDB *redis.Client
}

func channel(matchID string) string {
	return ChatChannelPrefix + matchID
}

func (b *ChatBus) Publish(ctx context.Context, matchID string) error {
	return b.RDB.Publish(ctx, channel(matchID), "1").Err()
}

// Subscribe returns once the subscription is confirmed by the server, so no
// publish issued after it returns can be missed.
func (b *ChatBus) Subscribe(ctx context.Context, matchID string) (*ThreadFeed, error) {
	ps := b.RDB.Subscribe(ctx, channel(matchID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	f := &ThreadFeed{ps: ps, events: make(chan struct{}, 1)}
	go f.pump()
	return f, nil
}

// ThreadFeed coalesces thread notifications: a burst of publishes while the
// reader is busy collapses into one pending event.
type ThreadFeed struct {
	ps     *redis.PubSub
	events chan struct{}
}

func (f *ThreadFeed) pump() {
	defer close(f.events)
	for range f.ps.Channel() {
		select {
		case f.events <- struct{}{}:
		default:
		}
	}
}

// Events is closed after Close.
func (f *ThreadFeed) Events() <-chan struct{} {
	return f.events
}

func (f *ThreadFeed) Close() error {
	return f.ps.Close()
}

// Watch is Subscribe reduced to an event channel and its closer.
func (b *ChatBus) Watch(ctx context.Context, matchID string) (<-chan struct{}, func() error, error) {
	f, err := b.Subscribe(ctx, matchID)
	if err != nil {
		return nil, nil, err
	}
	return f.Events(), f.Close, nil
}
