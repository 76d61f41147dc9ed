package bus

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisBus extends a LocalBus across process boundaries using Redis
// PUB/SUB: publishes go through Redis on the group name, and a receive
// loop fans incoming payloads to the local subscribers of this process.
type RedisBus struct {
	local  *LocalBus
	rdb    *redis.Client
	pubsub *redis.PubSub

	mu   sync.Mutex
	refs map[string]int
}

// NewRedisBus connects the local bus to Redis and starts the receive loop.
func NewRedisBus(ctx context.Context, rdb *redis.Client, local *LocalBus) *RedisBus {
	b := &RedisBus{
		local:  local,
		rdb:    rdb,
		pubsub: rdb.Subscribe(ctx),
		refs:   make(map[string]int),
	}
	go b.receive(ctx)
	return b
}

// Subscribe registers the subscriber locally and joins the Redis channel
// for the group when this process gains its first subscriber.
func (b *RedisBus) Subscribe(group string, sub *Subscriber) {
	b.local.Subscribe(group, sub)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.refs[group]++
	if b.refs[group] == 1 {
		if err := b.pubsub.Subscribe(context.Background(), group); err != nil {
			log.Printf("bus: redis subscribe %s failed: %v", group, err)
		}
	}
}

// Unsubscribe removes the subscriber locally and leaves the Redis channel
// when this process has no subscribers left for the group.
func (b *RedisBus) Unsubscribe(group string, sub *Subscriber) {
	b.local.Unsubscribe(group, sub)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refs[group] == 0 {
		return
	}
	b.refs[group]--
	if b.refs[group] == 0 {
		delete(b.refs, group)
		if err := b.pubsub.Unsubscribe(context.Background(), group); err != nil {
			log.Printf("bus: redis unsubscribe %s failed: %v", group, err)
		}
	}
}

// Publish sends the payload through Redis; the receive loop of every
// process (this one included) delivers it to local subscribers.
func (b *RedisBus) Publish(ctx context.Context, group string, payload []byte) error {
	return b.rdb.Publish(ctx, group, payload).Err()
}

func (b *RedisBus) receive(ctx context.Context) {
	for msg := range b.pubsub.Channel() {
		_ = b.local.Publish(ctx, msg.Channel, []byte(msg.Payload))
	}
}

// Close tears the Redis subscription down.
func (b *RedisBus) Close() error {
	return b.pubsub.Close()
}
