package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"talentflow/internal/observability"
)

const changeChannel = "talentflow.changes"

// RedisBridge relays changes between API instances over redis
// pub/sub. Publish failures are logged and dropped: the stream is a
// hint, never the system of record.
type RedisBridge struct {
	client *redis.Client
	hub    *Hub
	logger *observability.Logger
}

func NewRedisBridge(client *redis.Client, hub *Hub, logger *observability.Logger) *RedisBridge {
	if client == nil {
		return nil
	}
	return &RedisBridge{client: client, hub: hub, logger: logger}
}

func (b *RedisBridge) Publish(change Change) {
	if b == nil || b.client == nil {
		return
	}
	payload, err := json.Marshal(change)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if err := b.client.Publish(ctx, changeChannel, payload).Err(); err != nil {
		b.logger.Warn("change publish failed", "err", err.Error())
	}
}

// Run pumps remote changes into the local hub until ctx is cancelled.
func (b *RedisBridge) Run(ctx context.Context) {
	if b == nil || b.client == nil {
		return
	}
	sub := b.client.Subscribe(ctx, changeChannel)
	defer sub.Close()
	for {
		msg, err := sub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.logger.Warn("change subscribe interrupted", "err", err.Error())
			time.Sleep(time.Second)
			continue
		}
		var change Change
		if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
			continue
		}
		b.hub.Publish(change)
	}
}

// Fanout publishes locally and, when a bridge is configured, to the
// other instances.
type Fanout struct {
	Hub    *Hub
	Bridge *RedisBridge
}

func (f Fanout) Publish(change Change) {
	if f.Hub != nil {
		f.Hub.Publish(change)
	}
	if f.Bridge != nil {
		f.Bridge.Publish(change)
	}
}
