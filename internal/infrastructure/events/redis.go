package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedisClient creates and validates a go-redis client connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// RedisBus publishes events on a Redis channel so that every API instance
// sees sales recorded anywhere. One pub/sub connection per process is fanned
// out to local subscribers.
type RedisBus struct {
	client  *redis.Client
	channel string
	pubsub  *redis.PubSub
	local   *MemoryBus
	done    chan struct{}
}

// NewRedisBus subscribes to channel and starts the fan-out loop.
func NewRedisBus(ctx context.Context, client *redis.Client, channel string) (*RedisBus, error) {
	pubsub := client.Subscribe(ctx, channel)
	// Wait for the subscription to be confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	b := &RedisBus{
		client:  client,
		channel: channel,
		pubsub:  pubsub,
		local:   NewMemoryBus(),
		done:    make(chan struct{}),
	}
	go b.loop()
	return b, nil
}

func (b *RedisBus) loop() {
	defer close(b.done)

	for msg := range b.pubsub.Channel() {
		evt, err := decodeEvent(msg.Payload)
		if err != nil {
			log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping malformed event")
			continue
		}
		if err := b.local.Publish(context.Background(), evt); err != nil {
			return
		}
	}
}

func (b *RedisBus) Publish(ctx context.Context, evt TransactionRecorded) error {
	payload, err := encodeEvent(evt)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

func (b *RedisBus) Subscribe(handler Handler) (Subscription, error) {
	return b.local.Subscribe(handler)
}

// Close stops the fan-out loop and drops local subscribers. The client is
// owned by the caller.
func (b *RedisBus) Close() error {
	err := b.pubsub.Close()
	<-b.done
	_ = b.local.Close()
	return err
}

func encodeEvent(evt TransactionRecorded) ([]byte, error) {
	return json.Marshal(evt)
}

func decodeEvent(payload string) (TransactionRecorded, error) {
	var evt TransactionRecorded
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return evt, fmt.Errorf("decode event: %w", err)
	}
	return evt, nil
}
