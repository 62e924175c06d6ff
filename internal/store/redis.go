package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	redis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RedisStore keeps each collection in a hash keyed by path and publishes a
// change message per append, which subscribers turn into full re-reads.
type RedisStore struct {
	conn *redis.Client
}

// NewRedisStore connects to Redis at the given URL.
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("parsing redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	return &RedisStore{conn: client}, nil
}

// Append stores the JSON-encoded body under a fresh key and notifies
// subscribers. Keys carry a per-collection sequence number so that key
// order is insertion order.
func (s *RedisStore) Append(ctx context.Context, path string, body any) (string, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling record for %q: %w", path, err)
	}

	seq, err := s.conn.Incr(ctx, path+":seq").Result()
	if err != nil {
		return "", fmt.Errorf("sequencing record for %q: %w", path, err)
	}
	key := fmt.Sprintf("%08d-%s", seq, uuid.NewString()[:8])

	if err := s.conn.HSet(ctx, path, key, b).Err(); err != nil {
		return "", fmt.Errorf("storing record %q in %q: %w", key, path, err)
	}

	if err := s.conn.Publish(ctx, changeChannel(path), key).Err(); err != nil {
		return "", fmt.Errorf("notifying %q change: %w", path, err)
	}

	return key, nil
}

type redisSubscription struct {
	pubsub *redis.PubSub
	close  sync.Once
}

// Subscribe attaches a listener to the collection's change channel and
// starts a delivery goroutine: one initial snapshot, then one per change
// message. Deliveries for a subscription never overlap.
func (s *RedisStore) Subscribe(ctx context.Context, path string, fn SnapshotFunc) (Handle, error) {
	pubsub := s.conn.Subscribe(ctx, changeChannel(path))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("attaching listener to %q: %w", path, err)
	}

	sub := &redisSubscription{pubsub: pubsub}

	go func() {
		snap, err := s.read(ctx, path)
		if err != nil {
			logrus.WithError(err).Errorf("initial snapshot of %q", path)
		} else {
			fn(snap)
		}

		for range pubsub.Channel() {
			snap, err := s.read(ctx, path)
			if err != nil {
				logrus.WithError(err).Errorf("re-reading %q after change", path)
				continue
			}
			fn(snap)
		}
	}()

	return sub, nil
}

// Unsubscribe closes the subscription's channel. It does not wait for a
// delivery already in flight; subscribers discard those via their handle
// check.
func (s *RedisStore) Unsubscribe(h Handle) {
	sub, ok := h.(*redisSubscription)
	if !ok || sub == nil {
		return
	}
	sub.close.Do(func() {
		if err := sub.pubsub.Close(); err != nil {
			logrus.WithError(err).Error("closing subscription")
		}
	})
}

func (s *RedisStore) read(ctx context.Context, path string) (Snapshot, error) {
	vals, err := s.conn.HGetAll(ctx, path).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading collection %q: %w", path, err)
	}
	if len(vals) == 0 {
		// Never written to: an empty snapshot, not an error.
		return Snapshot{}, nil
	}

	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]SnapshotEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, SnapshotEntry{Key: k, Body: []byte(vals[k])})
	}
	return Snapshot{Exists: true, Entries: entries}, nil
}

func changeChannel(path string) string {
	return path + ":changes"
}
