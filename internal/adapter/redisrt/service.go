// Package redisrt implements the realtime data service over Redis:
// key/value and hash storage for the path schema, pub/sub change
// notifications for standing subscriptions.
//
// Path mapping: a single-segment path ("sensor_readings", "alerts") is a
// plain string key holding a JSON document; a two-segment path
// ("forum/{id}", "users/{uid}") is a field in the hash named by the first
// segment. Subscribing to a top-level path delivers the full value there
// (the whole hash for collections) on every change, matching the
// full-snapshot, never-a-diff delivery model.
package redisrt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/an-gr-hh1/landslide-sync/internal/feed"
)

const channelPrefix = "rt:"

// Service is a feed.RealtimeService backed by a Redis instance.
type Service struct {
	client *redis.Client
	logger *slog.Logger
}

// New creates a Service over an existing Redis client.
func New(client *redis.Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

// Subscribe opens a pub/sub subscription on the path's top-level segment.
// The current value is delivered immediately, then again after every
// change notification. Deliveries for one subscription are serialized by a
// single goroutine, so they arrive in notification order. A fetch failure
// is delivered once through the sink's error callback and ends delivery;
// resubscribing is the caller's decision.
func (s *Service) Subscribe(ctx context.Context, path string, sink feed.Sink) (func(), error) {
	root := rootSegment(path)
	pubsub := s.client.Subscribe(ctx, channelPrefix+root)

	// Force the subscription onto the wire before the initial read so a
	// write racing with Subscribe is never missed entirely.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", path, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)

		value, err := s.Get(ctx, path)
		if err != nil {
			sink.OnError(err)
			return
		}
		sink.OnValue(value)

		for range pubsub.Channel() {
			value, err := s.Get(ctx, path)
			if err != nil {
				sink.OnError(err)
				return
			}
			sink.OnValue(value)
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			pubsub.Close()
			<-done
		})
	}
	return cancel, nil
}

// Get fetches the full current value at path. Missing paths yield nil
// without an error, mirroring an empty database snapshot.
func (s *Service) Get(ctx context.Context, path string) (any, error) {
	root, child, isChild := splitPath(path)

	if isChild {
		raw, err := s.client.HGet(ctx, root, child).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", path, err)
		}
		return decodeJSON(raw)
	}

	kind, err := s.client.Type(ctx, root).Result()
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}

	switch kind {
	case "none":
		return nil, nil
	case "hash":
		fields, err := s.client.HGetAll(ctx, root).Result()
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", path, err)
		}
		children := make(map[string]any, len(fields))
		for id, raw := range fields {
			value, err := decodeJSON(raw)
			if err != nil {
				// A corrupt child must not poison the whole snapshot.
				s.logger.Warn("skipping undecodable child", "path", root+"/"+id, "error", err)
				continue
			}
			children[id] = value
		}
		return children, nil
	default:
		raw, err := s.client.Get(ctx, root).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("get %s: %w", path, err)
		}
		return decodeJSON(raw)
	}
}

// Set upserts the full value at path and notifies subscribers of the
// path's top-level segment.
func (s *Service) Set(ctx context.Context, path string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("set %s: encode: %w", path, err)
	}

	root, child, isChild := splitPath(path)
	if isChild {
		if err := s.client.HSet(ctx, root, child, payload).Err(); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	} else {
		if err := s.client.Set(ctx, root, payload, 0).Err(); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}

	if err := s.client.Publish(ctx, channelPrefix+root, child).Err(); err != nil {
		return fmt.Errorf("notify %s: %w", path, err)
	}
	return nil
}

// Push allocates a new server-assigned child id under path without writing
// anything.
func (s *Service) Push(_ context.Context, _ string) (string, error) {
	return strings.ReplaceAll(uuid.NewString(), "-", ""), nil
}

func rootSegment(path string) string {
	root, _, _ := splitPath(path)
	return root
}

func splitPath(path string) (root, child string, isChild bool) {
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 2 && parts[1] != "" {
		return parts[0], parts[1], true
	}
	return parts[0], "", false
}

func decodeJSON(raw string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	return value, nil
}
