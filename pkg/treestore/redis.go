package treestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrNodeNotFound = errors.New("treestore: node not found")

const (
	valuePrefix    = "tree:node:"
	childrenSuffix = ":children"
	channelPrefix  = "tree:events:"
)

// RedisStore implements TreeStore on Redis. Node values live as JSON
// strings, child keys in a set alongside the parent, and change events
// fan out over Redis pub/sub so every process instance sees them.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) WriteNode(ctx context.Context, path string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal node %s: %w", path, err)
	}

	if err := s.client.Set(ctx, valuePrefix+path, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write node %s: %w", path, err)
	}

	s.publish(ctx, ChangeEvent{Path: path, Kind: "write", Data: data})
	return nil
}

func (s *RedisStore) AppendToList(ctx context.Context, path string, value interface{}) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to marshal list entry for %s: %w", path, err)
	}

	// Keys sort chronologically so children list in insertion order.
	key := fmt.Sprintf("%020d-%s", time.Now().UnixNano(), uuid.NewString()[:8])
	childPath := path + "/" + key

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, valuePrefix+childPath, data, 0)
	pipe.SAdd(ctx, valuePrefix+path+childrenSuffix, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("failed to append to %s: %w", path, err)
	}

	s.publish(ctx, ChangeEvent{Path: childPath, Kind: "append", Key: key, Data: data})
	return key, nil
}

func (s *RedisStore) WriteChild(ctx context.Context, path, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal child %s of %s: %w", key, path, err)
	}

	childPath := path + "/" + key
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, valuePrefix+childPath, data, 0)
	pipe.SAdd(ctx, valuePrefix+path+childrenSuffix, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write child %s of %s: %w", key, path, err)
	}

	s.publish(ctx, ChangeEvent{Path: childPath, Kind: "write", Key: key, Data: data})
	return nil
}

func (s *RedisStore) ReadNode(ctx context.Context, path string, dest interface{}) error {
	data, err := s.client.Get(ctx, valuePrefix+path).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNodeNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read node %s: %w", path, err)
	}

	return json.Unmarshal(data, dest)
}

func (s *RedisStore) ListChildren(ctx context.Context, path string) (map[string]json.RawMessage, error) {
	keys, err := s.client.SMembers(ctx, valuePrefix+path+childrenSuffix).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list children of %s: %w", path, err)
	}

	children := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, valuePrefix+path+"/"+key).Bytes()
		if errors.Is(err, redis.Nil) {
			// Index entry without a value, skip it.
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read child %s of %s: %w", key, path, err)
		}
		children[key] = json.RawMessage(data)
	}

	return children, nil
}

func (s *RedisStore) SubscribeToNode(ctx context.Context, path string) (<-chan ChangeEvent, func(), error) {
	sub := s.client.PSubscribe(ctx, channelPrefix+path+"*")
	if _, err := sub.Receive(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", path, err)
	}

	out := make(chan ChangeEvent, 16)
	done := make(chan struct{})

	go func() {
		defer close(out)
		ch := sub.Channel()
		for {
			select {
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case out <- event:
				default:
					// Slow consumer, drop rather than block the reader.
				}
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}

	return out, cancel, nil
}

func (s *RedisStore) DeleteNode(ctx context.Context, path string) error {
	keys, err := s.client.SMembers(ctx, valuePrefix+path+childrenSuffix).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to list children of %s: %w", path, err)
	}

	pipe := s.client.TxPipeline()
	for _, key := range keys {
		pipe.Del(ctx, valuePrefix+path+"/"+key)
	}
	pipe.Del(ctx, valuePrefix+path+childrenSuffix)
	pipe.Del(ctx, valuePrefix+path)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete node %s: %w", path, err)
	}

	// Remove from parent index when the node itself is a list child.
	if idx := lastSlash(path); idx > 0 {
		parent, key := path[:idx], path[idx+1:]
		_ = s.client.SRem(ctx, valuePrefix+parent+childrenSuffix, key).Err()
	}

	s.publish(ctx, ChangeEvent{Path: path, Kind: "delete"})
	return nil
}

func (s *RedisStore) publish(ctx context.Context, event ChangeEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	_ = s.client.Publish(ctx, channelPrefix+event.Path, data).Err()
}

func lastSlash(path string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return i
		}
	}
	return -1
}
