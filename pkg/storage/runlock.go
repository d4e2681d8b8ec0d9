package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/synaptica-ai/warehouse/pkg/common/logger"
	"github.com/synaptica-ai/warehouse/pkg/common/models"
)

var ErrLockHeld = errors.New("entity run already in progress")

const keyPrefix = "warehouse"

// releaseScript deletes the lock only while it still carries our token, so an
// expired lock taken over by another runner is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func lockKey(layer, entity string) string {
	return fmt.Sprintf("%s:lock:%s:%s", keyPrefix, layer, entity)
}

func lastRunKey(layer, entity string) string {
	return fmt.Sprintf("%s:last:%s:%s", keyPrefix, layer, entity)
}

// RunLock serializes runs of the same entity across processes.
type RunLock struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRunLock(client *redis.Client, ttl time.Duration) *RunLock {
	return &RunLock{client: client, ttl: ttl}
}

// Acquire takes the lock for layer/entity and returns the release token.
func (l *RunLock) Acquire(ctx context.Context, layer, entity string) (string, error) {
	token := uuid.New().String()
	ok, err := l.client.SetNX(ctx, lockKey(layer, entity), token, l.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return "", ErrLockHeld
	}
	return token, nil
}

func (l *RunLock) Release(ctx context.Context, layer, entity, token string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{lockKey(layer, entity)}, token).Int64()
	if err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	if n == 0 {
		logger.Log.WithFields(map[string]interface{}{
			"layer":  layer,
			"entity": entity,
		}).Warn("run lock expired before release")
	}
	return nil
}

// LocalLock serializes runs of the same entity within one process. It is the
// fallback when no redis lock is configured.
type LocalLock struct {
	mu   sync.Mutex
	held map[string]string
}

func NewLocalLock() *LocalLock {
	return &LocalLock{held: make(map[string]string)}
}

func (l *LocalLock) Acquire(_ context.Context, layer, entity string) (string, error) {
	key := lockKey(layer, entity)
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", ErrLockHeld
	}
	token := uuid.New().String()
	l.held[key] = token
	return token, nil
}

func (l *LocalLock) Release(_ context.Context, layer, entity, token string) error {
	key := lockKey(layer, entity)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

// LastRunCache keeps the latest stats per entity for the ops API.
type LastRunCache struct {
	client *redis.Client
}

func NewLastRunCache(client *redis.Client) *LastRunCache {
	return &LastRunCache{client: client}
}

func (c *LastRunCache) Store(ctx context.Context, stats models.EntityStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, lastRunKey(stats.Layer, stats.Entity), data, 0).Err()
}

// Last returns nil without error when nothing has been cached yet.
func (c *LastRunCache) Last(ctx context.Context, layer, entity string) (*models.EntityStats, error) {
	data, err := c.client.Get(ctx, lastRunKey(layer, entity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats models.EntityStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("decode cached stats: %w", err)
	}
	return &stats, nil
}
