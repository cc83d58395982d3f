package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/tilsley/bindle/apps/server/internal/importer"
	"github.com/tilsley/bindle/pkg/api"
)

const (
	redisIndexKey      = "containers:index"
	redisKeyPrefix     = "container:"
	redisNameKeyPrefix = "containername:" // lowercased name → container id
)

// Compile-time check: *RedisContainerStore implements importer.ContainerStore.
var _ importer.ContainerStore = (*RedisContainerStore)(nil)

// RedisContainerStore implements ContainerStore using go-redis directly.
// Containers are stored as JSON blobs with a lowercased-name key providing
// the case-insensitive uniqueness lookup.
type RedisContainerStore struct {
	rdb *redis.Client
}

// NewRedisContainerStore creates a new RedisContainerStore.
func NewRedisContainerStore(rdb *redis.Client) *RedisContainerStore {
	return &RedisContainerStore{rdb: rdb}
}

// Save persists a container, adds its ID to the index set, and registers its
// lowercased name for lookup.
func (s *RedisContainerStore) Save(ctx context.Context, c api.Container) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal container: %w", err)
	}
	if err := s.rdb.Set(ctx, redisKeyPrefix+c.Id, data, 0).Err(); err != nil {
		return fmt.Errorf("save container %q: %w", c.Id, err)
	}
	// SADD is idempotent — safe to call even if the ID is already in the set.
	if err := s.rdb.SAdd(ctx, redisIndexKey, c.Id).Err(); err != nil {
		return fmt.Errorf("update index for %q: %w", c.Id, err)
	}
	if err := s.rdb.Set(ctx, redisNameKeyPrefix+strings.ToLower(c.Name), c.Id, 0).Err(); err != nil {
		return fmt.Errorf("register name %q: %w", c.Name, err)
	}
	return nil
}

// Get retrieves a container by ID, returning nil if not found.
func (s *RedisContainerStore) Get(ctx context.Context, id string) (*api.Container, error) {
	val, err := s.rdb.Get(ctx, redisKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil //nolint:nilnil // caller checks nil value to detect "not found"
	}
	if err != nil {
		return nil, fmt.Errorf("get container %q: %w", id, err)
	}
	var c api.Container
	if err := json.Unmarshal([]byte(val), &c); err != nil {
		return nil, fmt.Errorf("unmarshal container %q: %w", id, err)
	}
	return &c, nil
}

// GetByName resolves a case-insensitive exact name match, returning nil if
// no container carries the name.
func (s *RedisContainerStore) GetByName(ctx context.Context, name string) (*api.Container, error) {
	id, err := s.rdb.Get(ctx, redisNameKeyPrefix+strings.ToLower(name)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil //nolint:nilnil // caller checks nil value to detect "not found"
	}
	if err != nil {
		return nil, fmt.Errorf("resolve name %q: %w", name, err)
	}
	return s.Get(ctx, id)
}

// List returns all containers in the index.
func (s *RedisContainerStore) List(ctx context.Context) ([]api.Container, error) {
	ids, err := s.rdb.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list index: %w", err)
	}
	result := make([]api.Container, 0, len(ids))
	for _, id := range ids {
		c, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if c != nil {
			result = append(result, *c)
		}
	}
	return result, nil
}
