package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dishflow/shiftbot/internal/models"
)

// Cache — кэш RoleAssignment по identity. Не источник истины:
// промах всегда уходит в леджер кодов.
type Cache interface {
	Get(ctx context.Context, identityID int64) (*models.RoleAssignment, bool)
	Set(ctx context.Context, a *models.RoleAssignment)
}

// RedisRoleCache хранит назначения ролей в Redis с TTL.
type RedisRoleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRoleCache(client *redis.Client, ttl time.Duration) *RedisRoleCache {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRoleCache{client: client, ttl: ttl}
}

func roleKey(identityID int64) string {
	return fmt.Sprintf("role:assignment:%d", identityID)
}

func (c *RedisRoleCache) Get(ctx context.Context, identityID int64) (*models.RoleAssignment, bool) {
	data, err := c.client.Get(ctx, roleKey(identityID)).Bytes()
	if err != nil {
		return nil, false
	}
	var a models.RoleAssignment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, false
	}
	return &a, true
}

func (c *RedisRoleCache) Set(ctx context.Context, a *models.RoleAssignment) {
	data, _ := json.Marshal(a)
	c.client.Set(ctx, roleKey(a.IdentityID), data, c.ttl)
}
