// cache - кэш пользователей для резолвинга токенов.
// В кэше лежат только id, email и время регистрации: хэш пароля туда не попадает.
package cache

//go:generate mockgen -destination=../../mocks/mock_cache.go -package=mocks github.com/pribylovaa/go-contacts-service/internal/cache UserCache

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pribylovaa/go-contacts-service/internal/models"
)

// UserCache - минимальный контракт кэша пользователей по email.
type UserCache interface {
	// Get возвращает пользователя и признак его наличия в кэше.
	Get(ctx context.Context, email string) (*models.User, bool, error)
	// Set сохраняет пользователя с TTL.
	Set(ctx context.Context, user *models.User, ttl time.Duration) error
	// Delete удаляет запись (например, после удаления пользователя).
	Delete(ctx context.Context, email string) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой - используется "contacts:user:".
func NewRedisCache(ctx context.Context, redisURL, prefix string) (UserCache, error) {
	if prefix == "" {
		prefix = "contacts:user:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(email string) string { return c.prefix + email }

// Храним как Redis Hash с полями: id, email, created (unix ms).
func (c *redisCache) Get(ctx context.Context, email string) (*models.User, bool, error) {
	m, err := c.rdb.HGetAll(ctx, c.key(email)).Result()
	if err != nil {
		return nil, false, err
	}

	if len(m) == 0 {
		return nil, false, nil
	}

	id, err := strconv.ParseInt(m["id"], 10, 64)
	if err != nil {
		return nil, false, err
	}

	created, err := strconv.ParseInt(m["created"], 10, 64)
	if err != nil {
		return nil, false, err
	}

	return &models.User{
		ID:        id,
		Email:     m["email"],
		CreatedAt: time.UnixMilli(created).UTC(),
	}, true, nil
}

func (c *redisCache) Set(ctx context.Context, user *models.User, ttl time.Duration) error {
	kv := map[string]string{
		"id":      strconv.FormatInt(user.ID, 10),
		"email":   user.Email,
		"created": strconv.FormatInt(user.CreatedAt.UnixMilli(), 10),
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, c.key(user.Email), kv)
	pipe.Expire(ctx, c.key(user.Email), ttl)

	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisCache) Delete(ctx context.Context, email string) error {
	return c.rdb.Del(ctx, c.key(email)).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
