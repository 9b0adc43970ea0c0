package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"wechatkf-golang/refactor/internal/config"
	jsonpkg "wechatkf-golang/refactor/internal/pkg/json"
)

// redisClient 是 RedisStore 用到的最小命令集合。
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Close() error
}

type RedisStore struct {
	client    redisClient
	keyPrefix string
	now       func() time.Time
}

func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", cfg.RedisAddr, err)
	}

	return newRedisStore(client, cfg.RedisKeyPrefix), nil
}

func newRedisStore(client redisClient, keyPrefix string) *RedisStore {
	return &RedisStore{client: client, keyPrefix: keyPrefix, now: time.Now}
}

func (s *RedisStore) key(appID string) string {
	return s.keyPrefix + ":" + appID
}

func (s *RedisStore) Load(ctx context.Context, appID string) (*AccessToken, error) {
	raw, err := s.client.Get(ctx, s.key(appID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get %s: %w", s.key(appID), err)
	}

	var t AccessToken
	if err := jsonpkg.UnmarshalString(raw, &t); err != nil {
		return nil, fmt.Errorf("redis value %s: %w", s.key(appID), err)
	}
	return &t, nil
}

// Save 写入 token，键的过期时间与 token 剩余有效期一致。
func (s *RedisStore) Save(ctx context.Context, appID string, token *AccessToken) error {
	ttl := token.ExpiresAt().Sub(s.now())
	if ttl <= 0 {
		return nil
	}

	raw, err := jsonpkg.MarshalString(token)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(appID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key(appID), err)
	}
	return nil
}

// Close 关闭底层连接池。
func (s *RedisStore) Close() error {
	return s.client.Close()
}
