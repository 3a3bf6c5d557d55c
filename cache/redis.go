// Package cache guarda no redis a completude do cadastro consumida pela
// navegação (menu "completar perfil" x "editar perfil").
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"psiconecta/config"
	"psiconecta/entitlement"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	*redis.Client
	ttl time.Duration
}

func NewRedisClient(cfg config.RedisConfig) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{Client: rdb, ttl: time.Duration(cfg.TTLSeconds) * time.Second}, nil
}

func (r *RedisClient) Close() error {
	return r.Client.Close()
}

// Health pinga o redis com timeout curto (rota /health).
func (r *RedisClient) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	return r.Ping(ctx).Err()
}

func completenessKey(userID int64) string {
	return fmt.Sprintf("profile:completeness:%d", userID)
}

// Publish grava a completude recalculada de userID.
func (r *RedisClient) Publish(ctx context.Context, userID int64, c entitlement.Completeness) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.Set(ctx, completenessKey(userID), b, r.ttl).Err()
}

// Completeness lê o valor publicado. ok=false quando não há valor em cache.
func (r *RedisClient) Completeness(ctx context.Context, userID int64) (c entitlement.Completeness, ok bool, err error) {
	b, err := r.Get(ctx, completenessKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return c, false, nil
	}
	if err != nil {
		return c, false, err
	}
	if err := json.Unmarshal(b, &c); err != nil {
		return c, false, err
	}
	return c, true, nil
}
