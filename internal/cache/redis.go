package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisClient — кэш проекции остатков для витрины. Источником правды не является:
// движки одобрений ходят мимо него напрямую в БД.
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisClient(addr, password string, db int, ttl time.Duration, log *zap.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Info("Redis connected successfully", zap.String("addr", addr))

	return &RedisClient{
		client: rdb,
		ttl:    ttl,
		log:    log,
	}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

func availabilityKey(itemID uuid.UUID) string {
	return fmt.Sprintf("availability:%s", itemID)
}

func (r *RedisClient) GetAvailability(ctx context.Context, itemID uuid.UUID) (*service.ItemAvailability, bool) {
	data, err := r.client.Get(ctx, availabilityKey(itemID)).Bytes()
	if err != nil {
		return nil, false
	}

	var av service.ItemAvailability
	if err := json.Unmarshal(data, &av); err != nil {
		r.log.Warn("Битая запись в кэше остатков", zap.String("item_id", itemID.String()), zap.Error(err))
		return nil, false
	}
	return &av, true
}

func (r *RedisClient) SetAvailability(ctx context.Context, av *service.ItemAvailability) error {
	data, err := json.Marshal(av)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, availabilityKey(av.ItemID), data, r.ttl).Err()
}

func (r *RedisClient) Invalidate(ctx context.Context, itemIDs ...uuid.UUID) error {
	if len(itemIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		keys = append(keys, availabilityKey(id))
	}
	return r.client.Del(ctx, keys...).Err()
}
