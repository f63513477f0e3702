package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"icelook/config"
)

// Cache — обёртка над Redis для кеширования списков свободных слотов.
// Кеш не является источником истины: любое изменение записей на дату
// инвалидирует соответствующий ключ.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(cfg config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	return &Cache{client: client, ttl: cfg.TTL}, nil
}

func freeSlotsKey(beautyPageID int64, date string) string {
	return fmt.Sprintf("free-slots:%d:%s", beautyPageID, date)
}

// GetFreeSlots возвращает закешированный список слотов или (nil, false).
func (c *Cache) GetFreeSlots(ctx context.Context, beautyPageID int64, date string) ([]string, bool) {
	data, err := c.client.Get(ctx, freeSlotsKey(beautyPageID, date)).Bytes()
	if err != nil {
		return nil, false
	}

	var slots []string
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, false
	}

	return slots, true
}

func (c *Cache) SetFreeSlots(ctx context.Context, beautyPageID int64, date string, slots []string) error {
	data, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, freeSlotsKey(beautyPageID, date), data, c.ttl).Err()
}

// InvalidateFreeSlots сбрасывает кеш слотов страницы на дату.
func (c *Cache) InvalidateFreeSlots(ctx context.Context, beautyPageID int64, date string) error {
	return c.client.Del(ctx, freeSlotsKey(beautyPageID, date)).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
