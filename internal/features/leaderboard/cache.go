// Package leaderboard — cache.go хранит общий рейтинг в Redis.
// Ошибки Redis не ломают рейтинг: читаем из БД, а кэш пропускаем (fail-open).
package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	cacheKey     = "leaderboard:top"
	cacheTimeout = 500 * time.Millisecond
)

// Cache — кэш общего рейтинга. Нулевой клиент — кэш выключен.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache создаёт кэш. client может быть nil.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get возвращает закэшированный рейтинг. false — промах или кэш выключен.
func (c *Cache) Get(ctx context.Context) ([]*Entry, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	raw, err := c.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.WithError(err).Warn("Ошибка чтения кэша лидерборда")
		return nil, false
	}

	var entries []*Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		log.WithError(err).Warn("Битый кэш лидерборда")
		return nil, false
	}
	return entries, true
}

// Set кладёт рейтинг в кэш на ttl.
func (c *Cache) Set(ctx context.Context, entries []*Entry) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	if err := c.client.Set(ctx, cacheKey, raw, c.ttl).Err(); err != nil {
		log.WithError(err).Warn("Ошибка записи кэша лидерборда")
	}
}

// Invalidate сбрасывает рейтинг. Вызывается после любого изменения баланса.
func (c *Cache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	if err := c.client.Del(ctx, cacheKey).Err(); err != nil {
		log.WithError(err).Warn("Не удалось сбросить кэш лидерборда, он устареет по TTL")
	}
}
