// Package redisdb создаёт клиент Redis для кэшей.
// Redis необязателен: без адреса кэш выключен и всё читается из PostgreSQL.
package redisdb

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/config"
)

// NewClient возвращает клиента Redis или nil, если REDIS_ADDR не задан.
// Недоступный при старте Redis не ошибка: кэш работает по принципу fail-open.
func NewClient(ctx context.Context, cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		log.Info("REDIS_ADDR не задан, кэш лидерборда выключен")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("Redis недоступен, лидерборд будет читаться из БД")
	} else {
		log.WithField("addr", cfg.RedisAddr).Info("Redis подключён")
	}
	return client
}
