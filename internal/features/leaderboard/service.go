// Package leaderboard — service.go собирает рейтинг: общий (с кэшем) и среди друзей.
package leaderboard

import (
	"context"
)

// TopSize — сколько строк общего рейтинга хранится в кэше
const TopSize = 50

// Service отдаёт рейтинг.
type Service struct {
	repo  *Repository
	cache *Cache
}

// NewService создаёт сервис рейтинга. cache может быть nil.
func NewService(repo *Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Top возвращает первые limit строк общего рейтинга.
func (s *Service) Top(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 || limit > TopSize {
		limit = TopSize
	}

	entries, ok := s.cache.Get(ctx)
	if !ok {
		var err error
		entries, err = s.repo.Top(ctx, TopSize)
		if err != nil {
			return nil, err
		}
		entries = Rank(entries)
		s.cache.Set(ctx, entries)
	}

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Circle возвращает рейтинг пользователя и его друзей. Не кэшируется.
func (s *Service) Circle(ctx context.Context, userID int64) ([]*Entry, error) {
	entries, err := s.repo.Circle(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Rank(entries), nil
}

// Invalidate сбрасывает кэш общего рейтинга.
func (s *Service) Invalidate(ctx context.Context) {
	s.cache.Invalidate(ctx)
}
