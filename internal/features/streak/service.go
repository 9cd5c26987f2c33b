// Package streak — service.go: единственный путь записи серии.
package streak

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

// Service управляет стрик-системой.
type Service struct {
	repo *Repository
}

// NewService создаёт новый сервис стриков.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// UpdateStreak применяет счёт нового отчёта к серии пользователя.
// Выполняется внутри транзакции сохранения отчёта: streaks и members
// обновляются вместе с балансом или не обновляются вовсе.
func (s *Service) UpdateStreak(ctx context.Context, tx pgx.Tx, userID int64, score int, logDate time.Time) (State, error) {
	prev, err := lockTx(ctx, tx, userID)
	if err != nil {
		return State{}, err
	}

	next := Next(prev, score)
	if err := saveTx(ctx, tx, userID, next, logDate); err != nil {
		return State{}, err
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"score":   score,
		"current": next.Current,
		"best":    next.Best,
	}).Debug("Стрик обновлён")
	return next, nil
}

// GetStreak возвращает информацию о стрике пользователя.
func (s *Service) GetStreak(ctx context.Context, userID int64) (*Streak, error) {
	return s.repo.GetByUserID(ctx, userID)
}
