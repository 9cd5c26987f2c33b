// Package streak — repository.go выполняет операции с таблицей streaks.
package streak

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/db/postgres"
)

// Repository предоставляет методы для работы с таблицей streaks.
type Repository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewRepository создаёт новый репозиторий стриков.
func NewRepository(db *pgxpool.Pool, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

// GetByUserID возвращает стрик пользователя.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Streak, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	var s Streak
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, current_streak, best_streak, last_log_date, total_logs,
		       created_at, updated_at
		FROM streaks
		WHERE user_id = $1
	`, userID).Scan(
		&s.ID, &s.UserID, &s.CurrentStreak, &s.BestStreak, &s.LastLogDate, &s.TotalLogs,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения стрика (user_id=%d): %w", userID, err)
	}
	return &s, nil
}

// lockTx читает серию с блокировкой строки. Нет строки — создаёт нулевую.
func lockTx(ctx context.Context, tx pgx.Tx, userID int64) (State, error) {
	if _, err := tx.Exec(ctx, `
		INSERT INTO streaks (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return State{}, fmt.Errorf("ошибка создания стрика: %w", err)
	}

	var s State
	err := tx.QueryRow(ctx, `
		SELECT current_streak, best_streak FROM streaks WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&s.Current, &s.Best)
	if err != nil {
		return State{}, fmt.Errorf("ошибка чтения стрика: %w", err)
	}
	return s, nil
}

// saveTx пишет серию в streaks и зеркалит её в members в той же транзакции.
func saveTx(ctx context.Context, tx pgx.Tx, userID int64, s State, logDate time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE streaks
		SET current_streak = $2, best_streak = $3, last_log_date = $4,
		    total_logs = total_logs + 1, updated_at = NOW()
		WHERE user_id = $1
	`, userID, s.Current, s.Best, logDate)
	if err != nil {
		return fmt.Errorf("ошибка обновления стрика: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE members
		SET current_streak = $2, best_streak = $3, updated_at = NOW()
		WHERE user_id = $1
	`, userID, s.Current, s.Best)
	if err != nil {
		return fmt.Errorf("ошибка обновления стрика участника: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}
