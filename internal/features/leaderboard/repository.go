// Package leaderboard — repository.go читает рейтинг из members и balances.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/progress-bot/internal/db/postgres"
)

const entrySelect = `
	SELECT m.user_id, m.username, m.display_name, m.avatar_ref,
	       b.total_earned, b.balance, m.current_streak, m.best_streak
	FROM members m
	JOIN balances b ON b.user_id = m.user_id
`

// Repository читает рейтинг.
type Repository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewRepository создаёт репозиторий рейтинга.
func NewRepository(db *pgxpool.Pool, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

// Top возвращает первые limit участников.
func (r *Repository) Top(ctx context.Context, limit int) ([]*Entry, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, entrySelect+`
		ORDER BY b.total_earned DESC, b.balance DESC, m.user_id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения рейтинга: %w", err)
	}
	return collectEntries(rows)
}

// Circle возвращает пользователя и его друзей.
func (r *Repository) Circle(ctx context.Context, userID int64) ([]*Entry, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, entrySelect+`
		WHERE m.user_id = $1
		   OR m.user_id IN (SELECT friend_id FROM friendships WHERE user_id = $1)
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения рейтинга друзей: %w", err)
	}
	return collectEntries(rows)
}

func collectEntries(rows pgx.Rows) ([]*Entry, error) {
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		err := rows.Scan(
			&e.UserID, &e.Username, &e.DisplayName, &e.AvatarRef,
			&e.TotalEarned, &e.Balance, &e.CurrentStreak, &e.BestStreak,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования рейтинга: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
