// Package friends — repository.go выполняет операции с таблицей friendships.
// Дружба взаимная: на каждую пару две строки, в обе стороны.
package friends

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/db/postgres"
)

// Repository работает с таблицей friendships.
type Repository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewRepository создаёт репозиторий друзей.
func NewRepository(db *pgxpool.Pool, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

// Add связывает двух участников в обе стороны.
func (r *Repository) Add(ctx context.Context, userID, friendID int64) error {
	return postgres.InTx(ctx, r.db, r.timeout, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			INSERT INTO friendships (user_id, friend_id)
			VALUES ($1, $2), ($2, $1)
			ON CONFLICT DO NOTHING
		`, userID, friendID)
		if postgres.IsCode(err, postgres.CodeForeignKeyViolation) {
			return common.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("ошибка добавления в друзья: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return common.ErrAlreadyFriends
		}
		return nil
	})
}

// Remove разрывает дружбу с обеих сторон.
func (r *Repository) Remove(ctx context.Context, userID, friendID int64) error {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		DELETE FROM friendships
		WHERE (user_id = $1 AND friend_id = $2) OR (user_id = $2 AND friend_id = $1)
	`, userID, friendID)
	if err != nil {
		return fmt.Errorf("ошибка удаления из друзей: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFriends
	}
	return nil
}

// List возвращает друзей с балансом, серией и последним отчётом.
func (r *Repository) List(ctx context.Context, userID int64) ([]*Friend, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT m.user_id, m.username, m.display_name, m.timezone,
		       COALESCE(b.balance, 0), COALESCE(b.total_earned, 0),
		       m.current_streak, m.best_streak,
		       l.log_date, COALESCE(l.total_score, 0),
		       f.created_at
		FROM friendships f
		JOIN members m ON m.user_id = f.friend_id
		LEFT JOIN balances b ON b.user_id = m.user_id
		LEFT JOIN LATERAL (
			SELECT log_date, total_score
			FROM daily_logs
			WHERE user_id = m.user_id
			ORDER BY log_date DESC
			LIMIT 1
		) l ON TRUE
		WHERE f.user_id = $1
		ORDER BY COALESCE(b.total_earned, 0) DESC, m.user_id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения друзей: %w", err)
	}
	defer rows.Close()

	var out []*Friend
	for rows.Next() {
		var f Friend
		err := rows.Scan(
			&f.UserID, &f.Username, &f.DisplayName, &f.Timezone,
			&f.Balance, &f.TotalEarned,
			&f.CurrentStreak, &f.BestStreak,
			&f.LastLogDate, &f.LastLogScore,
			&f.Since,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования друга: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
