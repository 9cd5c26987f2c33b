// Package members — repository.go отвечает за все операции с таблицей members в БД.
// Каждая функция выполняет один SQL-запрос (или одну транзакцию) и возвращает результат или ошибку.
package members

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

const memberColumns = `
	id, user_id, username, display_name, avatar_ref, timezone,
	current_streak, best_streak, joined_at, created_at, updated_at
`

type Repository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewRepository(db *pgxpool.Pool, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

// Register создаёт участника вместе с нулевым балансом и стриком в одной транзакции.
// Если участник уже есть — обновляет только username и имя (пояс и стрик не трогаем).
// Возвращает true, если запись создана сейчас.
func (r *Repository) Register(ctx context.Context, m *Member) (bool, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// xmax = 0 только у только что вставленной строки
	var created bool
	err = tx.QueryRow(ctx, `
		INSERT INTO members (user_id, username, display_name, avatar_ref, timezone, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    display_name = EXCLUDED.display_name,
		    updated_at = NOW()
		RETURNING (xmax = 0)
	`, m.UserID, m.Username, m.DisplayName, m.AvatarRef, m.Timezone, time.Now().UTC()).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("ошибка создания/обновления участника: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO balances (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING
	`, m.UserID); err != nil {
		return false, fmt.Errorf("ошибка создания баланса: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO streaks (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING
	`, m.UserID); err != nil {
		return false, fmt.Errorf("ошибка создания стрика: %w", err)
	}

	return created, tx.Commit(ctx)
}

// GetByUserID: если не найден — common.ErrUserNotFound.
func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	m, err := scanMember(r.db.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE user_id = $1`, userID))
	if err != nil {
		return nil, fmt.Errorf("участник user_id=%d: %w", userID, err)
	}
	return m, nil
}

// GetByUsername ищет без учёта регистра; если не найден — common.ErrUserNotFound.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*Member, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	m, err := scanMember(r.db.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM members WHERE LOWER(username) = LOWER($1)`, username))
	if err != nil {
		return nil, fmt.Errorf("участник @%s: %w", username, err)
	}
	return m, nil
}

// SetTimezone меняет часовой пояс пользователя.
func (r *Repository) SetTimezone(ctx context.Context, userID int64, timezone string) error {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx,
		`UPDATE members SET timezone = $2, updated_at = NOW() WHERE user_id = $1`, userID, timezone)
	if err != nil {
		return fmt.Errorf("ошибка обновления часового пояса: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

// SetAvatar сохраняет ссылку на аватар (file_id из Telegram).
func (r *Repository) SetAvatar(ctx context.Context, userID int64, avatarRef string) error {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	if _, err := r.db.Exec(ctx,
		`UPDATE members SET avatar_ref = $2, updated_at = NOW() WHERE user_id = $1`, userID, avatarRef,
	); err != nil {
		return fmt.Errorf("ошибка обновления аватара: %w", err)
	}
	return nil
}

// ListAll возвращает всех участников (для планировщика напоминаний).
func (r *Repository) ListAll(ctx context.Context) ([]*Member, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT `+memberColumns+` FROM members ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса участников: %w", err)
	}
	defer rows.Close()

	var out []*Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

func scanMember(row pgx.Row) (*Member, error) {
	var m Member
	err := row.Scan(
		&m.ID, &m.UserID, &m.Username, &m.DisplayName, &m.AvatarRef, &m.Timezone,
		&m.CurrentStreak, &m.BestStreak, &m.JoinedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
