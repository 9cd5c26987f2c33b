// Package dailylog — repository.go выполняет операции с таблицей daily_logs.
package dailylog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/progress-bot/internal/db/postgres"
	"serotonyl.ru/progress-bot/internal/features/appdate"
)

const logColumns = `
	id, user_id, log_date, wake_time, study_hours, break_hours, wasted_hours,
	tasks_assigned, tasks_completed, notes,
	study_points, task_points, wake_points, waste_penalty, total_score,
	created_at, updated_at
`

// Repository предоставляет методы для работы с отчётами.
type Repository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewRepository создаёт новый репозиторий отчётов.
func NewRepository(db *pgxpool.Pool, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

// InTx выполняет fn в одной транзакции.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return postgres.InTx(ctx, r.db, r.timeout, fn)
}

// getForUpdateTx читает отчёт за день с блокировкой строки. Нет отчёта — nil, nil.
func getForUpdateTx(ctx context.Context, tx pgx.Tx, userID int64, date time.Time) (*DailyLog, error) {
	l, err := scanLog(tx.QueryRow(ctx,
		`SELECT `+logColumns+` FROM daily_logs WHERE user_id = $1 AND log_date = $2 FOR UPDATE`,
		userID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения отчёта: %w", err)
	}
	return l, nil
}

// upsertTx вставляет отчёт или перезаписывает существующий за тот же день.
func upsertTx(ctx context.Context, tx pgx.Tx, l *DailyLog, date time.Time) (*DailyLog, error) {
	saved, err := scanLog(tx.QueryRow(ctx, `
		INSERT INTO daily_logs (
			user_id, log_date, wake_time, study_hours, break_hours, wasted_hours,
			tasks_assigned, tasks_completed, notes,
			study_points, task_points, wake_points, waste_penalty, total_score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (user_id, log_date) DO UPDATE
		SET wake_time = EXCLUDED.wake_time,
		    study_hours = EXCLUDED.study_hours,
		    break_hours = EXCLUDED.break_hours,
		    wasted_hours = EXCLUDED.wasted_hours,
		    tasks_assigned = EXCLUDED.tasks_assigned,
		    tasks_completed = EXCLUDED.tasks_completed,
		    notes = EXCLUDED.notes,
		    study_points = EXCLUDED.study_points,
		    task_points = EXCLUDED.task_points,
		    wake_points = EXCLUDED.wake_points,
		    waste_penalty = EXCLUDED.waste_penalty,
		    total_score = EXCLUDED.total_score,
		    updated_at = NOW()
		RETURNING `+logColumns,
		l.UserID, date, l.WakeTime, l.StudyHours, l.BreakHours, l.WastedHours,
		l.TasksAssigned, l.TasksCompleted, l.Notes,
		l.StudyPoints, l.TaskPoints, l.WakePoints, l.WastePenalty, l.TotalScore,
	))
	if err != nil {
		return nil, fmt.Errorf("ошибка сохранения отчёта: %w", err)
	}
	return saved, nil
}

// GetByDate возвращает отчёт за день. Нет отчёта — nil, nil.
func (r *Repository) GetByDate(ctx context.Context, userID int64, date time.Time) (*DailyLog, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	l, err := scanLog(r.db.QueryRow(ctx,
		`SELECT `+logColumns+` FROM daily_logs WHERE user_id = $1 AND log_date = $2`,
		userID, date))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения отчёта: %w", err)
	}
	return l, nil
}

// ListRecent возвращает последние limit отчётов, новые сверху.
func (r *Repository) ListRecent(ctx context.Context, userID int64, limit int) ([]*DailyLog, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT `+logColumns+` FROM daily_logs WHERE user_id = $1 ORDER BY log_date DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отчётов: %w", err)
	}
	defer rows.Close()

	var out []*DailyLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования отчёта: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Exists проверяет, сдан ли отчёт за день (для напоминаний).
func (r *Repository) Exists(ctx context.Context, userID int64, date time.Time) (bool, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM daily_logs WHERE user_id = $1 AND log_date = $2)`,
		userID, date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки отчёта: %w", err)
	}
	return exists, nil
}

func scanLog(row pgx.Row) (*DailyLog, error) {
	var l DailyLog
	var date time.Time
	err := row.Scan(
		&l.ID, &l.UserID, &date, &l.WakeTime, &l.StudyHours, &l.BreakHours, &l.WastedHours,
		&l.TasksAssigned, &l.TasksCompleted, &l.Notes,
		&l.StudyPoints, &l.TaskPoints, &l.WakePoints, &l.WastePenalty, &l.TotalScore,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Date = date.Format(appdate.DateLayout)
	return &l, nil
}
