// Package economy — repository.go выполняет все операции с таблицами balances и transactions.
// Изменения баланса идут только внутри транзакций БД вызывающего (отчёт, покупка),
// поэтому методы *Tx принимают pgx.Tx, а не пул.
package economy

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

// Repository предоставляет методы для работы с балансами и транзакциями.
type Repository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewRepository создаёт новый репозиторий экономики.
func NewRepository(db *pgxpool.Pool, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

// GetBalance возвращает баланс пользователя целиком.
func (r *Repository) GetBalance(ctx context.Context, userID int64) (*Balance, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	var b Balance
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, balance, total_earned, total_spent, created_at, updated_at
		FROM balances
		WHERE user_id = $1
	`, userID).Scan(
		&b.ID, &b.UserID, &b.Balance, &b.TotalEarned, &b.TotalSpent,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return &b, nil
}

// LockBalanceTx блокирует строку баланса до конца транзакции (FOR UPDATE).
// С неё начинается любое изменение баланса, так что операции одного
// пользователя выполняются строго по очереди.
func LockBalanceTx(ctx context.Context, tx pgx.Tx, userID int64) (*Balance, error) {
	var b Balance
	err := tx.QueryRow(ctx, `
		SELECT id, user_id, balance, total_earned, total_spent, created_at, updated_at
		FROM balances
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(
		&b.ID, &b.UserID, &b.Balance, &b.TotalEarned, &b.TotalSpent,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка блокировки баланса: %w", err)
	}
	return &b, nil
}

// ApplyDeltaTx применяет изменение очков за отчёт: balance += delta,
// total_earned растёт только при delta > 0. Нулевая дельта в журнал не пишется.
func ApplyDeltaTx(ctx context.Context, tx pgx.Tx, userID, delta int64, txType, description string) error {
	if delta == 0 {
		return nil
	}

	_, err := tx.Exec(ctx, `
		UPDATE balances
		SET balance = balance + $2,
		    total_earned = total_earned + GREATEST($2, 0),
		    updated_at = NOW()
		WHERE user_id = $1
	`, userID, delta)
	if err != nil {
		return fmt.Errorf("ошибка изменения баланса: %w", err)
	}

	if delta > 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO transactions (to_user_id, amount, transaction_type, description)
			VALUES ($1, $2, $3, $4)
		`, userID, delta, txType, description)
	} else {
		_, err = tx.Exec(ctx, `
			INSERT INTO transactions (from_user_id, amount, transaction_type, description)
			VALUES ($1, $2, $3, $4)
		`, userID, -delta, txType, description)
	}
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}
	return nil
}

// DebitTx списывает amount, только если хватает очков (условный UPDATE).
// false без ошибки — очков недостаточно, ничего не изменено.
func DebitTx(ctx context.Context, tx pgx.Tx, userID, amount int64, txType, description string) (bool, error) {
	if amount <= 0 {
		return false, common.ErrInvalidAmount
	}

	tag, err := tx.Exec(ctx, `
		UPDATE balances
		SET balance = balance - $2, total_spent = total_spent + $2, updated_at = NOW()
		WHERE user_id = $1 AND balance >= $2
	`, userID, amount)
	if err != nil {
		return false, fmt.Errorf("ошибка списания: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (from_user_id, amount, transaction_type, description)
		VALUES ($1, $2, $3, $4)
	`, userID, amount, txType, description)
	if err != nil {
		return false, fmt.Errorf("ошибка записи транзакции: %w", err)
	}
	return true, nil
}

// GetTransactions возвращает последние N транзакций пользователя.
func (r *Repository) GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, from_user_id, to_user_id, amount, transaction_type, description, created_at
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		var t Transaction
		err := rows.Scan(
			&t.ID, &t.FromUserID, &t.ToUserID,
			&t.Amount, &t.TransactionType, &t.Description, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		transactions = append(transactions, &t)
	}
	return transactions, rows.Err()
}
