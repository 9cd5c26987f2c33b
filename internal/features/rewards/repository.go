// Package rewards — repository.go: каталог, личные награды и журнал покупок.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/db/postgres"
	"serotonyl.ru/progress-bot/internal/features/appdate"
)

const purchaseColumns = `id, user_id, reward_kind, reward_id, reward_name, cost, purchase_date, created_at`

// Repository предоставляет методы для работы с наградами и покупками.
type Repository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewRepository создаёт новый репозиторий наград.
func NewRepository(db *pgxpool.Pool, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

// InTx выполняет fn в одной транзакции.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	return postgres.InTx(ctx, r.db, r.timeout, fn)
}

// ListCatalog возвращает активные награды каталога, дешёвые сверху.
func (r *Repository) ListCatalog(ctx context.Context) ([]*Reward, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, cost, icon, category
		FROM catalog_rewards
		WHERE is_active
		ORDER BY cost, id
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения каталога: %w", err)
	}
	return collectRewards(rows, KindCatalog)
}

// ListCustom возвращает личные награды пользователя.
func (r *Repository) ListCustom(ctx context.Context, userID int64) ([]*Reward, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, cost, icon, category
		FROM custom_rewards
		WHERE user_id = $1
		ORDER BY cost, id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения личных наград: %w", err)
	}
	return collectRewards(rows, KindCustom)
}

// CreateCustom добавляет личную награду, если у пользователя их меньше limit.
// Проверка количества и вставка — один запрос: ноль строк значит лимит исчерпан.
func (r *Repository) CreateCustom(ctx context.Context, userID int64, in CustomInput, limit int) (*Reward, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	rw := &Reward{Kind: KindCustom}
	err := r.db.QueryRow(ctx, `
		INSERT INTO custom_rewards (user_id, name, cost, icon, category)
		SELECT $1, $2, $3, $4, $5
		WHERE (SELECT COUNT(*) FROM custom_rewards WHERE user_id = $1) < $6
		RETURNING id, name, cost, icon, category
	`, userID, in.Name, in.Cost, in.Icon, in.Category, limit).Scan(
		&rw.ID, &rw.Name, &rw.Cost, &rw.Icon, &rw.Category,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("не больше %d личных наград: %w", limit, common.ErrValidation)
	}
	if postgres.IsCode(err, postgres.CodeForeignKeyViolation) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка создания награды: %w", err)
	}
	return rw, nil
}

// UpdateCustom меняет личную награду. Чужую или несуществующую — ErrRewardNotFound.
// Прошлые покупки хранят своё название и цену, их правка не трогает.
func (r *Repository) UpdateCustom(ctx context.Context, userID, id int64, in CustomInput) (*Reward, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	rw := &Reward{Kind: KindCustom}
	err := r.db.QueryRow(ctx, `
		UPDATE custom_rewards
		SET name = $3, cost = $4, icon = $5, category = $6, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, name, cost, icon, category
	`, id, userID, in.Name, in.Cost, in.Icon, in.Category).Scan(
		&rw.ID, &rw.Name, &rw.Cost, &rw.Icon, &rw.Category,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrRewardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка изменения награды: %w", err)
	}
	return rw, nil
}

// DeleteCustom удаляет личную награду пользователя.
func (r *Repository) DeleteCustom(ctx context.Context, userID, id int64) error {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, `DELETE FROM custom_rewards WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("ошибка удаления награды: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrRewardNotFound
	}
	return nil
}

// ListPurchases возвращает последние покупки пользователя.
func (r *Repository) ListPurchases(ctx context.Context, userID int64, limit int) ([]*Purchase, error) {
	ctx, cancel := postgres.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения покупок: %w", err)
	}
	defer rows.Close()

	var out []*Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования покупки: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// resolveTx находит награду по ссылке внутри транзакции покупки.
// Личная награда видна только владельцу, неактивная из каталога не продаётся.
func resolveTx(ctx context.Context, tx pgx.Tx, userID int64, ref Ref) (*Reward, error) {
	var row pgx.Row
	switch ref.Kind {
	case KindCatalog:
		row = tx.QueryRow(ctx, `
			SELECT id, name, cost, icon, category
			FROM catalog_rewards
			WHERE id = $1 AND is_active
		`, ref.ID)
	case KindCustom:
		row = tx.QueryRow(ctx, `
			SELECT id, name, cost, icon, category
			FROM custom_rewards
			WHERE id = $1 AND user_id = $2
		`, ref.ID, userID)
	default:
		return nil, fmt.Errorf("%q: %w", ref.Kind, common.ErrUnknownRewardKind)
	}

	rw := &Reward{Kind: ref.Kind}
	err := row.Scan(&rw.ID, &rw.Name, &rw.Cost, &rw.Icon, &rw.Category)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrRewardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска награды: %w", err)
	}
	return rw, nil
}

// memberTimezoneTx читает часовой пояс пользователя для даты покупки.
func memberTimezoneTx(ctx context.Context, tx pgx.Tx, userID int64) (string, error) {
	var tz string
	err := tx.QueryRow(ctx, `SELECT timezone FROM members WHERE user_id = $1`, userID).Scan(&tz)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", common.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("ошибка чтения часового пояса: %w", err)
	}
	return tz, nil
}

// insertPurchaseTx пишет запись о покупке.
func insertPurchaseTx(ctx context.Context, tx pgx.Tx, p *Purchase) (*Purchase, error) {
	day, err := appdate.ParseDate(p.PurchaseDate)
	if err != nil {
		return nil, err
	}
	saved, err := scanPurchase(tx.QueryRow(ctx, `
		INSERT INTO purchases (id, user_id, reward_kind, reward_id, reward_name, cost, purchase_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+purchaseColumns,
		p.ID, p.UserID, string(p.RewardKind), p.RewardID, p.RewardName, p.Cost, day,
	))
	if err != nil {
		return nil, fmt.Errorf("ошибка записи покупки: %w", err)
	}
	return saved, nil
}

func collectRewards(rows pgx.Rows, kind Kind) ([]*Reward, error) {
	defer rows.Close()

	var out []*Reward
	for rows.Next() {
		rw := &Reward{Kind: kind}
		if err := rows.Scan(&rw.ID, &rw.Name, &rw.Cost, &rw.Icon, &rw.Category); err != nil {
			return nil, fmt.Errorf("ошибка сканирования награды: %w", err)
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}

func scanPurchase(row pgx.Row) (*Purchase, error) {
	var p Purchase
	var kind string
	var day time.Time
	err := row.Scan(&p.ID, &p.UserID, &kind, &p.RewardID, &p.RewardName, &p.Cost, &day, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.RewardKind = Kind(kind)
	p.PurchaseDate = day.Format(appdate.DateLayout)
	return &p, nil
}
