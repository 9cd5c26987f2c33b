// Package economy ведёт очки пользователя: баланс, заработано за всё время и журнал операций.
// models.go описывает структуры для балансов и транзакций.
package economy

import "time"

// Balance представляет баланс пользователя.
// Каждый участник имеет ровно одну запись в таблице balances.
type Balance struct {
	ID          int64     `db:"id" json:"-"`
	UserID      int64     `db:"user_id" json:"user_id"`           // Telegram user ID
	Balance     int64     `db:"balance" json:"balance"`           // Текущий баланс, может уходить в минус после правки отчёта
	TotalEarned int64     `db:"total_earned" json:"total_earned"` // Заработано за всё время, никогда не уменьшается
	TotalSpent  int64     `db:"total_spent" json:"total_spent"`   // Потрачено на награды
	CreatedAt   time.Time `db:"created_at" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction — одна запись журнала очков.
type Transaction struct {
	ID              int64     `db:"id"`
	FromUserID      *int64    `db:"from_user_id"`     // У кого списали (nil для начислений)
	ToUserID        *int64    `db:"to_user_id"`       // Кому начислили (nil для списаний)
	Amount          int64     `db:"amount"`           // Сумма (всегда положительная)
	TransactionType string    `db:"transaction_type"` // Тип: daily_log, daily_log_edit, reward_purchase
	Description     string    `db:"description"`
	CreatedAt       time.Time `db:"created_at"`
}

// Signed возвращает сумму со знаком с точки зрения userID.
func (t *Transaction) Signed(userID int64) int64 {
	if t.FromUserID != nil && *t.FromUserID == userID {
		return -t.Amount
	}
	return t.Amount
}

// Типы транзакций
const (
	TxTypeDailyLog       = "daily_log"       // Первый отчёт за день
	TxTypeDailyLogEdit   = "daily_log_edit"  // Пересчёт после правки отчёта
	TxTypeRewardPurchase = "reward_purchase" // Покупка награды
)

// WithDelta возвращает баланс после пересчёта отчёта на delta очков.
// То же правило, что в ApplyDeltaTx: total_earned не уменьшается при правке вниз.
func (b Balance) WithDelta(delta int64) Balance {
	b.Balance += delta
	if delta > 0 {
		b.TotalEarned += delta
	}
	return b
}
