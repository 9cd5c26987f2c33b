// Package streak ведёт серии дней с положительным счётом.
// Серия меняется только при создании нового дневного отчёта, правки её не трогают.
package streak

import "time"

// Streak — запись таблицы streaks.
type Streak struct {
	ID            int64      `db:"id"`
	UserID        int64      `db:"user_id"`
	CurrentStreak int        `db:"current_streak"` // Текущая серия (дней подряд со счётом > 0)
	BestStreak    int        `db:"best_streak"`    // Личный рекорд
	LastLogDate   *time.Time `db:"last_log_date"`  // День последнего нового отчёта
	TotalLogs     int        `db:"total_logs"`     // Всего новых отчётов
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// State — текущая и лучшая серия.
type State struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// Next возвращает серию после нового отчёта со счётом score.
// score > 0: серия +1, рекорд = max. Иначе серия обнуляется, рекорд остаётся.
func Next(s State, score int) State {
	if score <= 0 {
		return State{Current: 0, Best: s.Best}
	}
	s.Current++
	if s.Current > s.Best {
		s.Best = s.Current
	}
	return s
}
