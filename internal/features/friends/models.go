// Package friends — друзья: взаимная связь между участниками и сводка их прогресса.
// models.go описывает строки списка друзей.
package friends

import "time"

// Friend — друг и его прогресс для !друзья.
type Friend struct {
	UserID        int64  `json:"user_id"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	Timezone      string `json:"-"`
	Balance       int64  `json:"balance"`
	TotalEarned   int64  `json:"total_earned"`
	CurrentStreak int    `json:"current_streak"`
	BestStreak    int    `json:"best_streak"`
	// Последний отчёт друга (nil — отчётов не было)
	LastLogDate  *time.Time `json:"-"`
	LastLogScore int        `json:"-"`
	// Счёт за сегодняшний день друга, nil — ещё не сдал
	TodayScore *int      `json:"today_score"`
	Since      time.Time `json:"since"`
}

// Name возвращает имя друга для списка.
func (f *Friend) Name() string {
	if f.DisplayName != "" {
		return f.DisplayName
	}
	if f.Username != "" {
		return "@" + f.Username
	}
	return "без имени"
}
