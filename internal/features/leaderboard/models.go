// Package leaderboard — рейтинг участников по заработанным очкам.
// models.go описывает строку рейтинга и порядок сортировки.
package leaderboard

import "sort"

// Entry — строка рейтинга.
type Entry struct {
	Rank          int    `json:"rank"`
	UserID        int64  `json:"user_id"`
	Username      string `json:"username"`
	DisplayName   string `json:"display_name"`
	AvatarRef     string `json:"avatar_ref,omitempty"`
	TotalEarned   int64  `json:"total_earned"`
	Balance       int64  `json:"balance"`
	CurrentStreak int    `json:"current_streak"`
	BestStreak    int    `json:"best_streak"`
}

// Name возвращает имя для рейтинга.
func (e *Entry) Name() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	if e.Username != "" {
		return "@" + e.Username
	}
	return "без имени"
}

// Rank сортирует строки и проставляет места.
// Порядок: заработано всего, затем баланс, затем user_id (чтобы равные не прыгали).
// Потраченные на награды очки не опускают участника в рейтинге.
func Rank(entries []*Entry) []*Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalEarned != b.TotalEarned {
			return a.TotalEarned > b.TotalEarned
		}
		if a.Balance != b.Balance {
			return a.Balance > b.Balance
		}
		return a.UserID < b.UserID
	})
	for i, e := range entries {
		e.Rank = i + 1
	}
	return entries
}

// Find возвращает строку пользователя или nil.
func Find(entries []*Entry, userID int64) *Entry {
	for _, e := range entries {
		if e.UserID == userID {
			return e
		}
	}
	return nil
}
