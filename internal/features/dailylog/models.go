// Package dailylog хранит дневные отчёты и сводит баланс при каждом сохранении.
// Один отчёт на пользователя и день: повторная отправка перезаписывает его,
// а баланс меняется на разницу между новым и прежним счётом.
package dailylog

import (
	"time"

	"serotonyl.ru/progress-bot/internal/features/scoring"
	"serotonyl.ru/progress-bot/internal/features/streak"
)

// DailyLog — запись таблицы daily_logs.
type DailyLog struct {
	ID             int64     `db:"id" json:"id"`
	UserID         int64     `db:"user_id" json:"user_id"`
	Date           string    `db:"log_date" json:"date"` // ГГГГ-ММ-ДД
	WakeTime       string    `db:"wake_time" json:"wake_time"`
	StudyHours     float64   `db:"study_hours" json:"study_hours"`
	BreakHours     float64   `db:"break_hours" json:"break_hours"`
	WastedHours    float64   `db:"wasted_hours" json:"wasted_hours"`
	TasksAssigned  int       `db:"tasks_assigned" json:"tasks_assigned"`
	TasksCompleted int       `db:"tasks_completed" json:"tasks_completed"`
	Notes          string    `db:"notes" json:"notes"`
	StudyPoints    int       `db:"study_points" json:"study_points"`
	TaskPoints     int       `db:"task_points" json:"task_points"`
	WakePoints     int       `db:"wake_points" json:"wake_points"`
	WastePenalty   int       `db:"waste_penalty" json:"waste_penalty"` // <= 0, как в Breakdown
	TotalScore     int       `db:"total_score" json:"total_score"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Entry — то, что присылает пользователь за день.
type Entry struct {
	scoring.Inputs
	Notes string `json:"notes"`
}

// Inputs возвращает показатели отчёта для пересчёта.
func (l *DailyLog) Inputs() scoring.Inputs {
	return scoring.Inputs{
		StudyHours:     l.StudyHours,
		BreakHours:     l.BreakHours,
		WastedHours:    l.WastedHours,
		WakeTime:       l.WakeTime,
		TasksAssigned:  l.TasksAssigned,
		TasksCompleted: l.TasksCompleted,
	}
}

// Breakdown возвращает сохранённую раскладку очков.
func (l *DailyLog) Breakdown() scoring.Breakdown {
	return scoring.Breakdown{
		Study: l.StudyPoints,
		Tasks: l.TaskPoints,
		Wake:  l.WakePoints,
		Waste: l.WastePenalty,
	}
}

func newLog(userID int64, date string, e Entry, s scoring.Score) *DailyLog {
	return &DailyLog{
		UserID:         userID,
		Date:           date,
		WakeTime:       e.WakeTime,
		StudyHours:     e.StudyHours,
		BreakHours:     e.BreakHours,
		WastedHours:    e.WastedHours,
		TasksAssigned:  e.TasksAssigned,
		TasksCompleted: e.TasksCompleted,
		Notes:          e.Notes,
		StudyPoints:    s.Breakdown.Study,
		TaskPoints:     s.Breakdown.Tasks,
		WakePoints:     s.Breakdown.Wake,
		WastePenalty:   s.Breakdown.Waste,
		TotalScore:     s.Total,
	}
}

// Change — чем сохранение отчёта оборачивается для баланса и серии.
type Change struct {
	IsNew     bool  // отчёта за этот день ещё не было
	OldPoints int   // прежний счёт (0 для нового)
	Delta     int64 // сколько прибавить к балансу
}

// Reconcile сравнивает прежний отчёт (nil — не было) с новым счётом.
func Reconcile(old *DailyLog, total int) Change {
	c := Change{IsNew: old == nil}
	if old != nil {
		c.OldPoints = old.TotalScore
	}
	c.Delta = int64(total - c.OldPoints)
	return c
}

// SaveResult — итог SaveDailyLog.
type SaveResult struct {
	Log    *DailyLog     `json:"log"`
	IsNew  bool          `json:"is_new"`
	Delta  int64         `json:"delta"`
	Streak *streak.State `json:"streak,omitempty"` // только для нового отчёта
}
