// Package scoring считает очки за один день по сырым показателям.
// Чистая функция: без БД, без часов, без глобального состояния.
package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"serotonyl.ru/progress-bot/internal/common"
)

// Множители очков за час
const (
	StudyPointsPerHour = 5
	WastePointsPerHour = 5
)

// Inputs — сырые показатели одного дня.
type Inputs struct {
	StudyHours     float64 `json:"study_hours"`
	BreakHours     float64 `json:"break_hours"` // хранится, в очках не участвует
	WastedHours    float64 `json:"wasted_hours"`
	WakeTime       string  `json:"wake_time"` // ЧЧ:ММ, 24 часа
	TasksAssigned  int     `json:"tasks_assigned"`
	TasksCompleted int     `json:"tasks_completed"`
}

// Breakdown — вклад каждой составляющей. Waste всегда <= 0.
type Breakdown struct {
	Study int `json:"study"`
	Tasks int `json:"tasks"`
	Wake  int `json:"wake"`
	Waste int `json:"waste"`
}

// Score — итог дня.
type Score struct {
	Total     int       `json:"total"`
	Breakdown Breakdown `json:"breakdown"`
}

// taskBracket — порог процента выполнения и очки за него.
type taskBracket struct {
	minPercent float64
	points     int
}

// Пороги проверяются сверху вниз, побеждает первый подходящий.
var taskBrackets = []taskBracket{
	{180, 30},
	{150, 25},
	{120, 20},
	{100, 15},
	{91, 10},
	{81, 0},
}

const tasksBelowAll = -10

// wakeBracket — граница подъёма в минутах от полуночи (включительно).
type wakeBracket struct {
	maxMinutes int
	points     int
}

var wakeBrackets = []wakeBracket{
	{6 * 60, 15},
	{7 * 60, 10},
	{8 * 60, 5},
}

// Validate проверяет показатели до подсчёта.
// Ошибки оборачивают common.ErrValidation и годятся для показа пользователю.
func (in Inputs) Validate() error {
	hours := []struct {
		name  string
		value float64
	}{
		{"часы учёбы", in.StudyHours},
		{"часы перерывов", in.BreakHours},
		{"потерянные часы", in.WastedHours},
	}
	for _, h := range hours {
		if math.IsNaN(h.value) || math.IsInf(h.value, 0) {
			return fmt.Errorf("%s: не число: %w", h.name, common.ErrValidation)
		}
		if h.value < 0 {
			return fmt.Errorf("%s не могут быть отрицательными: %w", h.name, common.ErrValidation)
		}
		if h.value > 24 {
			return fmt.Errorf("%s больше 24: %w", h.name, common.ErrValidation)
		}
	}
	if in.TasksAssigned < 0 || in.TasksCompleted < 0 {
		return fmt.Errorf("количество задач не может быть отрицательным: %w", common.ErrValidation)
	}
	if _, err := ParseWakeTime(in.WakeTime); err != nil {
		return err
	}
	return nil
}

// ParseWakeTime разбирает "ЧЧ:ММ" и возвращает минуты от полуночи.
// Допускается одна цифра в часах ("6:30").
func ParseWakeTime(s string) (int, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok || len(hh) < 1 || len(hh) > 2 || len(mm) != 2 || !isDigits(hh) || !isDigits(mm) {
		return 0, fmt.Errorf("время подъёма %q должно быть в формате ЧЧ:ММ: %w", s, common.ErrValidation)
	}
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("время подъёма %q вне диапазона 00:00–23:59: %w", s, common.ErrValidation)
	}
	return h*60 + m, nil
}

// CalculateScore считает очки за день. Вход должен пройти Validate;
// неразборчивое время подъёма даёт 0 очков за подъём.
func CalculateScore(in Inputs) Score {
	study := int(math.Round(in.StudyHours * StudyPointsPerHour))
	tasks := TaskPoints(in.TasksAssigned, in.TasksCompleted)
	wake := 0
	if minutes, err := ParseWakeTime(in.WakeTime); err == nil {
		wake = WakePoints(minutes)
	}
	penalty := int(math.Round(in.WastedHours * WastePointsPerHour))

	return Score{
		Total: study + tasks + wake - penalty,
		Breakdown: Breakdown{
			Study: study,
			Tasks: tasks,
			Wake:  wake,
			Waste: -penalty,
		},
	}
}

// TaskPoints возвращает очки за процент выполненных задач.
// Если задач не назначено — 0.
func TaskPoints(assigned, completed int) int {
	if assigned <= 0 {
		return 0
	}
	// completed*100 делится на assigned без накопления ошибки: 91/100 → ровно 91
	percent := float64(completed) * 100 / float64(assigned)
	for _, b := range taskBrackets {
		if percent >= b.minPercent {
			return b.points
		}
	}
	return tasksBelowAll
}

// WakePoints возвращает очки за время подъёма (минуты от полуночи).
func WakePoints(minutes int) int {
	for _, b := range wakeBrackets {
		if minutes <= b.maxMinutes {
			return b.points
		}
	}
	return 0
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
