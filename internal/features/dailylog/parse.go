package dailylog

import (
	"fmt"
	"strconv"
	"strings"

	"serotonyl.ru/progress-bot/internal/common"
)

// Ключи команды !лог. Русские варианты — синонимы.
var entryKeys = map[string]string{
	"study": "study", "учеба": "study", "учёба": "study",
	"waste": "waste", "потеряно": "waste",
	"break": "break", "перерыв": "break",
	"wake": "wake", "подъем": "wake", "подъём": "wake",
	"tasks": "tasks", "задачи": "tasks",
	"date": "date", "дата": "date",
}

// ParseEntryArgs разбирает аргументы команды:
//
//	!лог study=6 waste=0 wake=06:30 tasks=5/5 break=1 date=2024-05-01 заметка
//
// tasks=сделано/назначено. Всё, что не ключ=значение, идёт в заметку.
// Возвращает отчёт и дату (пусто — сегодня).
func ParseEntryArgs(args []string) (Entry, string, error) {
	var (
		e     Entry
		date  string
		notes []string
	)
	for _, arg := range args {
		rawKey, value, ok := strings.Cut(arg, "=")
		key, known := entryKeys[strings.ToLower(rawKey)]
		if !ok || !known {
			notes = append(notes, arg)
			continue
		}

		var err error
		switch key {
		case "study":
			e.StudyHours, err = parseHours(rawKey, value)
		case "waste":
			e.WastedHours, err = parseHours(rawKey, value)
		case "break":
			e.BreakHours, err = parseHours(rawKey, value)
		case "wake":
			e.WakeTime = value
		case "tasks":
			e.TasksCompleted, e.TasksAssigned, err = parseTasks(value)
		case "date":
			date = value
		}
		if err != nil {
			return Entry{}, "", err
		}
	}

	if e.WakeTime == "" {
		return Entry{}, "", fmt.Errorf("не указано время подъёма (wake=06:30): %w", common.ErrValidation)
	}
	e.Notes = strings.Join(notes, " ")
	return e, date, nil
}

// parseHours принимает и точку, и запятую: 2.5 и 2,5.
func parseHours(key, value string) (float64, error) {
	h, err := strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: нужно число часов: %w", key, value, common.ErrValidation)
	}
	return h, nil
}

// parseTasks разбирает "сделано/назначено".
func parseTasks(value string) (completed, assigned int, err error) {
	done, total, ok := strings.Cut(value, "/")
	if !ok {
		return 0, 0, fmt.Errorf("tasks=%q: нужно сделано/назначено, например 4/5: %w", value, common.ErrValidation)
	}
	completed, err1 := strconv.Atoi(done)
	assigned, err2 := strconv.Atoi(total)
	if err1 != nil || err2 != nil {
		return 0, 0, fmt.Errorf("tasks=%q: количество задач должно быть целым: %w", value, common.ErrValidation)
	}
	return completed, assigned, nil
}
