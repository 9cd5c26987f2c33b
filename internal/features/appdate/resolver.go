// Package appdate определяет, к какому «дню приложения» относится момент времени.
//
// День начинается не в полночь, а в час отсечки (по умолчанию 05:00 по местному
// времени пользователя): отчёт, сданный в 02:30, относится к вчерашнему дню.
// Все места, где нужно «сегодня», ходят сюда, а не к time.Now().
package appdate

import (
	"fmt"
	"time"
	_ "time/tzdata" // часовые пояса пользователей приходят из БД, не полагаемся на ОС

	"serotonyl.ru/progress-bot/internal/common"
)

// DateLayout — формат даты дня во всех слоях (БД, команды, API).
const DateLayout = "2006-01-02"

// DefaultCutoffHour — час, до которого время относится к предыдущему дню.
const DefaultCutoffHour = 5

// Resolver переводит момент времени в дату дня с учётом часа отсечки.
// Now можно подменить в тестах и в планировщике.
type Resolver struct {
	CutoffHour int
	Now        func() time.Time
}

// New создаёт резолвер с заданным часом отсечки.
func New(cutoffHour int) *Resolver {
	return &Resolver{CutoffHour: cutoffHour, Now: time.Now}
}

// LoadLocation загружает часовой пояс, ошибка оборачивает common.ErrInvalidTimezone.
func LoadLocation(timezone string) (*time.Location, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", timezone, common.ErrInvalidTimezone)
	}
	return loc, nil
}

// ResolveAppDate возвращает дату дня (ГГГГ-ММ-ДД) для момента now в поясе timezone.
// Если местный час меньше часа отсечки — это ещё предыдущий день.
func (r *Resolver) ResolveAppDate(now time.Time, timezone string) (string, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return "", err
	}
	return r.resolveIn(now, loc), nil
}

func (r *Resolver) resolveIn(now time.Time, loc *time.Location) string {
	local := now.In(loc)
	y, m, d := local.Date()
	if local.Hour() < r.CutoffHour {
		d--
	}
	// полдень, чтобы переход на летнее время не сдвинул дату
	return time.Date(y, m, d, 12, 0, 0, 0, loc).Format(DateLayout)
}

// Today возвращает текущую дату дня для пояса.
func (r *Resolver) Today(timezone string) (string, error) {
	return r.ResolveAppDate(r.now(), timezone)
}

// LocalHour возвращает текущий местный час в поясе (для планировщика напоминаний).
func (r *Resolver) LocalHour(timezone string) (int, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return 0, err
	}
	return r.now().In(loc).Hour(), nil
}

// NextCutoff возвращает ближайший момент отсечки строго после now.
func (r *Resolver) NextCutoff(now time.Time, timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, err
	}
	local := now.In(loc)
	y, m, d := local.Date()
	next := time.Date(y, m, d, r.CutoffHour, 0, 0, 0, loc)
	if !next.After(local) {
		next = time.Date(y, m, d+1, r.CutoffHour, 0, 0, 0, loc)
	}
	return next, nil
}

// UntilNextCutoff — сколько осталось до следующей отсечки.
func (r *Resolver) UntilNextCutoff(now time.Time, timezone string) (time.Duration, error) {
	next, err := r.NextCutoff(now, timezone)
	if err != nil {
		return 0, err
	}
	return next.Sub(now), nil
}

func (r *Resolver) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// NormalizeDate проверяет дату и приводит её к ГГГГ-ММ-ДД.
func NormalizeDate(s string) (string, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return t.Format(DateLayout), nil
}

// ParseDate разбирает ГГГГ-ММ-ДД в полночь UTC (так дата уходит в колонку DATE).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q: %w", s, common.ErrInvalidDate)
	}
	return t, nil
}

// IsSameAppDay сравнивает две даты дня. Некорректная дата не равна ничему.
func IsSameAppDay(a, b string) bool {
	na, errA := NormalizeDate(a)
	nb, errB := NormalizeDate(b)
	if errA != nil || errB != nil {
		return false
	}
	return na == nb
}
