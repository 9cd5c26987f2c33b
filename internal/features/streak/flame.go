package streak

// flameLevels — подпись огонька по длине серии, от большей к меньшей.
var flameLevels = []struct {
	minDays int
	label   string
}{
	{100, "💎 Легенда"},
	{30, "🌋 Вулкан"},
	{14, "🔥🔥🔥 Пожар"},
	{7, "🔥🔥 Костёр"},
	{3, "🔥 Огонёк"},
	{1, "🕯 Искра"},
}

// FlameLevel возвращает подпись для серии. Пустая строка — серии нет.
func FlameLevel(current int) string {
	for _, l := range flameLevels {
		if current >= l.minDays {
			return l.label
		}
	}
	return ""
}
