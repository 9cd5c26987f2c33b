// Package members управляет участниками: регистрацией, именем, аватаром и часовым поясом.
// models.go описывает структуры данных для работы с таблицей members.
package members

import (
	"strconv"
	"time"
)

// Member представляет пользователя бота в базе данных.
// Запись создаётся при первом обращении к боту.
type Member struct {
	ID       int64  `db:"id" json:"-"`
	UserID   int64  `db:"user_id" json:"user_id"`   // Telegram user ID (уникальный)
	Username string `db:"username" json:"username"` // @username (может быть пустым)
	// Имя для лидерборда и списка друзей
	DisplayName string `db:"display_name" json:"display_name"`
	// file_id аватара в Telegram (может быть пустым)
	AvatarRef string `db:"avatar_ref" json:"avatar_ref"`
	// IANA-пояс, по нему считается день
	Timezone string `db:"timezone" json:"timezone"`
	// Зеркало streaks.current_streak / streaks.best_streak
	CurrentStreak int       `db:"current_streak" json:"current_streak"`
	BestStreak    int       `db:"best_streak" json:"best_streak"`
	JoinedAt      time.Time `db:"joined_at" json:"joined_at"`
	CreatedAt     time.Time `db:"created_at" json:"-"`
	UpdatedAt     time.Time `db:"updated_at" json:"-"`
}

// Profile — данные из Telegram, которые обновляются при каждом обращении.
type Profile struct {
	UserID    int64
	Username  string
	FirstName string
	LastName  string
}

// Name возвращает отображаемое имя пользователя.
// Если имени нет — @username, если нет и его — id.
func (m *Member) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	if m.Username != "" {
		return "@" + m.Username
	}
	return "id" + strconv.FormatInt(m.UserID, 10)
}

// DisplayNameFrom собирает имя из профиля Telegram: имя + фамилия.
func DisplayNameFrom(p Profile) string {
	name := p.FirstName
	if p.LastName != "" {
		if name != "" {
			name += " "
		}
		name += p.LastName
	}
	return name
}
