// Package rewards — награды за очки: общий каталог и личные награды пользователя.
// Покупка списывает очки условным UPDATE и пишет неизменяемую запись Purchase.
package rewards

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"serotonyl.ru/progress-bot/internal/common"
)

// Kind — откуда награда.
type Kind string

const (
	KindCatalog Kind = "catalog" // общий каталог
	KindCustom  Kind = "custom"  // личная награда пользователя
)

// Ref — ссылка на награду: вид + id. По ней покупка не гадает, в какой таблице искать.
type Ref struct {
	Kind Kind  `json:"kind"`
	ID   int64 `json:"id"`
}

// Код в чате: к3 — каталог, м5 — мои награды. Латиница тоже принимается.
var refPrefixes = map[string]Kind{
	"к": KindCatalog, "k": KindCatalog,
	"м": KindCustom, "m": KindCustom,
}

// String возвращает код для чата: к3 или м5.
func (r Ref) String() string {
	if r.Kind == KindCustom {
		return "м" + strconv.FormatInt(r.ID, 10)
	}
	return "к" + strconv.FormatInt(r.ID, 10)
}

// Validate проверяет вид и id.
func (r Ref) Validate() error {
	if r.Kind != KindCatalog && r.Kind != KindCustom {
		return fmt.Errorf("%q: %w", r.Kind, common.ErrUnknownRewardKind)
	}
	if r.ID <= 0 {
		return common.ErrRewardNotFound
	}
	return nil
}

// ParseRef разбирает код награды из чата: к3, м5, k3, m5.
func ParseRef(s string) (Ref, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for prefix, kind := range refPrefixes {
		if rest, ok := strings.CutPrefix(s, prefix); ok {
			id, err := strconv.ParseInt(rest, 10, 64)
			if err != nil || id <= 0 {
				return Ref{}, fmt.Errorf("код награды %q: %w", s, common.ErrRewardNotFound)
			}
			return Ref{Kind: kind, ID: id}, nil
		}
	}
	return Ref{}, fmt.Errorf("код награды %q: %w", s, common.ErrUnknownRewardKind)
}

// Reward — награда из каталога или личная.
type Reward struct {
	Kind     Kind   `json:"kind"`
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Cost     int64  `json:"cost"`
	Icon     string `json:"icon"`
	Category string `json:"category"`
}

// Ref возвращает ссылку на награду.
func (r *Reward) Ref() Ref {
	return Ref{Kind: r.Kind, ID: r.ID}
}

// Purchase — запись о покупке. Не меняется и не удаляется.
type Purchase struct {
	ID           uuid.UUID `json:"id"`
	UserID       int64     `json:"user_id"`
	RewardKind   Kind      `json:"reward_kind"`
	RewardID     int64     `json:"reward_id"`
	RewardName   string    `json:"reward_name"`
	Cost         int64     `json:"cost"`
	PurchaseDate string    `json:"purchase_date"` // день покупки по правилу отсечки
	CreatedAt    time.Time `json:"created_at"`
}

// Ограничения личных наград
const (
	MaxNameLen     = 100
	MaxCost        = 1_000_000
	maxIconRunes   = 4
	maxCategoryLen = 50
	defaultIcon    = "🎁"
	defaultCateg   = "разное"
)

// CustomInput — данные для создания или правки личной награды.
type CustomInput struct {
	Name     string `json:"name"`
	Cost     int64  `json:"cost"`
	Icon     string `json:"icon"`
	Category string `json:"category"`
}

// Normalize чистит текст, подставляет значения по умолчанию и проверяет поля.
func (in CustomInput) Normalize() (CustomInput, error) {
	in.Name = common.CleanText(in.Name, MaxNameLen)
	in.Icon = common.CleanText(in.Icon, maxIconRunes)
	in.Category = common.CleanText(in.Category, maxCategoryLen)
	if in.Name == "" {
		return in, fmt.Errorf("у награды должно быть название: %w", common.ErrValidation)
	}
	if in.Cost <= 0 {
		return in, common.ErrInvalidAmount
	}
	if in.Cost > MaxCost {
		return in, fmt.Errorf("стоимость больше %d: %w", MaxCost, common.ErrValidation)
	}
	if in.Icon == "" {
		in.Icon = defaultIcon
	}
	if in.Category == "" {
		in.Category = defaultCateg
	}
	return in, nil
}
