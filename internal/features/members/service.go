// Package members — service.go содержит бизнес-логику управления участниками.
package members

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/features/appdate"
)

// maxDisplayName — предел длины имени в рунах
const maxDisplayName = 64

// Service управляет участниками.
type Service struct {
	repo            *Repository
	defaultTimezone string
}

// NewService создаёт новый сервис участников. defaultTimezone получают новые пользователи.
func NewService(repo *Repository, defaultTimezone string) *Service {
	return &Service{repo: repo, defaultTimezone: defaultTimezone}
}

// EnsureMember регистрирует пользователя при первом обращении и обновляет имя при следующих.
// Вместе с участником создаются нулевой баланс и стрик.
func (s *Service) EnsureMember(ctx context.Context, p Profile) (*Member, error) {
	m := &Member{
		UserID:      p.UserID,
		Username:    p.Username,
		DisplayName: common.CleanText(DisplayNameFrom(p), maxDisplayName),
		Timezone:    s.defaultTimezone,
	}

	created, err := s.repo.Register(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("ошибка регистрации участника: %w", err)
	}
	if created {
		log.WithFields(log.Fields{
			"user_id":  p.UserID,
			"username": p.Username,
		}).Info("Новый участник зарегистрирован")
	}

	return s.repo.GetByUserID(ctx, p.UserID)
}

// GetByUserID возвращает участника по его Telegram user ID.
func (s *Service) GetByUserID(ctx context.Context, userID int64) (*Member, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// GetByUsername возвращает участника по @username (с @ или без).
func (s *Service) GetByUsername(ctx context.Context, username string) (*Member, error) {
	return s.repo.GetByUsername(ctx, trimAt(username))
}

// SetTimezone проверяет IANA-пояс и сохраняет его.
func (s *Service) SetTimezone(ctx context.Context, userID int64, timezone string) error {
	if _, err := appdate.LoadLocation(timezone); err != nil {
		return err
	}
	if err := s.repo.SetTimezone(ctx, userID, timezone); err != nil {
		return err
	}
	log.WithFields(log.Fields{"user_id": userID, "timezone": timezone}).Info("Часовой пояс изменён")
	return nil
}

// SetAvatar сохраняет file_id аватара. Загрузка и обрезка картинок здесь не делаются.
func (s *Service) SetAvatar(ctx context.Context, userID int64, fileID string) error {
	return s.repo.SetAvatar(ctx, userID, fileID)
}

// ListAll возвращает всех участников.
func (s *Service) ListAll(ctx context.Context) ([]*Member, error) {
	return s.repo.ListAll(ctx)
}

func trimAt(username string) string {
	if len(username) > 0 && username[0] == '@' {
		return username[1:]
	}
	return username
}
