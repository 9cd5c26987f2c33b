// Package friends — service.go содержит бизнес-логику друзей.
package friends

import (
	"context"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/features/appdate"
	"serotonyl.ru/progress-bot/internal/features/members"
)

// MemberFinder ищет участника по @username.
type MemberFinder interface {
	GetByUsername(ctx context.Context, username string) (*members.Member, error)
}

// Service управляет друзьями.
type Service struct {
	repo     *Repository
	members  MemberFinder
	resolver *appdate.Resolver
}

// NewService создаёт сервис друзей.
func NewService(repo *Repository, members MemberFinder, resolver *appdate.Resolver) *Service {
	return &Service{repo: repo, members: members, resolver: resolver}
}

// AddByUsername добавляет в друзья участника по @username.
func (s *Service) AddByUsername(ctx context.Context, userID int64, username string) (*members.Member, error) {
	friend, err := s.members.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.Add(ctx, userID, friend.UserID); err != nil {
		return nil, err
	}
	return friend, nil
}

// Add добавляет в друзья по user ID.
func (s *Service) Add(ctx context.Context, userID, friendID int64) error {
	if userID == friendID {
		return common.ErrSelfFriend
	}
	if err := s.repo.Add(ctx, userID, friendID); err != nil {
		return err
	}
	log.WithFields(log.Fields{"user_id": userID, "friend_id": friendID}).Info("Новая дружба")
	return nil
}

// RemoveByUsername убирает участника из друзей.
func (s *Service) RemoveByUsername(ctx context.Context, userID int64, username string) (*members.Member, error) {
	friend, err := s.members.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Remove(ctx, userID, friend.UserID); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": userID, "friend_id": friend.UserID}).Info("Дружба разорвана")
	return friend, nil
}

// List возвращает друзей. TodayScore заполняется, если друг уже сдал отчёт
// за свой текущий день (у друзей могут быть разные часовые пояса).
func (s *Service) List(ctx context.Context, userID int64) ([]*Friend, error) {
	list, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, f := range list {
		markToday(f, s.resolver)
	}
	return list, nil
}

func markToday(f *Friend, resolver *appdate.Resolver) {
	if f.LastLogDate == nil {
		return
	}
	today, err := resolver.Today(f.Timezone)
	if err != nil {
		return
	}
	if f.LastLogDate.Format(appdate.DateLayout) == today {
		score := f.LastLogScore
		f.TodayScore = &score
	}
}
