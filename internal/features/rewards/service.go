// Package rewards — service.go: покупка наград и управление личными наградами.
package rewards

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/features/appdate"
	"serotonyl.ru/progress-bot/internal/features/economy"
)

// purchasesLimit — сколько покупок показывает !покупки
const purchasesLimit = 10

// Invalidator сбрасывает кэш лидерборда после списания.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service продаёт награды и ведёт личные награды пользователей.
type Service struct {
	repo        *Repository
	resolver    *appdate.Resolver
	invalidator Invalidator
	maxCustom   int
}

// NewService создаёт сервис наград. invalidator может быть nil.
func NewService(repo *Repository, resolver *appdate.Resolver, invalidator Invalidator, maxCustom int) *Service {
	return &Service{repo: repo, resolver: resolver, invalidator: invalidator, maxCustom: maxCustom}
}

// BuyReward покупает награду. false без ошибки — очков не хватило, ничего не изменилось.
func (s *Service) BuyReward(ctx context.Context, userID int64, ref Ref) (bool, error) {
	p, err := s.Redeem(ctx, userID, ref)
	return p != nil, err
}

// Redeem покупает награду и возвращает запись о покупке.
// nil, nil — очков не хватило.
//
// В одной транзакции: блокировка баланса, поиск награды, условное списание
// (balance >= cost проверяет сам UPDATE), запись покупки и строки журнала.
// Два параллельных запроса не потратят больше, чем есть на балансе.
func (s *Service) Redeem(ctx context.Context, userID int64, ref Ref) (*Purchase, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	var purchase *Purchase
	err := s.repo.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := economy.LockBalanceTx(ctx, tx, userID); err != nil {
			return err
		}

		rw, err := resolveTx(ctx, tx, userID, ref)
		if err != nil {
			return err
		}

		tz, err := memberTimezoneTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		date, err := s.resolver.Today(tz)
		if err != nil {
			return err
		}

		ok, err := economy.DebitTx(ctx, tx, userID, rw.Cost, economy.TxTypeRewardPurchase,
			fmt.Sprintf("%s %s", rw.Icon, rw.Name))
		if err != nil || !ok {
			return err
		}

		purchase, err = insertPurchaseTx(ctx, tx, &Purchase{
			ID:           uuid.New(),
			UserID:       userID,
			RewardKind:   rw.Kind,
			RewardID:     rw.ID,
			RewardName:   rw.Name,
			Cost:         rw.Cost,
			PurchaseDate: date,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	if purchase == nil {
		log.WithFields(log.Fields{"user_id": userID, "reward": ref.String()}).Info("Недостаточно очков для покупки")
		return nil, nil
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
	log.WithFields(log.Fields{
		"user_id":     userID,
		"reward":      ref.String(),
		"cost":        purchase.Cost,
		"purchase_id": purchase.ID,
	}).Info("Награда куплена")
	return purchase, nil
}

// ListCatalog возвращает активные награды каталога.
func (s *Service) ListCatalog(ctx context.Context) ([]*Reward, error) {
	return s.repo.ListCatalog(ctx)
}

// ListCustom возвращает личные награды пользователя.
func (s *Service) ListCustom(ctx context.Context, userID int64) ([]*Reward, error) {
	return s.repo.ListCustom(ctx, userID)
}

// ListAvailable возвращает каталог и личные награды одним списком.
func (s *Service) ListAvailable(ctx context.Context, userID int64) ([]*Reward, error) {
	catalog, err := s.repo.ListCatalog(ctx)
	if err != nil {
		return nil, err
	}
	custom, err := s.repo.ListCustom(ctx, userID)
	if err != nil {
		return nil, err
	}
	return append(catalog, custom...), nil
}

// CreateCustom добавляет личную награду.
func (s *Service) CreateCustom(ctx context.Context, userID int64, in CustomInput) (*Reward, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	rw, err := s.repo.CreateCustom(ctx, userID, in, s.maxCustom)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": userID, "reward_id": rw.ID, "cost": rw.Cost}).Info("Личная награда создана")
	return rw, nil
}

// UpdateCustom меняет личную награду.
func (s *Service) UpdateCustom(ctx context.Context, userID, id int64, in CustomInput) (*Reward, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateCustom(ctx, userID, id, in)
}

// DeleteCustom удаляет личную награду. Покупки этой награды остаются в истории.
func (s *Service) DeleteCustom(ctx context.Context, userID, id int64) error {
	if err := s.repo.DeleteCustom(ctx, userID, id); err != nil {
		return err
	}
	log.WithFields(log.Fields{"user_id": userID, "reward_id": id}).Info("Личная награда удалена")
	return nil
}

// ListPurchases возвращает последние покупки.
func (s *Service) ListPurchases(ctx context.Context, userID int64) ([]*Purchase, error) {
	return s.repo.ListPurchases(ctx, userID, purchasesLimit)
}
