// Package dailylog — service.go: сохранение отчёта и сведение баланса.
package dailylog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/common"
	"serotonyl.ru/progress-bot/internal/features/appdate"
	"serotonyl.ru/progress-bot/internal/features/economy"
	"serotonyl.ru/progress-bot/internal/features/scoring"
	"serotonyl.ru/progress-bot/internal/features/streak"
)

// maxNotes — предел длины заметки в рунах
const maxNotes = 1000

// StreakUpdater обновляет серию внутри транзакции сохранения отчёта.
type StreakUpdater interface {
	UpdateStreak(ctx context.Context, tx pgx.Tx, userID int64, score int, logDate time.Time) (streak.State, error)
}

// Invalidator сбрасывает кэш, зависящий от баланса (лидерборд).
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service сохраняет и отдаёт дневные отчёты.
type Service struct {
	repo        *Repository
	streaks     StreakUpdater
	invalidator Invalidator
}

// NewService создаёт сервис отчётов. invalidator может быть nil.
func NewService(repo *Repository, streaks StreakUpdater, invalidator Invalidator) *Service {
	return &Service{repo: repo, streaks: streaks, invalidator: invalidator}
}

// SaveDailyLog сохраняет отчёт за день и сводит баланс.
//
// Всё в одной транзакции:
//  1. блокируем строку баланса (операции пользователя идут по очереди);
//  2. читаем прежний отчёт за день: его счёт и признак «новый»;
//  3. перезаписываем отчёт;
//  4. balance += новый − прежний, заработанное растёт только при плюсе;
//  5. только для нового отчёта — серия.
//
// Повторная отправка тех же данных даёт дельту 0 и ничего не меняет в балансе.
func (s *Service) SaveDailyLog(ctx context.Context, userID int64, date string, e Entry) (*SaveResult, error) {
	date, err := appdate.NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	day, _ := appdate.ParseDate(date)
	e.Notes = common.CleanText(e.Notes, maxNotes)
	score := scoring.CalculateScore(e.Inputs)

	var result *SaveResult
	err = s.repo.InTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := economy.LockBalanceTx(ctx, tx, userID); err != nil {
			return err
		}

		old, err := getForUpdateTx(ctx, tx, userID, day)
		if err != nil {
			return err
		}
		change := Reconcile(old, score.Total)

		saved, err := upsertTx(ctx, tx, newLog(userID, date, e, score), day)
		if err != nil {
			return err
		}

		// С этого места отчёт уже записан: любая ошибка откатит его вместе с балансом
		txType, desc := economy.TxTypeDailyLog, fmt.Sprintf("Отчёт за %s", date)
		if !change.IsNew {
			txType, desc = economy.TxTypeDailyLogEdit, fmt.Sprintf("Правка отчёта за %s", date)
		}
		if err := economy.ApplyDeltaTx(ctx, tx, userID, change.Delta, txType, desc); err != nil {
			return invariantError(userID, date, err)
		}

		result = &SaveResult{Log: saved, IsNew: change.IsNew, Delta: change.Delta}
		if change.IsNew {
			st, err := s.streaks.UpdateStreak(ctx, tx, userID, score.Total, day)
			if err != nil {
				return invariantError(userID, date, err)
			}
			result.Streak = &st
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.invalidator != nil && result.Delta != 0 {
		s.invalidator.Invalidate(ctx)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"date":    date,
		"score":   score.Total,
		"delta":   result.Delta,
		"is_new":  result.IsNew,
	}).Info("Отчёт сохранён")
	return result, nil
}

// invariantError помечает сбой после записи отчёта. Транзакция откатывается,
// но такой сбой означает, что отчёт и баланс могли разойтись, и о нём нужно знать.
func invariantError(userID int64, date string, err error) error {
	log.WithError(err).WithFields(log.Fields{
		"user_id":         userID,
		"date":            date,
		"fatal_invariant": true,
	}).Error("Сбой сведения баланса после записи отчёта, транзакция откатывается")
	return fmt.Errorf("сведение баланса за %s: %w", date, err)
}

// GetLogForDate возвращает отчёт за день или nil, если его нет.
func (s *Service) GetLogForDate(ctx context.Context, userID int64, date string) (*DailyLog, error) {
	day, err := appdate.ParseDate(date)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByDate(ctx, userID, day)
}

// ListRecent возвращает последние limit отчётов.
func (s *Service) ListRecent(ctx context.Context, userID int64, limit int) ([]*DailyLog, error) {
	return s.repo.ListRecent(ctx, userID, limit)
}

// HasLog проверяет, сдан ли отчёт за день.
func (s *Service) HasLog(ctx context.Context, userID int64, date string) (bool, error) {
	day, err := appdate.ParseDate(date)
	if err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, userID, day)
}
