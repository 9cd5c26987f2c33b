// Package economy — service.go: баланс и история операций для команд и API.
package economy

import (
	"context"
	"fmt"

	"serotonyl.ru/progress-bot/internal/common"
)

// historyLimit — сколько транзакций показывать в !транзакции
const historyLimit = 10

// Service отдаёт баланс и историю. Изменения баланса живут в dailylog и rewards.
type Service struct {
	repo *Repository
}

// NewService создаёт новый сервис экономики.
func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

// GetBalance возвращает баланс пользователя.
func (s *Service) GetBalance(ctx context.Context, userID int64) (*Balance, error) {
	return s.repo.GetBalance(ctx, userID)
}

// GetTransactionHistory возвращает строки истории, новые сверху.
func (s *Service) GetTransactionHistory(ctx context.Context, userID int64, timezone string) ([]string, error) {
	transactions, err := s.repo.GetTransactions(ctx, userID, historyLimit)
	if err != nil {
		return nil, err
	}

	lines := make([]string, 0, len(transactions))
	for i, tx := range transactions {
		lines = append(lines, fmt.Sprintf("%d. %s | %s | %s",
			i+1,
			common.FormatDateTime(tx.CreatedAt, timezone),
			common.FormatSignedPoints(tx.Signed(userID)),
			tx.Description,
		))
	}
	return lines, nil
}
