// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежечасные напоминания о несданном отчёте
// и ежедневная смена дня в час отсечки.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/features/appdate"
	"serotonyl.ru/progress-bot/internal/features/members"
)

// MemberLister отдаёт всех участников для обхода.
type MemberLister interface {
	ListAll(ctx context.Context) ([]*members.Member, error)
}

// LogChecker проверяет, сдан ли отчёт за день.
type LogChecker interface {
	HasLog(ctx context.Context, userID int64, date string) (bool, error)
}

// Invalidator сбрасывает кэш лидерборда.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Options — настройки планировщика.
type Options struct {
	// Пояс, в котором срабатывает ежедневная смена дня
	Timezone     string
	ReminderHour int
	Reminders    bool
}

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron        *cron.Cron
	opts        Options
	members     MemberLister
	logs        LogChecker
	resolver    *appdate.Resolver
	invalidator Invalidator
	sendFunc    func(userID int64, text string)
}

// NewScheduler создаёт планировщик задач в поясе opts.Timezone.
func NewScheduler(
	opts Options,
	members MemberLister,
	logs LogChecker,
	resolver *appdate.Resolver,
	invalidator Invalidator,
	sendFunc func(userID int64, text string),
) *Scheduler {
	loc, err := appdate.LoadLocation(opts.Timezone)
	if err != nil {
		log.WithError(err).Warn("Не удалось загрузить пояс планировщика, используем UTC")
		loc = time.UTC
	}

	return &Scheduler{
		cron:        cron.New(cron.WithLocation(loc)),
		opts:        opts,
		members:     members,
		logs:        logs,
		resolver:    resolver,
		invalidator: invalidator,
		sendFunc:    sendFunc,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) error {
	// Смена дня: в час отсечки
	rollover := fmt.Sprintf("0 %d * * *", s.resolver.CutoffHour)
	if _, err := s.cron.AddFunc(rollover, func() { s.Rollover(ctx) }); err != nil {
		return fmt.Errorf("расписание смены дня: %w", err)
	}

	// Напоминания: каждый час, у каждого свой местный час
	if s.opts.Reminders {
		_, err := s.cron.AddFunc("0 * * * *", func() {
			log.Debug("[CRON] Проверка напоминаний")
			if _, err := s.RunReminders(ctx); err != nil {
				log.WithError(err).Error("[CRON] Ошибка напоминаний")
			}
		})
		if err != nil {
			return fmt.Errorf("расписание напоминаний: %w", err)
		}
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"timezone":      s.opts.Timezone,
		"cutoff_hour":   s.resolver.CutoffHour,
		"reminder_hour": s.opts.ReminderHour,
		"reminders":     s.opts.Reminders,
	}).Info("Планировщик задач запущен")
	return nil
}

// Rollover отмечает смену дня и сбрасывает кэш рейтинга.
func (s *Scheduler) Rollover(ctx context.Context) {
	today, err := s.resolver.Today(s.opts.Timezone)
	if err != nil {
		log.WithError(err).Error("[CRON] Не удалось определить новый день")
		return
	}
	next, _ := s.resolver.UntilNextCutoff(time.Now(), s.opts.Timezone)
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx)
	}
	log.WithFields(log.Fields{
		"date":        today,
		"next_cutoff": next.Round(time.Minute).String(),
	}).Info("[CRON] Новый день")
}

// RunReminders напоминает тем, у кого сейчас час напоминания и нет отчёта за их текущий день.
// Возвращает число отправленных напоминаний.
func (s *Scheduler) RunReminders(ctx context.Context) (int, error) {
	list, err := s.members.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, m := range list {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		hour, err := s.resolver.LocalHour(m.Timezone)
		if err != nil {
			log.WithError(err).WithField("user_id", m.UserID).Warn("[CRON] Неизвестный пояс участника")
			continue
		}
		if hour != s.opts.ReminderHour {
			continue
		}

		today, err := s.resolver.Today(m.Timezone)
		if err != nil {
			continue
		}
		has, err := s.logs.HasLog(ctx, m.UserID, today)
		if err != nil {
			log.WithError(err).WithField("user_id", m.UserID).Error("[CRON] Ошибка проверки отчёта")
			continue
		}
		if has {
			continue
		}

		s.sendFunc(m.UserID, reminderText(m))
		sent++
	}

	if sent > 0 {
		log.WithField("count", sent).Info("[CRON] Напоминания отправлены")
	}
	return sent, nil
}

func reminderText(m *members.Member) string {
	if m.CurrentStreak > 0 {
		return fmt.Sprintf("⏰ Отчёт за сегодня ещё не сдан. Серия: %d, не дай ей прерваться!\n!лог study=... wake=...",
			m.CurrentStreak)
	}
	return "⏰ Отчёт за сегодня ещё не сдан.\n!лог study=... wake=..."
}

// Stop останавливает планировщик и ждёт текущие задачи.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
