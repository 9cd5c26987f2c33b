// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в бота, планировщик и (если включён) HTTP API.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/auth"
	"serotonyl.ru/progress-bot/internal/bot"
	"serotonyl.ru/progress-bot/internal/bot/filters"
	"serotonyl.ru/progress-bot/internal/config"
	"serotonyl.ru/progress-bot/internal/db/postgres"
	"serotonyl.ru/progress-bot/internal/db/redisdb"
	"serotonyl.ru/progress-bot/internal/features/appdate"
	"serotonyl.ru/progress-bot/internal/features/dailylog"
	"serotonyl.ru/progress-bot/internal/features/economy"
	"serotonyl.ru/progress-bot/internal/features/friends"
	"serotonyl.ru/progress-bot/internal/features/leaderboard"
	"serotonyl.ru/progress-bot/internal/features/members"
	"serotonyl.ru/progress-bot/internal/features/rewards"
	"serotonyl.ru/progress-bot/internal/features/streak"
	"serotonyl.ru/progress-bot/internal/httpapi"
	"serotonyl.ru/progress-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	HTTP      *httpapi.Server // nil, если HTTP_ADDR не задан
	DB        *pgxpool.Pool
	Redis     *redis.Client // nil, если REDIS_ADDR не задан
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool, postgres.Migrations); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Кэш (необязательный) ===
	rdb := redisdb.NewClient(ctx, cfg)

	resolver := appdate.New(cfg.DayCutoffHour)
	timeout := cfg.StorageTimeout

	// === 4. Репозитории ===
	memberRepo := members.NewRepository(pool, timeout)
	economyRepo := economy.NewRepository(pool, timeout)
	streakRepo := streak.NewRepository(pool, timeout)
	dailylogRepo := dailylog.NewRepository(pool, timeout)
	rewardsRepo := rewards.NewRepository(pool, timeout)
	friendsRepo := friends.NewRepository(pool, timeout)
	leaderboardRepo := leaderboard.NewRepository(pool, timeout)

	// === 5. Сервисы ===
	leaderboardService := leaderboard.NewService(leaderboardRepo, leaderboard.NewCache(rdb, cfg.LeaderboardTTL))
	memberService := members.NewService(memberRepo, cfg.AppTimezone)
	economyService := economy.NewService(economyRepo)
	streakService := streak.NewService(streakRepo)
	dailylogService := dailylog.NewService(dailylogRepo, streakService, leaderboardService)
	rewardsService := rewards.NewService(rewardsRepo, resolver, leaderboardService, cfg.MaxCustomRewards)
	friendsService := friends.NewService(friendsRepo, memberService, resolver)

	// === 6. Обработчики ===
	handlers := bot.Handlers{
		Members:     members.NewHandler(memberService, botAPI),
		DailyLog:    dailylog.NewHandler(dailylogService, resolver, botAPI),
		Economy:     economy.NewHandler(economyService, botAPI),
		Streak:      streak.NewHandler(streakService, botAPI),
		Rewards:     rewards.NewHandler(rewardsService, botAPI),
		Friends:     friends.NewHandler(friendsService, botAPI),
		Leaderboard: leaderboard.NewHandler(leaderboardService, botAPI),
	}

	// === 7. Фильтры и токены ===
	chatFilter := filters.NewChatFilter(cfg.GroupChatID)

	var tokens *auth.Manager
	if cfg.HTTPAddr != "" {
		tokens = auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	}

	// === 8. Собираем бота ===
	b := bot.New(botAPI, cfg, memberService, handlers, tokens, chatFilter)

	// === 9. Планировщик задач ===
	scheduler := jobs.NewScheduler(
		jobs.Options{
			Timezone:     cfg.AppTimezone,
			ReminderHour: cfg.ReminderHour,
			Reminders:    cfg.FeatureRemindersEnabled,
		},
		memberService, dailylogService, resolver, leaderboardService,
		b.SendMessageToUser,
	)

	// === 10. HTTP API ===
	var server *httpapi.Server
	if tokens != nil {
		server = httpapi.New(cfg.HTTPAddr, httpapi.Deps{
			Members:     memberService,
			Logs:        dailylogService,
			Balances:    economyService,
			Rewards:     rewardsService,
			Leaderboard: leaderboardService,
			Resolver:    resolver,
		}, tokens)
	}

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		HTTP:      server,
		DB:        pool,
		Redis:     rdb,
		BotAPI:    botAPI,
	}, nil
}

// Close освобождает соединения с хранилищами.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			log.WithError(err).Warn("Ошибка закрытия Redis")
		}
	}
	a.DB.Close()
}
