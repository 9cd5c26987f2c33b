// Package httpapi — HTTP API поверх тех же сервисов, что и бот.
// Авторизация: Bearer JWT, который пользователь получает командой !токен.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/auth"
)

// shutdownTimeout — сколько ждём текущие запросы при остановке
const shutdownTimeout = 10 * time.Second

// Server — HTTP-сервер API.
type Server struct {
	e    *echo.Echo
	addr string
}

// New собирает маршруты.
func New(addr string, deps Deps, tokens *auth.Manager) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.BodyLimit("64K"))

	h := &handlers{deps: deps}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})

	api := e.Group("/api")
	// Прикидка очков не трогает данные, токен не нужен
	api.POST("/score", h.previewScore)

	private := api.Group("", requireAuth(tokens))
	private.GET("/me", h.me)
	private.GET("/logs/:date", h.getLog)
	private.PUT("/logs/:date", h.putLog)
	private.GET("/rewards", h.listRewards)
	private.POST("/rewards/buy", h.buyReward)
	private.GET("/leaderboard", h.leaderboard)

	return &Server{e: e, addr: addr}
}

// Handler возвращает http.Handler (для тестов).
func (s *Server) Handler() http.Handler {
	return s.e
}

// Start слушает addr до отмены ctx, затем мягко останавливается.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.addr).Info("HTTP API запущен")
		if err := s.e.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("HTTP API остановлен")
	return nil
}

// requestLogger пишет запросы в logrus.
func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(log.Fields{
				"component":  "httpapi",
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if uid, ok := c.Get(userIDKey).(int64); ok {
				entry = entry.WithField("user_id", uid)
			}
			if v.Error != nil {
				entry.WithError(v.Error).Warn("HTTP запрос с ошибкой")
				return nil
			}
			entry.Debug("HTTP запрос")
			return nil
		},
	})
}
