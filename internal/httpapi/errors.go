package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/progress-bot/internal/common"
)

// apiError — тело ответа при ошибке.
type apiError struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func errorBody(code string) apiError {
	return apiError{Error: code}
}

// writeError переводит доменную ошибку в HTTP-статус.
// Всё, что не распознано, считается сбоем хранилища: 503, можно повторить.
func writeError(c echo.Context, err error) error {
	status, code := http.StatusServiceUnavailable, "unavailable"
	switch {
	case errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrInvalidDate),
		errors.Is(err, common.ErrInvalidAmount),
		errors.Is(err, common.ErrInvalidTimezone),
		errors.Is(err, common.ErrUnknownRewardKind):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, common.ErrUserNotFound),
		errors.Is(err, common.ErrRewardNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrInsufficientBalance):
		status, code = http.StatusConflict, "insufficient_balance"
	}

	body := apiError{Error: code, Message: err.Error()}
	if status == http.StatusServiceUnavailable {
		log.WithError(err).WithFields(log.Fields{
			"component": "httpapi",
			"path":      c.Path(),
			"user_id":   currentUser(c),
		}).Error("Ошибка обработки запроса")
		// детали хранилища наружу не отдаём
		body.Message = "сервис временно недоступен, попробуй позже"
	}
	return c.JSON(status, body)
}
