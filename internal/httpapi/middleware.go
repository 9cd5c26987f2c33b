package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"serotonyl.ru/progress-bot/internal/auth"
)

const userIDKey = "user_id"

// requireAuth проверяет Bearer-токен и кладёт user ID в контекст запроса.
func requireAuth(tokens *auth.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authz := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(authz, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, errorBody("unauthorized"))
			}
			userID, err := tokens.Parse(strings.TrimSpace(token))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorBody("invalid_token"))
			}
			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

func currentUser(c echo.Context) int64 {
	uid, _ := c.Get(userIDKey).(int64)
	return uid
}
