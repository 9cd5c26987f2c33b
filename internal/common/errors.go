// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки валидации (дневной отчёт, награды)
var (
	// ErrValidation — входные данные не прошли проверку.
	// Конкретная причина оборачивается через fmt.Errorf("...: %w", ErrValidation).
	ErrValidation = errors.New("некорректные данные")
	// ErrInvalidDate — дата не в формате ГГГГ-ММ-ДД
	ErrInvalidDate = errors.New("дата должна быть в формате ГГГГ-ММ-ДД")
	// ErrInvalidTimezone — неизвестный часовой пояс
	ErrInvalidTimezone = errors.New("неизвестный часовой пояс")
)

// Ошибки экономики (очки, награды)
var (
	// ErrInsufficientBalance — недостаточно очков на счёте
	ErrInsufficientBalance = errors.New("недостаточно очков на счёте")
	// ErrInvalidAmount — некорректная стоимость (ноль или отрицательная)
	ErrInvalidAmount = errors.New("стоимость должна быть положительной")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
	// ErrRewardNotFound — награда не найдена (или принадлежит другому пользователю)
	ErrRewardNotFound = errors.New("награда не найдена")
	// ErrUnknownRewardKind — тип награды не catalog и не custom
	ErrUnknownRewardKind = errors.New("неизвестный тип награды")
)

// Ошибки друзей
var (
	// ErrSelfFriend — попытка добавить в друзья самого себя
	ErrSelfFriend = errors.New("нельзя добавить в друзья самого себя")
	// ErrAlreadyFriends — пользователи уже друзья
	ErrAlreadyFriends = errors.New("вы уже друзья")
	// ErrNotFriends — пользователи не являются друзьями
	ErrNotFriends = errors.New("этого пользователя нет в друзьях")
)
