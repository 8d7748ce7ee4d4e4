// errors.go — ошибки бизнес-логики, по которым HTTP-слой выбирает статус.
package usecase

import "errors"

var (
	// ErrValidation — некорректные входные данные (тип, размер, URL).
	ErrValidation = errors.New("ошибка валидации")
	// ErrNotFound — анализ не найден.
	ErrNotFound = errors.New("анализ не найден")
)
