// Package models содержит доменные структуры федерации SLWC: школы, члены,
// инструкторы, а также общие ошибки, которыми обмениваются слои приложения.
package models

import "errors"

// Базовые категории ошибок. Хранилище и сервисы оборачивают их через %w,
// HTTP-слой выбирает статус ответа по errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
)

// DomainError ошибка с сообщением, которое можно показать клиенту.
type DomainError struct {
	Kind error
	Msg  string
}

func (e *DomainError) Error() string {
	return e.Msg
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

// NewError создаёт ошибку категории kind с пользовательским сообщением.
func NewError(kind error, msg string) error {
	return &DomainError{Kind: kind, Msg: msg}
}

// Message возвращает пользовательское сообщение ошибки или пустую строку,
// если в цепочке нет DomainError.
func Message(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Msg
	}
	return ""
}
