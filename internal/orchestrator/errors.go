package orchestrator

import (
	"errors"
	"fmt"
)

// Ошибки клиента оркестратора
var (
	// ErrUnavailable - транспортная ошибка: оркестратор недоступен
	// или не ответил за отведенный таймаут. Текст такой ошибки
	// пользователю не показывается.
	ErrUnavailable = errors.New("orchestrator unavailable")

	// ErrNotFound - ресурс не найден в оркестраторе
	ErrNotFound = errors.New("resource not found in orchestrator")
)

// APIError - ошибка уровня API: оркестратор ответил, но операция
// не удалась. Message безопасно показывать пользователю.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("orchestrator API error (status %d): %s", e.StatusCode, e.Message)
}

// IsAPIError возвращает APIError если err содержит его
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
