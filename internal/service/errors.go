package service

import "errors"

// Общие ошибки сервисного слоя. Обработчики транслируют их в HTTP-статусы:
// ErrValidation -> 400, ErrForbidden -> 403, ErrInvalidCredentials -> 401.
var (
	ErrValidation         = errors.New("validation failed")
	ErrForbidden          = errors.New("operation not permitted for role")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
