package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"dashboard/internal/auth"
	"dashboard/internal/models"
	"dashboard/internal/orchestrator"
	"dashboard/internal/service"
)

// APIResponse единый конверт для всех API endpoints.
//
// Успех:  {"success": true,  "data": {...}, "message": "..."}
// Ошибка: {"success": false, "error": "..."}
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// respondJSON отправляет JSON ответ с указанным кодом
func respondJSON(w http.ResponseWriter, code int, payload APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(payload)
}

// respondSuccess отправляет успешный ответ в конверте APIResponse
func respondSuccess(w http.ResponseWriter, code int, data interface{}, message string) {
	respondJSON(w, code, APIResponse{Success: true, Data: data, Message: message})
}

// respondError переводит ошибку сервисного слоя в HTTP код и безопасное
// сообщение. Внутренние ошибки наружу не отдаются: детали пишутся в лог
// на стороне сервиса, клиент видит общий текст.
func respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	message := "internal server error"

	var apiErr *orchestrator.APIError

	switch {
	case errors.Is(err, service.ErrValidation):
		code = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, service.ErrForbidden):
		code = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		code = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, service.ErrOrchestratorUnavailable):
		// Текст фиксирован и не содержит деталей транспорта
		message = service.ErrOrchestratorUnavailable.Error()
	case errors.As(err, &apiErr):
		// Оркестратор вернул структурированную ошибку, ее текст безопасен
		message = apiErr.Message
	}

	respondJSON(w, code, APIResponse{Success: false, Error: message})
}

// sessionFrom достает сессию из контекста запроса.
// Отсутствие сессии означает запрос мимо auth middleware.
func sessionFrom(w http.ResponseWriter, r *http.Request) (*models.Session, bool) {
	session, ok := auth.SessionFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Error: "authentication required"})
		return nil, false
	}
	return session, true
}

// decodeJSONBody разбирает тело запроса в dst. Тело ограничено 1 МБ.
func decodeJSONBody(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return service.ErrValidation
	}
	return nil
}

// parseLimit читает query параметр limit со значением по умолчанию.
// Нечисловые и неположительные значения заменяются на def.
func parseLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
