package handlers

import (
	"net/http"

	"dashboard/internal/service"
)

// EmergencyHandler отвечает за аварийные действия над торговым ботом
//
// Endpoints:
// - POST /api/v1/emergency - выполнить аварийное действие (pause, stop, close_all)
// - GET /api/v1/emergency/history - история аварийных действий
//
// Назначение:
// Принимает аварийные команды операторов, делегирует сервису полный
// жизненный цикл (запись pending, вызов оркестратора, финализация,
// аудит, broadcast) и возвращает итоговый статус действия.
type EmergencyHandler struct {
	emergencyService service.EmergencyServiceInterface
}

// NewEmergencyHandler создает новый EmergencyHandler с внедрением зависимости
func NewEmergencyHandler(emergencyService service.EmergencyServiceInterface) *EmergencyHandler {
	return &EmergencyHandler{
		emergencyService: emergencyService,
	}
}

// Trigger выполняет аварийное действие
//
// POST /api/v1/emergency
//
// Тело запроса:
//
//	{"action": "pause|stop|close_all", "reason": "..."}
//
// HTTP коды:
// - 200 OK: действие выполнено, в data итог с action_id
// - 400 Bad Request: неизвестное действие или слишком длинная причина
// - 403 Forbidden: роль не допускает аварийные действия
// - 500 Internal Server Error: оркестратор недоступен или вернул ошибку
func (h *EmergencyHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req service.EmergencyRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.emergencyService.Trigger(r.Context(), session, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, result, "emergency action completed")
}

// History возвращает последние аварийные действия
//
// GET /api/v1/emergency/history?limit=20
//
// HTTP коды:
// - 200 OK: список действий, новые первыми
// - 403 Forbidden: роль не допускает просмотр истории
func (h *EmergencyHandler) History(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	actions, err := h.emergencyService.History(r.Context(), session, parseLimit(r, 20))
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, actions, "")
}
