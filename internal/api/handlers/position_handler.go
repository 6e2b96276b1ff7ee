package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"dashboard/internal/service"
)

// PositionHandler отвечает за открытые позиции бота
//
// Endpoints:
// - GET /api/v1/positions - список открытых позиций
// - POST /api/v1/positions/{id}/close - закрытие одной позиции
// - POST /api/v1/positions/close - массовое закрытие по списку id
//
// Назначение:
// Читает позиции из оркестратора с фильтрацией по рынку и стратегии,
// выполняет закрытие позиций с записью в журнал аудита. Массовое
// закрытие продолжает работу при частичных отказах и возвращает
// счетчики и ошибки по каждой неудавшейся позиции.
type PositionHandler struct {
	positionService service.PositionServiceInterface
}

// NewPositionHandler создает новый PositionHandler с внедрением зависимости
func NewPositionHandler(positionService service.PositionServiceInterface) *PositionHandler {
	return &PositionHandler{
		positionService: positionService,
	}
}

// List возвращает открытые позиции
//
// GET /api/v1/positions?market=...&strategy_id=...
func (h *PositionHandler) List(w http.ResponseWriter, r *http.Request) {
	market := r.URL.Query().Get("market")
	strategyID := r.URL.Query().Get("strategy_id")

	positions, err := h.positionService.List(r.Context(), market, strategyID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, positions, "")
}

// Close закрывает одну позицию
//
// POST /api/v1/positions/{id}/close
//
// HTTP коды:
// - 200 OK: позиция закрыта
// - 403 Forbidden: роль не допускает управление позициями
// - 500 Internal Server Error: оркестратор недоступен или отказал
func (h *PositionHandler) Close(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	positionID := mux.Vars(r)["id"]

	if err := h.positionService.Close(r.Context(), session, positionID); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, nil, "position closed")
}

// CloseMultipleRequest представляет запрос массового закрытия позиций
type CloseMultipleRequest struct {
	PositionIDs []string `json:"position_ids"`
}

// CloseMultiple закрывает несколько позиций
//
// POST /api/v1/positions/close
//
// Тело запроса:
//
//	{"position_ids": ["p1", "p2"]}
//
// Частичный отказ не прерывает обработку: ответ содержит счетчики
// closed и failed и сообщения об ошибках по каждой позиции.
func (h *PositionHandler) CloseMultiple(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req CloseMultipleRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.positionService.CloseMultiple(r.Context(), session, req.PositionIDs)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, result, "bulk close finished")
}
