package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"dashboard/internal/service"
)

// StrategyHandler отвечает за торговые стратегии бота
//
// Endpoints:
// - GET /api/v1/strategies - список стратегий с их состоянием
// - POST /api/v1/strategies/{id}/{action} - start, pause или stop стратегии
//
// Назначение:
// Читает стратегии из оркестратора и управляет их жизненным циклом.
// Каждое изменение состояния пишется в журнал аудита.
type StrategyHandler struct {
	strategyService service.StrategyServiceInterface
}

// NewStrategyHandler создает новый StrategyHandler с внедрением зависимости
func NewStrategyHandler(strategyService service.StrategyServiceInterface) *StrategyHandler {
	return &StrategyHandler{
		strategyService: strategyService,
	}
}

// List возвращает стратегии бота
//
// GET /api/v1/strategies
func (h *StrategyHandler) List(w http.ResponseWriter, r *http.Request) {
	strategies, err := h.strategyService.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, strategies, "")
}

// SetStatus изменяет состояние стратегии
//
// POST /api/v1/strategies/{id}/{action}
//
// HTTP коды:
// - 200 OK: состояние изменено
// - 400 Bad Request: неизвестное действие
// - 403 Forbidden: роль не допускает управление стратегиями
func (h *StrategyHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)

	if err := h.strategyService.SetStatus(r.Context(), session, vars["id"], vars["action"]); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, nil, "strategy "+vars["action"]+" applied")
}
