package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"dashboard/internal/service"
)

// HealthHandler отвечает за состояние сервисов системы
//
// Endpoints:
// - GET /health - liveness дашборда, без аутентификации
// - GET /api/v1/services - состояние сервисов торговой системы
// - POST /api/v1/services/{id}/restart - перезапуск сервиса (только ADMIN)
//
// Назначение:
// Отдает состояние компонентов торговой системы из оркестратора и
// позволяет администратору перезапускать отдельные сервисы.
type HealthHandler struct {
	healthService service.HealthServiceInterface
}

// NewHealthHandler создает новый HealthHandler с внедрением зависимости
func NewHealthHandler(healthService service.HealthServiceInterface) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// Liveness возвращает состояние самого дашборда
//
// GET /health
//
// Не требует аутентификации, используется балансировщиком.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "")
}

// Services возвращает состояние сервисов торговой системы
//
// GET /api/v1/services
func (h *HealthHandler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := h.healthService.Services(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, services, "")
}

// Restart перезапускает сервис торговой системы
//
// POST /api/v1/services/{id}/restart
//
// HTTP коды:
// - 200 OK: команда передана оркестратору
// - 403 Forbidden: перезапуск доступен только администратору
func (h *HealthHandler) Restart(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	if err := h.healthService.RestartService(r.Context(), session, mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, nil, "restart requested")
}
