package handlers

import (
	"net/http"

	"dashboard/internal/service"
)

// DashboardHandler отвечает за сводку главного экрана
//
// Endpoints:
// - GET /api/v1/dashboard - агрегированная сводка
//
// Назначение:
// Отдает совокупную экспозицию, нереализованный P&L, счетчики
// стратегий и последние аварийные действия. Сводка кэшируется на
// короткий TTL, чтобы частые обновления экрана не нагружали
// оркестратор.
type DashboardHandler struct {
	dashboardService service.DashboardServiceInterface
}

// NewDashboardHandler создает новый DashboardHandler с внедрением зависимости
func NewDashboardHandler(dashboardService service.DashboardServiceInterface) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// Summary возвращает сводку дашборда
//
// GET /api/v1/dashboard
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboardService.Summary(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, summary, "")
}
