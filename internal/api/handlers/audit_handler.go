package handlers

import (
	"net/http"

	"dashboard/internal/repository"
	"dashboard/internal/service"
)

// AuditHandler отвечает за журнал аудита
//
// Endpoints:
// - GET /api/v1/audit - записи журнала с фильтрацией
//
// Назначение:
// Отдает журнал действий операторов (вход, аварийные действия,
// изменения конфигурации, закрытия позиций) с фильтрами по
// пользователю и ресурсу. Доступ только администратору.
type AuditHandler struct {
	auditService service.AuditServiceInterface
}

// NewAuditHandler создает новый AuditHandler с внедрением зависимости
func NewAuditHandler(auditService service.AuditServiceInterface) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// List возвращает записи журнала аудита
//
// GET /api/v1/audit?user_id=admin&resource=emergency&limit=50
//
// HTTP коды:
// - 200 OK: записи, новые первыми
// - 403 Forbidden: роль не допускает просмотр журнала
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	filter := repository.AuditFilter{
		UserID:   r.URL.Query().Get("user_id"),
		Resource: r.URL.Query().Get("resource"),
		Limit:    parseLimit(r, 50),
	}

	entries, err := h.auditService.List(r.Context(), session, filter)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, entries, "")
}
