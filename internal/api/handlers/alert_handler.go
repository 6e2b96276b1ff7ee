package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"dashboard/internal/models"
	"dashboard/internal/service"
)

// AlertHandler отвечает за правила алертов и каналы уведомлений
//
// Endpoints:
// - GET /api/v1/alerts - правила, каналы и последние алерты
// - POST /api/v1/alerts/{id}/acknowledge - подтверждение алерта
// - PUT /api/v1/alerts/rules/{id} - изменение правила
// - PUT /api/v1/alerts/channels/{id} - изменение канала
// - POST /api/v1/alerts/channels/{id}/test - тестовое уведомление
// - POST /internal/alerts - прием алертов от оркестратора (basic auth)
//
// Назначение:
// Управление порогами алертов (drawdown, exposure, error rate) и
// каналами доставки. Секреты каналов хранятся зашифрованными и в
// ответах не возвращаются.
type AlertHandler struct {
	alertService service.AlertServiceInterface
}

// NewAlertHandler создает новый AlertHandler с внедрением зависимости
func NewAlertHandler(alertService service.AlertServiceInterface) *AlertHandler {
	return &AlertHandler{
		alertService: alertService,
	}
}

// Overview возвращает правила, каналы и последние алерты
//
// GET /api/v1/alerts
func (h *AlertHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.alertService.Overview(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, overview, "")
}

// Acknowledge подтверждает алерт
//
// POST /api/v1/alerts/{id}/acknowledge
//
// Повторное подтверждение идемпотентно.
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	if err := h.alertService.Acknowledge(r.Context(), session, mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, nil, "alert acknowledged")
}

// UpdateRule изменяет правило алертов
//
// PUT /api/v1/alerts/rules/{id}
//
// Тело запроса содержит только изменяемые поля:
//
//	{"enabled": false, "threshold": 15.0, "severity": "critical"}
//
// HTTP коды:
// - 200 OK: правило обновлено
// - 400 Bad Request: отрицательный порог или неизвестная severity
// - 403 Forbidden: изменение правил доступно только администратору
func (h *AlertHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req service.RuleUpdateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.ID = mux.Vars(r)["id"]

	rule, err := h.alertService.UpdateRule(r.Context(), session, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, rule, "rule updated")
}

// UpdateChannel изменяет канал уведомлений
//
// PUT /api/v1/alerts/channels/{id}
//
// Конфигурация канала принимается открытым текстом и шифруется перед
// сохранением. В ответе поле config всегда пустое.
func (h *AlertHandler) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req service.ChannelUpdateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	req.ID = mux.Vars(r)["id"]

	channel, err := h.alertService.UpdateChannel(r.Context(), session, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, channel, "channel updated")
}

// TestChannel отправляет тестовое уведомление в канал
//
// POST /api/v1/alerts/channels/{id}/test
func (h *AlertHandler) TestChannel(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	if err := h.alertService.TestChannel(r.Context(), session, mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, nil, "test notification sent")
}

// Ingest принимает сработавший алерт от оркестратора
//
// POST /internal/alerts
//
// Endpoint закрыт basic auth и не входит в публичный API.
// Принятый алерт сохраняется и рассылается по websocket.
func (h *AlertHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var alert models.Alert
	if err := decodeJSONBody(r, &alert); err != nil {
		respondError(w, err)
		return
	}

	if err := h.alertService.Ingest(r.Context(), &alert); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusAccepted, nil, "alert accepted")
}
