package handlers

import (
	"net/http"

	"dashboard/internal/service"
)

// ConfigHandler отвечает за конфигурацию торгового бота
//
// Endpoints:
// - GET /api/v1/config - текущая конфигурация из оркестратора
// - PUT /api/v1/config - обновление конфигурации со снапшотом
// - GET /api/v1/config/history - история снапшотов
//
// Назначение:
// Проксирует конфигурацию оркестратора. Перед каждым применением
// сервис сохраняет версионированный снапшот, поэтому неудачное
// применение не теряет присланную конфигурацию.
type ConfigHandler struct {
	configService service.ConfigServiceInterface
}

// NewConfigHandler создает новый ConfigHandler с внедрением зависимости
func NewConfigHandler(configService service.ConfigServiceInterface) *ConfigHandler {
	return &ConfigHandler{
		configService: configService,
	}
}

// Get возвращает текущую конфигурацию бота
//
// GET /api/v1/config
func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configService.Get(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, cfg, "")
}

// Update обновляет конфигурацию бота
//
// PUT /api/v1/config
//
// Тело запроса:
//
//	{"config_type": "trading", "config": {...}}
//
// HTTP коды:
// - 200 OK: снапшот сохранен и конфигурация применена
// - 400 Bad Request: тело не является JSON объектом
// - 403 Forbidden: роль не допускает изменение конфигурации
// - 500 Internal Server Error: снапшот сохранен, но применение не удалось
func (h *ConfigHandler) Update(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req service.ConfigUpdateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	snapshot, err := h.configService.Update(r.Context(), session, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, snapshot, "config updated")
}

// History возвращает историю снапшотов конфигурации
//
// GET /api/v1/config/history?config_type=trading&limit=20
func (h *ConfigHandler) History(w http.ResponseWriter, r *http.Request) {
	configType := r.URL.Query().Get("config_type")

	snapshots, err := h.configService.History(r.Context(), configType, parseLimit(r, 20))
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, snapshots, "")
}
