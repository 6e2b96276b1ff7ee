package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"dashboard/internal/auth"
	"dashboard/internal/models"
	"dashboard/pkg/utils"
)

// DefaultConfigType - тип конфигурации по умолчанию, когда клиент его не указал
const DefaultConfigType = "trading"

// ConfigUpdateRequest представляет запрос обновления конфигурации бота
type ConfigUpdateRequest struct {
	ConfigType string          `json:"config_type,omitempty"`
	Config     json.RawMessage `json:"config"`
}

// ConfigService проксирует конфигурацию оркестратора и ведет историю
// снапшотов.
//
// Снапшот сохраняется ДО применения конфигурации оркестратором: даже
// если применение провалилось, в истории остается запись о том, что
// пытались применить.
type ConfigService struct {
	snapshotRepo SnapshotRepositoryInterface
	auditRepo    AuditRepositoryInterface
	orch         OrchestratorInterface
	logger       *utils.Logger
}

// NewConfigService создает новый экземпляр ConfigService.
func NewConfigService(
	snapshotRepo SnapshotRepositoryInterface,
	auditRepo AuditRepositoryInterface,
	orch OrchestratorInterface,
	logger *utils.Logger,
) *ConfigService {
	return &ConfigService{
		snapshotRepo: snapshotRepo,
		auditRepo:    auditRepo,
		orch:         orch,
		logger:       logger.WithComponent("config"),
	}
}

// Get возвращает текущую конфигурацию оркестратора как есть
func (s *ConfigService) Get(ctx context.Context) (json.RawMessage, error) {
	cfg, err := s.orch.GetConfig(ctx)
	if err != nil {
		return nil, sanitizeOrchestratorError(err)
	}
	return cfg, nil
}

// Update сохраняет снапшот и применяет конфигурацию через оркестратор.
func (s *ConfigService) Update(ctx context.Context, session *models.Session, req *ConfigUpdateRequest) (*models.ConfigSnapshot, error) {
	if !auth.CanEditConfig(session.Role) {
		return nil, ErrForbidden
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(req.Config, &payload); err != nil || len(payload) == 0 {
		return nil, fmt.Errorf("%w: config must be a non-empty JSON object", ErrValidation)
	}

	configType := req.ConfigType
	if configType == "" {
		configType = DefaultConfigType
	}

	// Секции для аудита определяются по активному снапшоту. Если его
	// нет, все верхнеуровневые секции считаются измененными.
	changed := s.changedSections(configType, payload)

	snapshot, err := s.snapshotRepo.Create(configType, req.Config, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("persist config snapshot: %w", err)
	}

	applyErr := s.orch.UpdateConfig(ctx, req.Config)

	outcome := map[string]interface{}{
		"snapshot_id":      snapshot.ID,
		"config_type":      configType,
		"changed_sections": changed,
		"applied":          applyErr == nil,
	}
	recordAudit(s.auditRepo, s.logger, session, "config_update", models.AuditResourceConfig, outcome)

	if applyErr != nil {
		s.logger.Error("config apply failed, snapshot retained",
			utils.Err(applyErr),
			utils.String("snapshot_id", snapshot.ID),
		)
		return nil, sanitizeOrchestratorError(applyErr)
	}

	s.logger.Info("config updated",
		utils.String("snapshot_id", snapshot.ID),
		utils.String("config_type", configType),
		utils.UserID(session.UserID),
	)
	return snapshot, nil
}

// History возвращает историю снапшотов указанного типа
func (s *ConfigService) History(ctx context.Context, configType string, limit int) ([]*models.ConfigSnapshot, error) {
	if configType == "" {
		configType = DefaultConfigType
	}
	return s.snapshotRepo.GetHistory(configType, limit)
}

// changedSections сравнивает верхнеуровневые секции нового payload
// с активным снапшотом
func (s *ConfigService) changedSections(configType string, payload map[string]json.RawMessage) []string {
	changed := make([]string, 0, len(payload))

	active, err := s.snapshotRepo.GetActive(configType)
	if err != nil {
		for section := range payload {
			changed = append(changed, section)
		}
		sort.Strings(changed)
		return changed
	}

	var prev map[string]json.RawMessage
	if err := json.Unmarshal(active.ConfigData, &prev); err != nil {
		prev = nil
	}

	for section, value := range payload {
		if old, ok := prev[section]; !ok || string(old) != string(value) {
			changed = append(changed, section)
		}
	}
	sort.Strings(changed)
	return changed
}
