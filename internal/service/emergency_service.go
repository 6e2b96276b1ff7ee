package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"dashboard/internal/auth"
	"dashboard/internal/metrics"
	"dashboard/internal/models"
	"dashboard/internal/orchestrator"
	"dashboard/pkg/utils"
)

// Ошибки сервиса аварийных действий
var (
	// ErrOrchestratorUnavailable - транспортный сбой при вызове оркестратора.
	// Текст безопасен для отдачи клиенту: команда могла дойти, а могла и нет.
	ErrOrchestratorUnavailable = errors.New("orchestrator unreachable, check system status manually")
)

// EmergencyRequest представляет запрос аварийного действия
type EmergencyRequest struct {
	Action string `json:"action"` // pause, stop, close_all
	Reason string `json:"reason,omitempty"`
}

// EmergencyResult представляет исход аварийного действия
type EmergencyResult struct {
	ActionID          string `json:"action_id"`
	Action            string `json:"action"`
	Status            string `json:"status"`
	AffectedPositions int    `json:"affected_positions,omitempty"`
}

// EmergencyService реализует жизненный цикл аварийного действия.
//
// Порядок строгий:
//  1. Валидация запроса (до любых побочных эффектов)
//  2. Проверка роли (до любых записей)
//  3. Pending-запись в БД (сбой здесь проваливает весь запрос)
//  4. Вызов оркестратора
//  5. Финализация записи ровно один раз (completed или failed)
//  6. Асинхронная рассылка события и запись аудита
type EmergencyService struct {
	emergencyRepo EmergencyRepositoryInterface
	auditRepo     AuditRepositoryInterface
	orch          OrchestratorInterface
	broadcaster   BroadcasterInterface
	logger        *utils.Logger
}

// NewEmergencyService создает новый экземпляр EmergencyService.
func NewEmergencyService(
	emergencyRepo EmergencyRepositoryInterface,
	auditRepo AuditRepositoryInterface,
	orch OrchestratorInterface,
	broadcaster BroadcasterInterface,
	logger *utils.Logger,
) *EmergencyService {
	return &EmergencyService{
		emergencyRepo: emergencyRepo,
		auditRepo:     auditRepo,
		orch:          orch,
		broadcaster:   broadcaster,
		logger:        logger.WithComponent("emergency"),
	}
}

// Trigger выполняет аварийное действие pause|stop|close_all.
func (s *EmergencyService) Trigger(ctx context.Context, session *models.Session, req *EmergencyRequest) (*EmergencyResult, error) {
	if !models.ValidEmergencyAction(req.Action) {
		return nil, fmt.Errorf("%w: unknown emergency action %q", ErrValidation, req.Action)
	}
	if err := utils.ValidateReason(req.Reason); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !auth.CanUseEmergencyControls(session.Role) {
		return nil, ErrForbidden
	}

	// Pending-запись создается ДО вызова оркестратора. Если она не
	// легла в БД, команда не отправляется вообще.
	action, err := s.emergencyRepo.CreatePending(req.Action, session.UserID, req.Reason)
	if err != nil {
		return nil, fmt.Errorf("create pending emergency action: %w", err)
	}

	s.logger.Info("emergency action triggered",
		utils.ActionID(action.ID),
		utils.Action(req.Action),
		utils.UserID(session.UserID),
		utils.Role(session.Role),
	)

	status := models.EmergencyStatusFailed
	var rawResult json.RawMessage

	defer func() {
		// Переход pending -> completed|failed выполняется ровно один
		// раз, репозиторий отбрасывает повторную финализацию.
		if ferr := s.emergencyRepo.Finalize(action.ID, status, rawResult); ferr != nil {
			s.logger.Error("emergency action finalize failed",
				utils.Err(ferr),
				utils.ActionID(action.ID),
			)
		}
		metrics.EmergencyActionProcessed(req.Action, status)

		broadcast := *action
		broadcast.Status = status
		broadcast.Result = rawResult
		go s.broadcaster.BroadcastEmergencyAction(&broadcast)
	}()

	var (
		closed  int
		callErr error
	)
	switch req.Action {
	case models.EmergencyActionPause:
		rawResult, callErr = s.orch.PauseAllStrategies(ctx)
	case models.EmergencyActionStop:
		rawResult, callErr = s.orch.StopAllTrading(ctx)
	case models.EmergencyActionCloseAll:
		closed, rawResult, callErr = s.orch.CloseAllPositions(ctx)
	}

	outcome := map[string]interface{}{
		"action_id": action.ID,
		"action":    req.Action,
		"reason":    req.Reason,
	}

	if callErr != nil {
		s.logger.Error("emergency action failed",
			utils.Err(callErr),
			utils.ActionID(action.ID),
			utils.Action(req.Action),
		)
		rawResult = errorResult(callErr)
		outcome["status"] = models.EmergencyStatusFailed
		recordAudit(s.auditRepo, s.logger, session, auditAction(req.Action), models.AuditResourceEmergency, outcome)
		return nil, sanitizeOrchestratorError(callErr)
	}

	status = models.EmergencyStatusCompleted
	outcome["status"] = models.EmergencyStatusCompleted
	if req.Action == models.EmergencyActionCloseAll {
		outcome["closed_positions"] = closed
	}
	recordAudit(s.auditRepo, s.logger, session, auditAction(req.Action), models.AuditResourceEmergency, outcome)

	return &EmergencyResult{
		ActionID:          action.ID,
		Action:            req.Action,
		Status:            models.EmergencyStatusCompleted,
		AffectedPositions: closed,
	}, nil
}

// History возвращает последние аварийные действия. Только для администраторов.
func (s *EmergencyService) History(ctx context.Context, session *models.Session, limit int) ([]*models.EmergencyAction, error) {
	if !auth.CanViewAuditLogs(session.Role) {
		return nil, ErrForbidden
	}
	return s.emergencyRepo.GetRecent(limit)
}

// auditAction собирает тег действия для журнала аудита
func auditAction(action string) string {
	return "emergency_" + action
}

// errorResult упаковывает ошибку вызова в JSON для поля result
func errorResult(err error) json.RawMessage {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return b
}

// sanitizeOrchestratorError приводит ошибку оркестратора к безопасному
// для клиента виду. Детали транспортного сбоя остаются в логах.
func sanitizeOrchestratorError(err error) error {
	if errors.Is(err, orchestrator.ErrUnavailable) {
		return ErrOrchestratorUnavailable
	}
	return err
}
