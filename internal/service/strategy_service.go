package service

import (
	"context"
	"fmt"

	"dashboard/internal/auth"
	"dashboard/internal/models"
	"dashboard/pkg/utils"
)

// Допустимые действия над стратегией
var strategyActions = map[string]bool{
	"start": true,
	"pause": true,
	"stop":  true,
}

// StrategyService управляет стратегиями через оркестратор.
type StrategyService struct {
	auditRepo AuditRepositoryInterface
	orch      OrchestratorInterface
	logger    *utils.Logger
}

// NewStrategyService создает новый экземпляр StrategyService.
func NewStrategyService(auditRepo AuditRepositoryInterface, orch OrchestratorInterface, logger *utils.Logger) *StrategyService {
	return &StrategyService{
		auditRepo: auditRepo,
		orch:      orch,
		logger:    logger.WithComponent("strategies"),
	}
}

// List возвращает все стратегии
func (s *StrategyService) List(ctx context.Context) ([]models.Strategy, error) {
	strategies, err := s.orch.GetStrategies(ctx)
	if err != nil {
		return nil, sanitizeOrchestratorError(err)
	}
	return strategies, nil
}

// SetStatus запускает, приостанавливает или останавливает стратегию
func (s *StrategyService) SetStatus(ctx context.Context, session *models.Session, strategyID, action string) error {
	if strategyID == "" {
		return fmt.Errorf("%w: strategy id is required", ErrValidation)
	}
	if !strategyActions[action] {
		return fmt.Errorf("%w: unknown strategy action %q", ErrValidation, action)
	}
	if !auth.CanManageStrategies(session.Role) {
		return ErrForbidden
	}

	if err := s.orch.SetStrategyStatus(ctx, strategyID, action); err != nil {
		return sanitizeOrchestratorError(err)
	}

	s.logger.Info("strategy status changed",
		utils.StrategyID(strategyID),
		utils.Action(action),
		utils.UserID(session.UserID),
	)
	recordAudit(s.auditRepo, s.logger, session, "strategy_"+action, models.AuditResourceStrategies, map[string]interface{}{
		"strategy_id": strategyID,
	})
	return nil
}
