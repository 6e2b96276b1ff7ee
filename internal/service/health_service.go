package service

import (
	"context"
	"fmt"

	"dashboard/internal/auth"
	"dashboard/internal/models"
	"dashboard/pkg/utils"
)

// HealthService отдает состояние сервисов торговой системы
// и перезапускает их через оркестратор.
type HealthService struct {
	auditRepo AuditRepositoryInterface
	orch      OrchestratorInterface
	logger    *utils.Logger
}

// NewHealthService создает новый экземпляр HealthService.
func NewHealthService(auditRepo AuditRepositoryInterface, orch OrchestratorInterface, logger *utils.Logger) *HealthService {
	return &HealthService{
		auditRepo: auditRepo,
		orch:      orch,
		logger:    logger.WithComponent("health"),
	}
}

// Services возвращает состояние всех сервисов
func (s *HealthService) Services(ctx context.Context) ([]models.ServiceStatus, error) {
	services, err := s.orch.GetServices(ctx)
	if err != nil {
		return nil, sanitizeOrchestratorError(err)
	}
	return services, nil
}

// RestartService перезапускает сервис. Только для администраторов.
func (s *HealthService) RestartService(ctx context.Context, session *models.Session, serviceID string) error {
	if serviceID == "" {
		return fmt.Errorf("%w: service id is required", ErrValidation)
	}
	if !auth.CanManageServices(session.Role) {
		return ErrForbidden
	}

	if err := s.orch.RestartService(ctx, serviceID); err != nil {
		return sanitizeOrchestratorError(err)
	}

	s.logger.Info("service restart requested",
		utils.String("service_id", serviceID),
		utils.UserID(session.UserID),
	)
	recordAudit(s.auditRepo, s.logger, session, "service_restart", models.AuditResourceServices, map[string]interface{}{
		"service_id": serviceID,
	})
	return nil
}
