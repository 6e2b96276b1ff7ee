package service

import (
	"context"
	"encoding/json"

	"dashboard/internal/auth"
	"dashboard/internal/models"
	"dashboard/internal/repository"
	"dashboard/pkg/utils"
)

// AuditService предоставляет чтение журнала аудита.
//
// Запись журнала выполняют сами сервисы через recordAudit: ровно одна
// запись на привилегированную мутацию.
type AuditService struct {
	auditRepo AuditRepositoryInterface
}

// NewAuditService создает новый экземпляр AuditService.
func NewAuditService(auditRepo AuditRepositoryInterface) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// List возвращает записи журнала по фильтру.
// Доступно только ролям с правом просмотра аудита.
func (s *AuditService) List(ctx context.Context, session *models.Session, filter repository.AuditFilter) ([]*models.AuditLogEntry, error) {
	if !auth.CanViewAuditLogs(session.Role) {
		return nil, ErrForbidden
	}
	return s.auditRepo.List(filter)
}

// recordAudit пишет одну запись журнала аудита.
//
// Сбой записи логируется и не прерывает уже выполненную операцию
// пользователя. Единственное исключение из этого правила - pending-запись
// аварийного действия, она создается напрямую через репозиторий.
func recordAudit(repo AuditRepositoryInterface, logger *utils.Logger, session *models.Session, action, resource string, details interface{}) {
	var raw json.RawMessage
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			logger.Warn("audit details marshal failed", utils.Err(err), utils.Action(action))
		} else {
			raw = b
		}
	}

	entry := &models.AuditLogEntry{
		UserID:    session.UserID,
		Action:    action,
		Resource:  resource,
		Details:   raw,
		IPAddress: session.IP,
		UserAgent: session.UserAgent,
	}

	if err := repo.Create(entry); err != nil {
		logger.Warn("audit write failed",
			utils.Err(err),
			utils.Action(action),
			utils.UserID(session.UserID),
		)
	}
}
