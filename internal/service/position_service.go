package service

import (
	"context"
	"fmt"
	"sync"

	"dashboard/internal/auth"
	"dashboard/internal/models"
	"dashboard/internal/orchestrator"
	"dashboard/pkg/utils"
)

// BulkCloseResult представляет исход пакетного закрытия позиций
type BulkCloseResult struct {
	Closed int               `json:"closed"`
	Failed int               `json:"failed"`
	Errors map[string]string `json:"errors,omitempty"` // position_id -> причина
}

// PositionService управляет позициями через оркестратор.
type PositionService struct {
	auditRepo AuditRepositoryInterface
	orch      OrchestratorInterface
	logger    *utils.Logger
}

// NewPositionService создает новый экземпляр PositionService.
func NewPositionService(auditRepo AuditRepositoryInterface, orch OrchestratorInterface, logger *utils.Logger) *PositionService {
	return &PositionService{
		auditRepo: auditRepo,
		orch:      orch,
		logger:    logger.WithComponent("positions"),
	}
}

// List возвращает открытые позиции с опциональными фильтрами
func (s *PositionService) List(ctx context.Context, market, strategyID string) ([]models.Position, error) {
	if market != "" {
		if err := utils.ValidateMarketID(market); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	positions, err := s.orch.GetPositions(ctx, orchestrator.PositionFilter{
		Market:     market,
		StrategyID: strategyID,
	})
	if err != nil {
		return nil, sanitizeOrchestratorError(err)
	}
	return positions, nil
}

// Close закрывает одну позицию
func (s *PositionService) Close(ctx context.Context, session *models.Session, positionID string) error {
	if positionID == "" {
		return fmt.Errorf("%w: position id is required", ErrValidation)
	}
	if !auth.CanManagePositions(session.Role) {
		return ErrForbidden
	}

	if err := s.orch.ClosePosition(ctx, positionID); err != nil {
		return sanitizeOrchestratorError(err)
	}

	recordAudit(s.auditRepo, s.logger, session, "position_close", models.AuditResourcePositions, map[string]interface{}{
		"position_id": positionID,
	})
	return nil
}

// CloseMultiple закрывает пакет позиций конкурентно.
//
// Сбой закрытия одной позиции не прерывает остальные: результат
// сообщает счетчики closed/failed и причины по каждой неудаче.
// На весь пакет пишется ровно одна запись аудита.
func (s *PositionService) CloseMultiple(ctx context.Context, session *models.Session, positionIDs []string) (*BulkCloseResult, error) {
	if err := utils.ValidateIDList(positionIDs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !auth.CanManagePositions(session.Role) {
		return nil, ErrForbidden
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result = &BulkCloseResult{Errors: make(map[string]string)}
	)

	for _, id := range positionIDs {
		wg.Add(1)
		go func(positionID string) {
			defer wg.Done()

			err := s.orch.ClosePosition(ctx, positionID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors[positionID] = sanitizeOrchestratorError(err).Error()
				return
			}
			result.Closed++
		}(id)
	}
	wg.Wait()

	if result.Failed > 0 {
		s.logger.Warn("bulk close partially failed",
			utils.Int("closed", result.Closed),
			utils.Int("failed", result.Failed),
			utils.UserID(session.UserID),
		)
	}

	recordAudit(s.auditRepo, s.logger, session, "position_close_multiple", models.AuditResourcePositions, map[string]interface{}{
		"requested": len(positionIDs),
		"closed":    result.Closed,
		"failed":    result.Failed,
	})

	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result, nil
}
