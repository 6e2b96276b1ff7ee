package service

import (
	"context"
	"sync"
	"time"

	"dashboard/internal/metrics"
	"dashboard/internal/models"
	"dashboard/internal/orchestrator"
	"dashboard/pkg/utils"
)

// Ключ кеша сводки дашборда
const dashboardCacheKey = "dashboard:summary"

// DashboardService собирает агрегированную сводку для главной
// страницы дашборда.
//
// Сводка кешируется с коротким TTL. Любой сбой кеша приводит к живой
// агрегации, а не к ошибке запроса.
type DashboardService struct {
	emergencyRepo EmergencyRepositoryInterface
	orch          OrchestratorInterface
	cache         CacheInterface
	broadcaster   BroadcasterInterface
	logger        *utils.Logger
}

// NewDashboardService создает новый экземпляр DashboardService.
func NewDashboardService(
	emergencyRepo EmergencyRepositoryInterface,
	orch OrchestratorInterface,
	cache CacheInterface,
	broadcaster BroadcasterInterface,
	logger *utils.Logger,
) *DashboardService {
	return &DashboardService{
		emergencyRepo: emergencyRepo,
		orch:          orch,
		cache:         cache,
		broadcaster:   broadcaster,
		logger:        logger.WithComponent("dashboard"),
	}
}

// Summary возвращает сводку, по возможности из кеша
func (s *DashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	if cached, ok := s.cache.Get(dashboardCacheKey); ok {
		if summary, ok := cached.(*models.DashboardSummary); ok {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			return summary, nil
		}
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	summary, err := s.aggregate(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(dashboardCacheKey, summary)
	go s.broadcaster.BroadcastDashboardUpdate(summary)
	return summary, nil
}

// aggregate собирает сводку из оркестратора и БД конкурентно
func (s *DashboardService) aggregate(ctx context.Context) (*models.DashboardSummary, error) {
	var (
		wg          sync.WaitGroup
		positions   []models.Position
		strategies  []models.Strategy
		emergencies []*models.EmergencyAction

		posErr, stratErr error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		positions, posErr = s.orch.GetPositions(ctx, orchestrator.PositionFilter{})
	}()
	go func() {
		defer wg.Done()
		strategies, stratErr = s.orch.GetStrategies(ctx)
	}()
	go func() {
		defer wg.Done()
		// Сбой чтения истории не валит сводку
		var err error
		emergencies, err = s.emergencyRepo.GetRecent(5)
		if err != nil {
			s.logger.Warn("emergency history unavailable for summary", utils.Err(err))
		}
	}()
	wg.Wait()

	if posErr != nil {
		return nil, sanitizeOrchestratorError(posErr)
	}
	if stratErr != nil {
		return nil, sanitizeOrchestratorError(stratErr)
	}

	summary := &models.DashboardSummary{
		OpenPositions:     len(positions),
		RecentEmergencies: make([]models.EmergencyAction, 0, len(emergencies)),
		GeneratedAt:       time.Now(),
	}

	for _, p := range positions {
		summary.TotalExposure += p.Size * p.CurrentPrice
		summary.UnrealizedPL += p.UnrealizedPL
	}
	for _, st := range strategies {
		switch st.Status {
		case models.StrategyStatusRunning:
			summary.ActiveStrategies++
		case models.StrategyStatusPaused:
			summary.PausedStrategies++
		}
		summary.DailyPnL += st.PnL
	}
	for _, e := range emergencies {
		summary.RecentEmergencies = append(summary.RecentEmergencies, *e)
	}

	return summary, nil
}
