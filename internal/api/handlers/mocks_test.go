package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"dashboard/internal/models"
	"dashboard/internal/repository"
	"dashboard/internal/service"
)

// errDatabase имитирует внутреннюю ошибку, текст которой не должен
// попадать в ответ API
var errDatabase = errors.New("pq: connection refused")

// ============ Mock Auth Service ============

// MockAuthService мок для AuthServiceInterface
type MockAuthService struct {
	loginResult *service.LoginResult
	loginErr    error
	logoutErr   error

	lastUsername  string
	lastIP        string
	lastUserAgent string
	mu            sync.Mutex
}

func (m *MockAuthService) Login(ctx context.Context, username, password, ip, userAgent string) (*service.LoginResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastUsername = username
	m.lastIP = ip
	m.lastUserAgent = userAgent
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return m.loginResult, nil
}

func (m *MockAuthService) Logout(ctx context.Context, session *models.Session, ip, userAgent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastIP = ip
	m.lastUserAgent = userAgent
	return m.logoutErr
}

var _ service.AuthServiceInterface = (*MockAuthService)(nil)

// ============ Mock Emergency Service ============

// MockEmergencyService мок для EmergencyServiceInterface
type MockEmergencyService struct {
	result     *service.EmergencyResult
	history    []*models.EmergencyAction
	triggerErr error
	historyErr error

	lastRequest *service.EmergencyRequest
	lastSession *models.Session
	lastLimit   int
}

func (m *MockEmergencyService) Trigger(ctx context.Context, session *models.Session, req *service.EmergencyRequest) (*service.EmergencyResult, error) {
	m.lastSession = session
	m.lastRequest = req
	if m.triggerErr != nil {
		return nil, m.triggerErr
	}
	return m.result, nil
}

func (m *MockEmergencyService) History(ctx context.Context, session *models.Session, limit int) ([]*models.EmergencyAction, error) {
	m.lastSession = session
	m.lastLimit = limit
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history, nil
}

var _ service.EmergencyServiceInterface = (*MockEmergencyService)(nil)

// ============ Mock Config Service ============

// MockConfigService мок для ConfigServiceInterface
type MockConfigService struct {
	config     json.RawMessage
	snapshot   *models.ConfigSnapshot
	history    []*models.ConfigSnapshot
	getErr     error
	updateErr  error
	historyErr error

	lastUpdate *service.ConfigUpdateRequest
}

func (m *MockConfigService) Get(ctx context.Context) (json.RawMessage, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.config, nil
}

func (m *MockConfigService) Update(ctx context.Context, session *models.Session, req *service.ConfigUpdateRequest) (*models.ConfigSnapshot, error) {
	m.lastUpdate = req
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return m.snapshot, nil
}

func (m *MockConfigService) History(ctx context.Context, configType string, limit int) ([]*models.ConfigSnapshot, error) {
	if m.historyErr != nil {
		return nil, m.historyErr
	}
	return m.history, nil
}

var _ service.ConfigServiceInterface = (*MockConfigService)(nil)

// ============ Mock Position Service ============

// MockPositionService мок для PositionServiceInterface
type MockPositionService struct {
	positions  []models.Position
	bulkResult *service.BulkCloseResult
	listErr    error
	closeErr   error
	bulkErr    error

	lastMarket     string
	lastStrategyID string
	closedIDs      []string
	lastBulkIDs    []string
}

func (m *MockPositionService) List(ctx context.Context, market, strategyID string) ([]models.Position, error) {
	m.lastMarket = market
	m.lastStrategyID = strategyID
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.positions, nil
}

func (m *MockPositionService) Close(ctx context.Context, session *models.Session, positionID string) error {
	if m.closeErr != nil {
		return m.closeErr
	}
	m.closedIDs = append(m.closedIDs, positionID)
	return nil
}

func (m *MockPositionService) CloseMultiple(ctx context.Context, session *models.Session, positionIDs []string) (*service.BulkCloseResult, error) {
	m.lastBulkIDs = positionIDs
	if m.bulkErr != nil {
		return nil, m.bulkErr
	}
	return m.bulkResult, nil
}

var _ service.PositionServiceInterface = (*MockPositionService)(nil)

// ============ Mock Strategy Service ============

// MockStrategyService мок для StrategyServiceInterface
type MockStrategyService struct {
	strategies []models.Strategy
	listErr    error
	statusErr  error

	statusCalls []string // "id:action"
}

func (m *MockStrategyService) List(ctx context.Context) ([]models.Strategy, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.strategies, nil
}

func (m *MockStrategyService) SetStatus(ctx context.Context, session *models.Session, strategyID, action string) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	m.statusCalls = append(m.statusCalls, strategyID+":"+action)
	return nil
}

var _ service.StrategyServiceInterface = (*MockStrategyService)(nil)

// ============ Mock Trade Service ============

// MockTradeService мок для TradeServiceInterface
type MockTradeService struct {
	markets    []models.Market
	trades     []models.RecentTrade
	preview    *models.TradePreview
	execResult json.RawMessage
	searchErr  error
	recentErr  error
	previewErr error
	execErr    error

	lastQuery   string
	lastRequest *service.TradeRequest
}

func (m *MockTradeService) SearchMarkets(ctx context.Context, query string) ([]models.Market, error) {
	m.lastQuery = query
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.markets, nil
}

func (m *MockTradeService) RecentTrades(ctx context.Context, limit int) ([]models.RecentTrade, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	return m.trades, nil
}

func (m *MockTradeService) Preview(ctx context.Context, session *models.Session, req *service.TradeRequest) (*models.TradePreview, error) {
	m.lastRequest = req
	if m.previewErr != nil {
		return nil, m.previewErr
	}
	return m.preview, nil
}

func (m *MockTradeService) Execute(ctx context.Context, session *models.Session, req *service.TradeRequest) (json.RawMessage, error) {
	m.lastRequest = req
	if m.execErr != nil {
		return nil, m.execErr
	}
	return m.execResult, nil
}

var _ service.TradeServiceInterface = (*MockTradeService)(nil)

// ============ Mock Alert Service ============

// MockAlertService мок для AlertServiceInterface
type MockAlertService struct {
	overview      *service.AlertOverview
	rule          *models.AlertRule
	channel       *models.NotificationChannel
	overviewErr   error
	ingestErr     error
	ackErr        error
	testErr       error
	updateRuleErr error
	updateChanErr error

	ingested    []*models.Alert
	ackedIDs    []string
	testedIDs   []string
	lastRuleReq *service.RuleUpdateRequest
	lastChanReq *service.ChannelUpdateRequest
}

func (m *MockAlertService) Overview(ctx context.Context) (*service.AlertOverview, error) {
	if m.overviewErr != nil {
		return nil, m.overviewErr
	}
	return m.overview, nil
}

func (m *MockAlertService) Ingest(ctx context.Context, alert *models.Alert) error {
	if m.ingestErr != nil {
		return m.ingestErr
	}
	m.ingested = append(m.ingested, alert)
	return nil
}

func (m *MockAlertService) Acknowledge(ctx context.Context, session *models.Session, alertID string) error {
	if m.ackErr != nil {
		return m.ackErr
	}
	m.ackedIDs = append(m.ackedIDs, alertID)
	return nil
}

func (m *MockAlertService) TestChannel(ctx context.Context, session *models.Session, channelID string) error {
	if m.testErr != nil {
		return m.testErr
	}
	m.testedIDs = append(m.testedIDs, channelID)
	return nil
}

func (m *MockAlertService) UpdateRule(ctx context.Context, session *models.Session, req *service.RuleUpdateRequest) (*models.AlertRule, error) {
	m.lastRuleReq = req
	if m.updateRuleErr != nil {
		return nil, m.updateRuleErr
	}
	return m.rule, nil
}

func (m *MockAlertService) UpdateChannel(ctx context.Context, session *models.Session, req *service.ChannelUpdateRequest) (*models.NotificationChannel, error) {
	m.lastChanReq = req
	if m.updateChanErr != nil {
		return nil, m.updateChanErr
	}
	return m.channel, nil
}

var _ service.AlertServiceInterface = (*MockAlertService)(nil)

// ============ Mock Health Service ============

// MockHealthService мок для HealthServiceInterface
type MockHealthService struct {
	services    []models.ServiceStatus
	servicesErr error
	restartErr  error

	restarted []string
}

func (m *MockHealthService) Services(ctx context.Context) ([]models.ServiceStatus, error) {
	if m.servicesErr != nil {
		return nil, m.servicesErr
	}
	return m.services, nil
}

func (m *MockHealthService) RestartService(ctx context.Context, session *models.Session, serviceID string) error {
	if m.restartErr != nil {
		return m.restartErr
	}
	m.restarted = append(m.restarted, serviceID)
	return nil
}

var _ service.HealthServiceInterface = (*MockHealthService)(nil)

// ============ Mock Dashboard Service ============

// MockDashboardService мок для DashboardServiceInterface
type MockDashboardService struct {
	summary    *models.DashboardSummary
	summaryErr error
}

func (m *MockDashboardService) Summary(ctx context.Context) (*models.DashboardSummary, error) {
	if m.summaryErr != nil {
		return nil, m.summaryErr
	}
	return m.summary, nil
}

var _ service.DashboardServiceInterface = (*MockDashboardService)(nil)

// ============ Mock Audit Service ============

// MockAuditService мок для AuditServiceInterface
type MockAuditService struct {
	entries []*models.AuditLogEntry
	listErr error

	lastFilter repository.AuditFilter
}

func (m *MockAuditService) List(ctx context.Context, session *models.Session, filter repository.AuditFilter) ([]*models.AuditLogEntry, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.entries, nil
}

var _ service.AuditServiceInterface = (*MockAuditService)(nil)
