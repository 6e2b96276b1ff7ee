package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"dashboard/internal/models"
	"dashboard/internal/orchestrator"
	"dashboard/internal/repository"
)

// ============ Mock EmergencyRepository ============

type MockEmergencyRepository struct {
	mu            sync.Mutex
	actions       map[string]*models.EmergencyAction
	order         []string
	createErr     error
	finalizeErr   error
	getRecentErr  error
	finalizeCalls int
}

func NewMockEmergencyRepository() *MockEmergencyRepository {
	return &MockEmergencyRepository{actions: make(map[string]*models.EmergencyAction)}
}

func (m *MockEmergencyRepository) CreatePending(actionType, triggeredBy, reason string) (*models.EmergencyAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	action := &models.EmergencyAction{
		ID:          uuid.New().String(),
		ActionType:  actionType,
		TriggeredBy: triggeredBy,
		Reason:      reason,
		Status:      models.EmergencyStatusPending,
		CreatedAt:   time.Now(),
	}
	m.actions[action.ID] = action
	m.order = append(m.order, action.ID)
	return action, nil
}

func (m *MockEmergencyRepository) Finalize(id, status string, result json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finalizeCalls++
	if m.finalizeErr != nil {
		return m.finalizeErr
	}
	action, ok := m.actions[id]
	if !ok {
		return repository.ErrEmergencyActionNotFound
	}
	if action.Status != models.EmergencyStatusPending {
		return repository.ErrAlreadyFinalized
	}
	now := time.Now()
	action.Status = status
	action.Result = result
	action.CompletedAt = &now
	return nil
}

func (m *MockEmergencyRepository) GetByID(id string) (*models.EmergencyAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if action, ok := m.actions[id]; ok {
		return action, nil
	}
	return nil, repository.ErrEmergencyActionNotFound
}

func (m *MockEmergencyRepository) GetRecent(limit int) ([]*models.EmergencyAction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getRecentErr != nil {
		return nil, m.getRecentErr
	}
	result := make([]*models.EmergencyAction, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.actions[m.order[i]])
	}
	return result, nil
}

func (m *MockEmergencyRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.actions)
}

// ============ Mock SnapshotRepository ============

type MockSnapshotRepository struct {
	mu        sync.Mutex
	snapshots []*models.ConfigSnapshot
	createErr error
}

func NewMockSnapshotRepository() *MockSnapshotRepository {
	return &MockSnapshotRepository{}
}

func (m *MockSnapshotRepository) Create(configType string, configData json.RawMessage, createdBy string) (*models.ConfigSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	for _, s := range m.snapshots {
		if s.ConfigType == configType {
			s.IsActive = false
		}
	}
	snapshot := &models.ConfigSnapshot{
		ID:         uuid.New().String(),
		ConfigType: configType,
		ConfigData: configData,
		CreatedBy:  createdBy,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	m.snapshots = append(m.snapshots, snapshot)
	return snapshot, nil
}

func (m *MockSnapshotRepository) GetActive(configType string) (*models.ConfigSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.snapshots) - 1; i >= 0; i-- {
		if m.snapshots[i].ConfigType == configType && m.snapshots[i].IsActive {
			return m.snapshots[i], nil
		}
	}
	return nil, repository.ErrSnapshotNotFound
}

func (m *MockSnapshotRepository) GetHistory(configType string, limit int) ([]*models.ConfigSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*models.ConfigSnapshot, 0)
	for i := len(m.snapshots) - 1; i >= 0 && len(result) < limit; i-- {
		if m.snapshots[i].ConfigType == configType {
			result = append(result, m.snapshots[i])
		}
	}
	return result, nil
}

func (m *MockSnapshotRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snapshots)
}

// ============ Mock AuditRepository ============

type MockAuditRepository struct {
	mu        sync.Mutex
	entries   []*models.AuditLogEntry
	createErr error
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(entry *models.AuditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockAuditRepository) List(filter repository.AuditFilter) ([]*models.AuditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*models.AuditLogEntry, 0)
	for _, e := range m.entries {
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.Resource != "" && e.Resource != filter.Resource {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}

func (m *MockAuditRepository) Count() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries), nil
}

func (m *MockAuditRepository) Entries() []*models.AuditLogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.AuditLogEntry(nil), m.entries...)
}

// ============ Mock AlertRepository ============

type MockAlertRepository struct {
	mu       sync.Mutex
	rules    map[string]*models.AlertRule
	channels map[string]*models.NotificationChannel
	alerts   map[string]*models.Alert
}

func NewMockAlertRepository() *MockAlertRepository {
	return &MockAlertRepository{
		rules:    make(map[string]*models.AlertRule),
		channels: make(map[string]*models.NotificationChannel),
		alerts:   make(map[string]*models.Alert),
	}
}

func (m *MockAlertRepository) GetRules() ([]*models.AlertRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*models.AlertRule, 0, len(m.rules))
	for _, r := range m.rules {
		result = append(result, r)
	}
	return result, nil
}

func (m *MockAlertRepository) GetRule(id string) (*models.AlertRule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rule, ok := m.rules[id]; ok {
		copied := *rule
		return &copied, nil
	}
	return nil, repository.ErrAlertRuleNotFound
}

func (m *MockAlertRepository) UpdateRule(rule *models.AlertRule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rules[rule.ID]; !ok {
		return repository.ErrAlertRuleNotFound
	}
	rule.UpdatedAt = time.Now()
	copied := *rule
	m.rules[rule.ID] = &copied
	return nil
}

func (m *MockAlertRepository) GetChannels() ([]*models.NotificationChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*models.NotificationChannel, 0, len(m.channels))
	for _, c := range m.channels {
		copied := *c
		result = append(result, &copied)
	}
	return result, nil
}

func (m *MockAlertRepository) GetChannel(id string) (*models.NotificationChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if channel, ok := m.channels[id]; ok {
		copied := *channel
		return &copied, nil
	}
	return nil, repository.ErrChannelNotFound
}

func (m *MockAlertRepository) UpdateChannel(channel *models.NotificationChannel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channels[channel.ID]; !ok {
		return repository.ErrChannelNotFound
	}
	channel.UpdatedAt = time.Now()
	copied := *channel
	m.channels[channel.ID] = &copied
	return nil
}

func (m *MockAlertRepository) CreateAlert(alert *models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if alert.ID == "" {
		alert.ID = uuid.New().String()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}
	m.alerts[alert.ID] = alert
	return nil
}

func (m *MockAlertRepository) GetRecentAlerts(limit int) ([]*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*models.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		result = append(result, a)
	}
	return result, nil
}

func (m *MockAlertRepository) AcknowledgeAlert(id, acknowledgedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	alert, ok := m.alerts[id]
	if !ok {
		return repository.ErrAlertNotFound
	}
	if !alert.Acknowledged {
		now := time.Now()
		alert.Acknowledged = true
		alert.AcknowledgedBy = acknowledgedBy
		alert.AcknowledgedAt = &now
	}
	return nil
}

// ============ Mock Orchestrator ============

// MockOrchestrator возвращает заранее заданные данные и позволяет
// проваливать отдельные вызовы через err-поля
type MockOrchestrator struct {
	mu sync.Mutex

	config       json.RawMessage
	positions    []models.Position
	strategies   []models.Strategy
	services     []models.ServiceStatus
	markets      map[string]*models.Market
	recentTrades []models.RecentTrade

	closedAllCount int
	closeAllCalls  int
	failCloseIDs   map[string]error

	configErr    error
	updateErr    error
	pauseErr     error
	stopErr      error
	closeAllErr  error
	positionsErr error
	strategieErr error
	servicesErr  error
	restartErr   error
	marketErr    error
	executeErr   error
	notifyErr    error

	closedPositions []string
	statusCalls     []string
	restartCalls    []string
	notifyCalls     []string
	marketCalls     []string
	executeCalls    []orchestrator.ExecuteTradeRequest
}

func NewMockOrchestrator() *MockOrchestrator {
	return &MockOrchestrator{
		markets:      make(map[string]*models.Market),
		failCloseIDs: make(map[string]error),
	}
}

func (m *MockOrchestrator) GetConfig(ctx context.Context) (json.RawMessage, error) {
	if m.configErr != nil {
		return nil, m.configErr
	}
	return m.config, nil
}

func (m *MockOrchestrator) UpdateConfig(ctx context.Context, payload json.RawMessage) error {
	return m.updateErr
}

func (m *MockOrchestrator) PauseAllStrategies(ctx context.Context) (json.RawMessage, error) {
	if m.pauseErr != nil {
		return nil, m.pauseErr
	}
	return json.RawMessage(`{"paused":true}`), nil
}

func (m *MockOrchestrator) StopAllTrading(ctx context.Context) (json.RawMessage, error) {
	if m.stopErr != nil {
		return nil, m.stopErr
	}
	return json.RawMessage(`{"stopped":true}`), nil
}

func (m *MockOrchestrator) CloseAllPositions(ctx context.Context) (int, json.RawMessage, error) {
	m.mu.Lock()
	m.closeAllCalls++
	m.mu.Unlock()
	if m.closeAllErr != nil {
		return 0, nil, m.closeAllErr
	}
	return m.closedAllCount, json.RawMessage(`{"ok":true}`), nil
}

func (m *MockOrchestrator) GetPositions(ctx context.Context, filter orchestrator.PositionFilter) ([]models.Position, error) {
	if m.positionsErr != nil {
		return nil, m.positionsErr
	}
	return m.positions, nil
}

func (m *MockOrchestrator) ClosePosition(ctx context.Context, positionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failCloseIDs[positionID]; ok {
		return err
	}
	m.closedPositions = append(m.closedPositions, positionID)
	return nil
}

func (m *MockOrchestrator) GetStrategies(ctx context.Context) ([]models.Strategy, error) {
	if m.strategieErr != nil {
		return nil, m.strategieErr
	}
	return m.strategies, nil
}

func (m *MockOrchestrator) SetStrategyStatus(ctx context.Context, strategyID, action string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls = append(m.statusCalls, strategyID+":"+action)
	return nil
}

func (m *MockOrchestrator) GetServices(ctx context.Context) ([]models.ServiceStatus, error) {
	if m.servicesErr != nil {
		return nil, m.servicesErr
	}
	return m.services, nil
}

func (m *MockOrchestrator) RestartService(ctx context.Context, serviceID string) error {
	if m.restartErr != nil {
		return m.restartErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restartCalls = append(m.restartCalls, serviceID)
	return nil
}

func (m *MockOrchestrator) SearchMarkets(ctx context.Context, query string) ([]models.Market, error) {
	result := make([]models.Market, 0, len(m.markets))
	for _, mk := range m.markets {
		result = append(result, *mk)
	}
	return result, nil
}

func (m *MockOrchestrator) GetMarket(ctx context.Context, marketID string) (*models.Market, error) {
	m.mu.Lock()
	m.marketCalls = append(m.marketCalls, marketID)
	m.mu.Unlock()
	if m.marketErr != nil {
		return nil, m.marketErr
	}
	if market, ok := m.markets[marketID]; ok {
		return market, nil
	}
	return nil, orchestrator.ErrNotFound
}

func (m *MockOrchestrator) GetRecentTrades(ctx context.Context, limit int) ([]models.RecentTrade, error) {
	return m.recentTrades, nil
}

func (m *MockOrchestrator) ExecuteTrade(ctx context.Context, req orchestrator.ExecuteTradeRequest) (json.RawMessage, error) {
	if m.executeErr != nil {
		return nil, m.executeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executeCalls = append(m.executeCalls, req)
	return json.RawMessage(`{"simulated":true}`), nil
}

func (m *MockOrchestrator) SendTestNotification(ctx context.Context, channelType, channelConfig string) error {
	if m.notifyErr != nil {
		return m.notifyErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifyCalls = append(m.notifyCalls, channelType+":"+channelConfig)
	return nil
}

func (m *MockOrchestrator) ClosedPositions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.closedPositions...)
}

// ============ Mock Broadcaster ============

// MockBroadcaster собирает разосланные события. Рассылка из сервисов
// асинхронная, поэтому события отдаются через канал.
type MockBroadcaster struct {
	Emergencies chan *models.EmergencyAction
	Alerts      chan *models.Alert
	Summaries   chan *models.DashboardSummary
}

func NewMockBroadcaster() *MockBroadcaster {
	return &MockBroadcaster{
		Emergencies: make(chan *models.EmergencyAction, 8),
		Alerts:      make(chan *models.Alert, 8),
		Summaries:   make(chan *models.DashboardSummary, 8),
	}
}

func (m *MockBroadcaster) BroadcastEmergencyAction(action *models.EmergencyAction) {
	m.Emergencies <- action
}

func (m *MockBroadcaster) BroadcastAlert(alert *models.Alert) {
	m.Alerts <- alert
}

func (m *MockBroadcaster) BroadcastDashboardUpdate(summary *models.DashboardSummary) {
	m.Summaries <- summary
}

// ============ Mock Cache ============

type MockCache struct {
	mu     sync.Mutex
	values map[string]interface{}
}

func NewMockCache() *MockCache {
	return &MockCache{values: make(map[string]interface{})}
}

func (m *MockCache) Get(key string) (interface{}, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MockCache) Set(key string, value interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MockCache) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

func (m *MockCache) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]interface{})
}
