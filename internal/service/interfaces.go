package service

import (
	"context"
	"encoding/json"

	"dashboard/internal/cache"
	"dashboard/internal/models"
	"dashboard/internal/orchestrator"
	"dashboard/internal/repository"
	"dashboard/internal/websocket"
)

// EmergencyRepositoryInterface определяет интерфейс репозитория аварийных действий
type EmergencyRepositoryInterface interface {
	CreatePending(actionType, triggeredBy, reason string) (*models.EmergencyAction, error)
	Finalize(id, status string, result json.RawMessage) error
	GetByID(id string) (*models.EmergencyAction, error)
	GetRecent(limit int) ([]*models.EmergencyAction, error)
}

// SnapshotRepositoryInterface определяет интерфейс репозитория снапшотов конфигурации
type SnapshotRepositoryInterface interface {
	Create(configType string, configData json.RawMessage, createdBy string) (*models.ConfigSnapshot, error)
	GetActive(configType string) (*models.ConfigSnapshot, error)
	GetHistory(configType string, limit int) ([]*models.ConfigSnapshot, error)
}

// AuditRepositoryInterface определяет интерфейс репозитория журнала аудита
type AuditRepositoryInterface interface {
	Create(entry *models.AuditLogEntry) error
	List(filter repository.AuditFilter) ([]*models.AuditLogEntry, error)
	Count() (int, error)
}

// AlertRepositoryInterface определяет интерфейс репозитория алертов
type AlertRepositoryInterface interface {
	GetRules() ([]*models.AlertRule, error)
	GetRule(id string) (*models.AlertRule, error)
	UpdateRule(rule *models.AlertRule) error
	GetChannels() ([]*models.NotificationChannel, error)
	GetChannel(id string) (*models.NotificationChannel, error)
	UpdateChannel(channel *models.NotificationChannel) error
	CreateAlert(alert *models.Alert) error
	GetRecentAlerts(limit int) ([]*models.Alert, error)
	AcknowledgeAlert(id, acknowledgedBy string) error
}

// OrchestratorInterface определяет интерфейс HTTP-клиента оркестратора
type OrchestratorInterface interface {
	GetConfig(ctx context.Context) (json.RawMessage, error)
	UpdateConfig(ctx context.Context, payload json.RawMessage) error
	PauseAllStrategies(ctx context.Context) (json.RawMessage, error)
	StopAllTrading(ctx context.Context) (json.RawMessage, error)
	CloseAllPositions(ctx context.Context) (int, json.RawMessage, error)
	GetPositions(ctx context.Context, filter orchestrator.PositionFilter) ([]models.Position, error)
	ClosePosition(ctx context.Context, positionID string) error
	GetStrategies(ctx context.Context) ([]models.Strategy, error)
	SetStrategyStatus(ctx context.Context, strategyID, action string) error
	GetServices(ctx context.Context) ([]models.ServiceStatus, error)
	RestartService(ctx context.Context, serviceID string) error
	SearchMarkets(ctx context.Context, query string) ([]models.Market, error)
	GetMarket(ctx context.Context, marketID string) (*models.Market, error)
	GetRecentTrades(ctx context.Context, limit int) ([]models.RecentTrade, error)
	ExecuteTrade(ctx context.Context, req orchestrator.ExecuteTradeRequest) (json.RawMessage, error)
	SendTestNotification(ctx context.Context, channelType, channelConfig string) error
}

// BroadcasterInterface определяет интерфейс рассылки событий подключенным клиентам
type BroadcasterInterface interface {
	BroadcastEmergencyAction(action *models.EmergencyAction)
	BroadcastAlert(alert *models.Alert)
	BroadcastDashboardUpdate(summary *models.DashboardSummary)
}

// CacheInterface определяет интерфейс краткоживущего кэша
type CacheInterface interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	Remove(key string)
	Purge()
}

// Проверяем, что реальные репозитории и клиент реализуют интерфейсы
var _ EmergencyRepositoryInterface = (*repository.EmergencyRepository)(nil)
var _ SnapshotRepositoryInterface = (*repository.SnapshotRepository)(nil)
var _ AuditRepositoryInterface = (*repository.AuditRepository)(nil)
var _ AlertRepositoryInterface = (*repository.AlertRepository)(nil)
var _ OrchestratorInterface = (*orchestrator.Client)(nil)
var _ BroadcasterInterface = (*websocket.Hub)(nil)
var _ CacheInterface = (*cache.TTLCache)(nil)

// ============ Интерфейсы сервисов для Dependency Injection ============

// AuthServiceInterface определяет интерфейс сервиса аутентификации
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password, ip, userAgent string) (*LoginResult, error)
	Logout(ctx context.Context, session *models.Session, ip, userAgent string) error
}

// EmergencyServiceInterface определяет интерфейс сервиса аварийных действий
type EmergencyServiceInterface interface {
	Trigger(ctx context.Context, session *models.Session, req *EmergencyRequest) (*EmergencyResult, error)
	History(ctx context.Context, session *models.Session, limit int) ([]*models.EmergencyAction, error)
}

// ConfigServiceInterface определяет интерфейс сервиса конфигурации
type ConfigServiceInterface interface {
	Get(ctx context.Context) (json.RawMessage, error)
	Update(ctx context.Context, session *models.Session, req *ConfigUpdateRequest) (*models.ConfigSnapshot, error)
	History(ctx context.Context, configType string, limit int) ([]*models.ConfigSnapshot, error)
}

// PositionServiceInterface определяет интерфейс сервиса позиций
type PositionServiceInterface interface {
	List(ctx context.Context, market, strategyID string) ([]models.Position, error)
	Close(ctx context.Context, session *models.Session, positionID string) error
	CloseMultiple(ctx context.Context, session *models.Session, positionIDs []string) (*BulkCloseResult, error)
}

// StrategyServiceInterface определяет интерфейс сервиса стратегий
type StrategyServiceInterface interface {
	List(ctx context.Context) ([]models.Strategy, error)
	SetStatus(ctx context.Context, session *models.Session, strategyID, action string) error
}

// TradeServiceInterface определяет интерфейс сервиса торговых операций
type TradeServiceInterface interface {
	SearchMarkets(ctx context.Context, query string) ([]models.Market, error)
	RecentTrades(ctx context.Context, limit int) ([]models.RecentTrade, error)
	Preview(ctx context.Context, session *models.Session, req *TradeRequest) (*models.TradePreview, error)
	Execute(ctx context.Context, session *models.Session, req *TradeRequest) (json.RawMessage, error)
}

// AlertServiceInterface определяет интерфейс сервиса алертов
type AlertServiceInterface interface {
	Overview(ctx context.Context) (*AlertOverview, error)
	Ingest(ctx context.Context, alert *models.Alert) error
	Acknowledge(ctx context.Context, session *models.Session, alertID string) error
	TestChannel(ctx context.Context, session *models.Session, channelID string) error
	UpdateRule(ctx context.Context, session *models.Session, req *RuleUpdateRequest) (*models.AlertRule, error)
	UpdateChannel(ctx context.Context, session *models.Session, req *ChannelUpdateRequest) (*models.NotificationChannel, error)
}

// HealthServiceInterface определяет интерфейс сервиса состояния сервисов
type HealthServiceInterface interface {
	Services(ctx context.Context) ([]models.ServiceStatus, error)
	RestartService(ctx context.Context, session *models.Session, serviceID string) error
}

// DashboardServiceInterface определяет интерфейс сервиса сводки дашборда
type DashboardServiceInterface interface {
	Summary(ctx context.Context) (*models.DashboardSummary, error)
}

// AuditServiceInterface определяет интерфейс сервиса журнала аудита
type AuditServiceInterface interface {
	List(ctx context.Context, session *models.Session, filter repository.AuditFilter) ([]*models.AuditLogEntry, error)
}

// Проверяем, что реальные сервисы реализуют интерфейсы
var _ AuthServiceInterface = (*AuthService)(nil)
var _ EmergencyServiceInterface = (*EmergencyService)(nil)
var _ ConfigServiceInterface = (*ConfigService)(nil)
var _ PositionServiceInterface = (*PositionService)(nil)
var _ StrategyServiceInterface = (*StrategyService)(nil)
var _ TradeServiceInterface = (*TradeService)(nil)
var _ AlertServiceInterface = (*AlertService)(nil)
var _ HealthServiceInterface = (*HealthService)(nil)
var _ DashboardServiceInterface = (*DashboardService)(nil)
var _ AuditServiceInterface = (*AuditService)(nil)
