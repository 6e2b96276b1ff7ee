package models

import "time"

// Типы из API оркестратора. Оркестратор - внешний black-box
// сервис, владеющий торговым движком; эти структуры описывают
// только ту часть его ответов, которую использует дашборд.

// Position представляет открытую позицию на prediction-рынке
type Position struct {
	ID           string    `json:"id"`
	Market       string    `json:"market"`
	Platform     string    `json:"platform"` // polymarket, kalshi, ...
	Side         string    `json:"side"`     // YES / NO
	Size         float64   `json:"size"`
	EntryPrice   float64   `json:"entry_price"`
	CurrentPrice float64   `json:"current_price"`
	UnrealizedPL float64   `json:"unrealized_pl"`
	StrategyID   string    `json:"strategy_id,omitempty"`
	OpenedAt     time.Time `json:"opened_at"`
}

// Статусы стратегий
const (
	StrategyStatusRunning = "running"
	StrategyStatusPaused  = "paused"
	StrategyStatusStopped = "stopped"
	StrategyStatusError   = "error"
)

// Strategy представляет торговую стратегию в оркестраторе
type Strategy struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Status        string    `json:"status"` // running, paused, stopped, error
	OpenPositions int       `json:"open_positions"`
	PnL           float64   `json:"pnl"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Market представляет рынок предсказаний
type Market struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Platform  string    `json:"platform"`
	YesPrice  float64   `json:"yes_price"`
	NoPrice   float64   `json:"no_price"`
	Liquidity float64   `json:"liquidity"` // площадочная оценка ликвидности в USD
	Volume24h float64   `json:"volume_24h"`
	EndDate   time.Time `json:"end_date"`
}

// RecentTrade представляет исполненную сделку из журнала оркестратора
type RecentTrade struct {
	ID         string    `json:"id"`
	Market     string    `json:"market"`
	Side       string    `json:"side"`
	Size       float64   `json:"size"`
	Price      float64   `json:"price"`
	StrategyID string    `json:"strategy_id,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}

// ServiceStatus представляет состояние сервиса торговой системы
type ServiceStatus struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"` // healthy, degraded, down
	Uptime    string    `json:"uptime,omitempty"`
	LastCheck time.Time `json:"last_check"`
}

// DashboardSummary представляет агрегированные данные для главной страницы
type DashboardSummary struct {
	OpenPositions     int               `json:"open_positions"`
	TotalExposure     float64           `json:"total_exposure"`
	UnrealizedPL      float64           `json:"unrealized_pl"`
	DailyPnL          float64           `json:"daily_pnl"`
	ActiveStrategies  int               `json:"active_strategies"`
	PausedStrategies  int               `json:"paused_strategies"`
	RecentEmergencies []EmergencyAction `json:"recent_emergencies"`
	GeneratedAt       time.Time         `json:"generated_at"`
}
