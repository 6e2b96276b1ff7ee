package models

import "time"

// Типы каналов уведомлений
const (
	ChannelTypeEmail   = "email"
	ChannelTypeSlack   = "slack"
	ChannelTypeDiscord = "discord"
)

// Уровни важности алертов
const (
	AlertSeverityInfo     = "info"
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"
)

// AlertRule представляет правило генерации алертов.
// Мутабельный конфигурационный объект: включение/выключение
// и редактирование порога, без жизненного цикла.
type AlertRule struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Type          string    `json:"type" db:"type"` // drawdown, daily_loss, position_size, service_down, ...
	Enabled       bool      `json:"enabled" db:"enabled"`
	Threshold     float64   `json:"threshold" db:"threshold"`
	ThresholdUnit string    `json:"threshold_unit" db:"threshold_unit"` // percent, usd, count
	Severity      string    `json:"severity" db:"severity"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// NotificationChannel представляет канал доставки алертов.
// Config содержит секреты канала (webhook URL, SMTP credentials) -
// в БД хранится в зашифрованном виде (AES-256-GCM).
type NotificationChannel struct {
	ID        string    `json:"id" db:"id"`
	Type      string    `json:"type" db:"type"` // email, slack, discord
	Enabled   bool      `json:"enabled" db:"enabled"`
	Config    string    `json:"config,omitempty" db:"config"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Alert представляет сработавший алерт
type Alert struct {
	ID             string     `json:"id"`
	RuleID         string     `json:"rule_id"`
	Severity       string     `json:"severity"`
	Message        string     `json:"message"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

// ValidChannelType проверяет что тип канала распознан
func ValidChannelType(t string) bool {
	switch t {
	case ChannelTypeEmail, ChannelTypeSlack, ChannelTypeDiscord:
		return true
	}
	return false
}
