package models

import (
	"encoding/json"
	"time"
)

// AuditLogEntry представляет запись журнала аудита.
// Append-only: ровно одна запись на каждую привилегированную мутацию.
type AuditLogEntry struct {
	ID        string          `json:"id" db:"id"`
	UserID    string          `json:"user_id" db:"user_id"`
	Action    string          `json:"action" db:"action"`     // тег действия (emergency_stop, config_update, ...)
	Resource  string          `json:"resource" db:"resource"` // тег ресурса (emergency, config, positions, ...)
	Details   json.RawMessage `json:"details,omitempty" db:"details"`
	IPAddress string          `json:"ip_address" db:"ip_address"`
	UserAgent string          `json:"user_agent" db:"user_agent"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

// Теги ресурсов для журнала аудита
const (
	AuditResourceEmergency  = "emergency"
	AuditResourceConfig     = "config"
	AuditResourcePositions  = "positions"
	AuditResourceStrategies = "strategies"
	AuditResourceAlerts     = "alerts"
	AuditResourceServices   = "services"
	AuditResourceTrade      = "trade"
	AuditResourceAuth       = "auth"
)
