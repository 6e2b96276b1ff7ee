package models

import (
	"encoding/json"
	"time"
)

// ConfigSnapshot представляет неизменяемую версию конфигурации.
//
// Создается при каждом обновлении конфигурации ДО отправки
// изменений в оркестратор - история версий существует независимо
// от того, применился ли downstream-апдейт. Записи никогда не
// удаляются этой подсистемой (retention policy внешняя).
type ConfigSnapshot struct {
	ID         string          `json:"id" db:"id"`
	ConfigType string          `json:"config_type" db:"config_type"` // trading, risk, alerts, ...
	ConfigData json.RawMessage `json:"config_data" db:"config_data"`
	CreatedBy  string          `json:"created_by" db:"created_by"`
	IsActive   bool            `json:"is_active" db:"is_active"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}
