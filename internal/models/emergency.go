package models

import (
	"encoding/json"
	"time"
)

// Типы аварийных действий
const (
	EmergencyActionPause    = "pause"     // приостановить все стратегии
	EmergencyActionStop     = "stop"      // остановить всю торговлю
	EmergencyActionCloseAll = "close_all" // закрыть все позиции
)

// Статусы аварийного действия
const (
	EmergencyStatusPending   = "pending"
	EmergencyStatusCompleted = "completed"
	EmergencyStatusFailed    = "failed"
)

// EmergencyAction представляет запись об аварийном действии.
//
// Жизненный цикл:
// Запись создается со статусом pending ДО вызова оркестратора -
// это durable-свидетельство того, что действие было запущено,
// даже если внешний вызов никогда не вернется.
// Переход pending -> completed|failed происходит ровно один раз,
// после этого запись никогда не изменяется.
type EmergencyAction struct {
	ID          string          `json:"id" db:"id"`
	ActionType  string          `json:"action_type" db:"action_type"` // pause, stop, close_all
	TriggeredBy string          `json:"triggered_by" db:"triggered_by"`
	Reason      string          `json:"reason,omitempty" db:"reason"`
	Status      string          `json:"status" db:"status"` // pending, completed, failed
	Result      json.RawMessage `json:"result,omitempty" db:"result"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty" db:"completed_at"`
}

// ValidEmergencyAction проверяет что тип действия распознан
func ValidEmergencyAction(action string) bool {
	switch action {
	case EmergencyActionPause, EmergencyActionStop, EmergencyActionCloseAll:
		return true
	}
	return false
}
