package websocket

import (
	"time"

	"dashboard/internal/models"
)

// Типы сообщений, отправляемых клиентам дашборда
const (
	MessageEmergencyAction = "emergencyAction"
	MessageAlert           = "alert"
	MessageDashboardUpdate = "dashboardUpdate"
)

// EmergencyActionMessage - итог аварийного действия.
// Рассылается после финализации действия, включая неудачные.
type EmergencyActionMessage struct {
	Type      string                  `json:"type"`
	Timestamp time.Time               `json:"timestamp"`
	Data      *models.EmergencyAction `json:"data"`
}

// AlertMessage - сработавший алерт
type AlertMessage struct {
	Type      string        `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Data      *models.Alert `json:"data"`
}

// DashboardUpdateMessage - свежая сводка дашборда
type DashboardUpdateMessage struct {
	Type      string                   `json:"type"`
	Timestamp time.Time                `json:"timestamp"`
	Data      *models.DashboardSummary `json:"data"`
}

// NewEmergencyActionMessage создает сообщение об аварийном действии
func NewEmergencyActionMessage(action *models.EmergencyAction) *EmergencyActionMessage {
	return &EmergencyActionMessage{
		Type:      MessageEmergencyAction,
		Timestamp: time.Now().UTC(),
		Data:      action,
	}
}

// NewAlertMessage создает сообщение об алерте
func NewAlertMessage(alert *models.Alert) *AlertMessage {
	return &AlertMessage{
		Type:      MessageAlert,
		Timestamp: time.Now().UTC(),
		Data:      alert,
	}
}

// NewDashboardUpdateMessage создает сообщение со сводкой дашборда
func NewDashboardUpdateMessage(summary *models.DashboardSummary) *DashboardUpdateMessage {
	return &DashboardUpdateMessage{
		Type:      MessageDashboardUpdate,
		Timestamp: time.Now().UTC(),
		Data:      summary,
	}
}
