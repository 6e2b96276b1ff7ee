package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============================================================
// Prometheus метрики админ-панели
// ============================================================
//
// Использование:
// - Grafana дашборды для визуализации
// - Alertmanager для уведомлений о проблемах

// ============ HTTP метрики ============

// HTTPRequestDuration - время обработки HTTP-запроса
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "dashboard",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	},
	[]string{"method", "path", "status"},
)

// HTTPRequestsTotal - количество HTTP-запросов
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests",
	},
	[]string{"method", "path", "status"},
)

// ============ Метрики аварийных действий ============

// EmergencyActionsTotal - количество аварийных действий по типу и исходу
var EmergencyActionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "emergency",
		Name:      "actions_total",
		Help:      "Total number of emergency actions",
	},
	[]string{"action", "status"}, // action: pause, stop, close_all; status: completed, failed
)

// EmergencyActionProcessed фиксирует завершение аварийного действия
func EmergencyActionProcessed(action, status string) {
	EmergencyActionsTotal.WithLabelValues(action, status).Inc()
}

// ============ Метрики оркестратора ============

// OrchestratorRequestsTotal - количество вызовов оркестратора
var OrchestratorRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "orchestrator",
		Name:      "requests_total",
		Help:      "Total number of orchestrator API calls",
	},
	[]string{"result"}, // result: ok, api_error, unavailable
)

// ============ Метрики кэша ============

// CacheLookupsTotal - обращения к кэшу дашборда
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Total number of cache lookups",
	},
	[]string{"result"}, // result: hit, miss
)

// ============ Метрики WebSocket ============

// WebsocketClients - текущее количество подключенных клиентов
var WebsocketClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "dashboard",
		Subsystem: "websocket",
		Name:      "clients",
		Help:      "Current number of connected websocket clients",
	},
)
