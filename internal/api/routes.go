package api

import (
	"net/http"
	"net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"dashboard/internal/api/handlers"
	"dashboard/internal/api/middleware"
	"dashboard/internal/auth"
	"dashboard/internal/service"
	"dashboard/internal/websocket"
	"dashboard/pkg/utils"
)

// Dependencies содержит все зависимости для API handlers
type Dependencies struct {
	Logger *utils.Logger
	Signer *auth.TokenSigner
	Hub    *websocket.Hub

	AuthService      service.AuthServiceInterface
	EmergencyService service.EmergencyServiceInterface
	ConfigService    service.ConfigServiceInterface
	PositionService  service.PositionServiceInterface
	StrategyService  service.StrategyServiceInterface
	TradeService     service.TradeServiceInterface
	AlertService     service.AlertServiceInterface
	HealthService    service.HealthServiceInterface
	DashboardService service.DashboardServiceInterface
	AuditService     service.AuditServiceInterface

	// Basic auth для /internal и /debug
	InternalUsername string
	InternalPassword string
}

// SetupRoutes настраивает все HTTP маршруты приложения
//
// Назначение:
// Центральное место для определения всех API endpoints.
// Регистрирует handlers, применяет middleware к группам маршрутов.
//
// Структура маршрутов:
//
// /api/v1/ (session middleware, кроме /auth/login)
//
//	├── /auth/
//	│   ├── POST /login - вход (без сессии)
//	│   ├── POST /logout - выход
//	│   └── GET /me - текущая сессия
//	├── POST /emergency - аварийное действие
//	├── GET /emergency/history - история аварийных действий
//	├── /config/
//	│   ├── GET / - текущая конфигурация
//	│   ├── PUT / - обновление со снапшотом
//	│   └── GET /history - история снапшотов
//	├── /positions/
//	│   ├── GET / - открытые позиции
//	│   ├── POST /close - массовое закрытие
//	│   └── POST /{id}/close - закрытие позиции
//	├── /strategies/
//	│   ├── GET / - список стратегий
//	│   └── POST /{id}/{action} - start, pause, stop
//	├── /trades/
//	│   ├── GET /markets - поиск рынков
//	│   ├── GET /recent - последние сделки
//	│   ├── POST /preview - расчет стоимости
//	│   └── POST /execute - исполнение сделки
//	├── /alerts/
//	│   ├── GET / - правила, каналы, последние алерты
//	│   ├── POST /{id}/acknowledge - подтверждение
//	│   ├── PUT /rules/{id} - изменение правила
//	│   ├── PUT /channels/{id} - изменение канала
//	│   └── POST /channels/{id}/test - тестовое уведомление
//	├── /services/
//	│   ├── GET / - состояние сервисов
//	│   └── POST /{id}/restart - перезапуск (ADMIN)
//	├── GET /dashboard - сводка
//	└── GET /audit - журнал аудита (ADMIN)
//
// /ws/stream - WebSocket (session middleware)
// /internal/alerts - прием алертов от оркестратора (basic auth)
// /debug/pprof/* - профилирование (basic auth)
// /health - liveness без аутентификации
// /metrics - Prometheus метрики
//
// Middleware в порядке применения: Recovery, Logging, CORS, затем
// Session или InternalAuth на соответствующих группах.
func SetupRoutes(deps *Dependencies) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.Logging(deps.Logger, routePattern))
	router.Use(middleware.CORS)

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	emergencyHandler := handlers.NewEmergencyHandler(deps.EmergencyService)
	configHandler := handlers.NewConfigHandler(deps.ConfigService)
	positionHandler := handlers.NewPositionHandler(deps.PositionService)
	strategyHandler := handlers.NewStrategyHandler(deps.StrategyService)
	tradeHandler := handlers.NewTradeHandler(deps.TradeService)
	alertHandler := handlers.NewAlertHandler(deps.AlertService)
	healthHandler := handlers.NewHealthHandler(deps.HealthService)
	dashboardHandler := handlers.NewDashboardHandler(deps.DashboardService)
	auditHandler := handlers.NewAuditHandler(deps.AuditService)

	// Вход до session middleware: токена у клиента еще нет
	router.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// Защищенный API
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Session(deps.Signer))

	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST")
	api.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	api.HandleFunc("/emergency", emergencyHandler.Trigger).Methods("POST")
	api.HandleFunc("/emergency/history", emergencyHandler.History).Methods("GET")

	api.HandleFunc("/config", configHandler.Get).Methods("GET")
	api.HandleFunc("/config", configHandler.Update).Methods("PUT")
	api.HandleFunc("/config/history", configHandler.History).Methods("GET")

	api.HandleFunc("/positions", positionHandler.List).Methods("GET")
	api.HandleFunc("/positions/close", positionHandler.CloseMultiple).Methods("POST")
	api.HandleFunc("/positions/{id}/close", positionHandler.Close).Methods("POST")

	api.HandleFunc("/strategies", strategyHandler.List).Methods("GET")
	api.HandleFunc("/strategies/{id}/{action}", strategyHandler.SetStatus).Methods("POST")

	api.HandleFunc("/trades/markets", tradeHandler.SearchMarkets).Methods("GET")
	api.HandleFunc("/trades/recent", tradeHandler.RecentTrades).Methods("GET")
	api.HandleFunc("/trades/preview", tradeHandler.Preview).Methods("POST")
	api.HandleFunc("/trades/execute", tradeHandler.Execute).Methods("POST")

	api.HandleFunc("/alerts", alertHandler.Overview).Methods("GET")
	api.HandleFunc("/alerts/rules/{id}", alertHandler.UpdateRule).Methods("PUT")
	api.HandleFunc("/alerts/channels/{id}", alertHandler.UpdateChannel).Methods("PUT")
	api.HandleFunc("/alerts/channels/{id}/test", alertHandler.TestChannel).Methods("POST")
	api.HandleFunc("/alerts/{id}/acknowledge", alertHandler.Acknowledge).Methods("POST")

	api.HandleFunc("/services", healthHandler.Services).Methods("GET")
	api.HandleFunc("/services/{id}/restart", healthHandler.Restart).Methods("POST")

	api.HandleFunc("/dashboard", dashboardHandler.Summary).Methods("GET")
	api.HandleFunc("/audit", auditHandler.List).Methods("GET")

	// WebSocket: та же аутентификация, что и у API
	router.Handle("/ws/stream", middleware.Session(deps.Signer)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			websocket.ServeWS(deps.Hub, w, r)
		}),
	)).Methods("GET")

	// Служебные маршруты: оркестратор и отладка, basic auth
	internalAuth := middleware.InternalAuth(deps.InternalUsername, deps.InternalPassword)

	internal := router.PathPrefix("/internal").Subrouter()
	internal.Use(internalAuth)
	internal.HandleFunc("/alerts", alertHandler.Ingest).Methods("POST")

	debug := router.PathPrefix("/debug/pprof").Subrouter()
	debug.Use(internalAuth)
	debug.HandleFunc("", pprof.Index)
	debug.HandleFunc("/", pprof.Index)
	debug.HandleFunc("/cmdline", pprof.Cmdline)
	debug.HandleFunc("/profile", pprof.Profile)
	debug.HandleFunc("/symbol", pprof.Symbol)
	debug.HandleFunc("/trace", pprof.Trace)
	debug.PathPrefix("/").Handler(http.HandlerFunc(pprof.Index))

	// Без аутентификации: liveness и метрики
	router.HandleFunc("/health", healthHandler.Liveness).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}

// routePattern возвращает шаблон маршрута для метрик.
// Сырые пути с id раздували бы кардинальность лейблов.
func routePattern(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
