package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"dashboard/internal/api"
	"dashboard/internal/auth"
	"dashboard/internal/cache"
	"dashboard/internal/config"
	"dashboard/internal/orchestrator"
	"dashboard/internal/repository"
	"dashboard/internal/service"
	"dashboard/internal/websocket"
	"dashboard/pkg/utils"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Логгер
	logger := utils.InitGlobalLogger(utils.LogConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: "stderr",
	})
	defer logger.Sync()

	// Подпись сессионных токенов
	signer, err := auth.NewTokenSigner(cfg.Security.SessionSecret, cfg.Security.SessionTTL)
	if err != nil {
		logger.Fatal("init token signer", utils.Err(err))
	}

	// База данных
	db, err := initDatabase(cfg)
	if err != nil {
		logger.Fatal("connect to database", utils.Err(err))
	}
	defer db.Close()

	logger.Info("connected to database", utils.String("dsn", cfg.Database.DSNWithoutPassword()))

	// Репозитории
	emergencyRepo := repository.NewEmergencyRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// Клиент оркестратора
	orch := orchestrator.NewClient(orchestrator.Config{
		BaseURL:        cfg.Orchestrator.BaseURL,
		RequestTimeout: cfg.Orchestrator.RequestTimeout,
		MaxRetries:     cfg.Orchestrator.MaxRetries,
		RetryBackoff:   cfg.Orchestrator.RetryBackoff,
	}, logger)

	// WebSocket hub
	hub := websocket.NewHub(logger)
	go hub.Run()
	defer hub.Stop()

	// Кеш сводки дашборда
	summaryCache := cache.New(cfg.Cache.MaxEntries, cfg.Cache.TTL)

	// Сервисы
	authService := service.NewAuthService(signer, cfg.Security, auditRepo, logger)
	emergencyService := service.NewEmergencyService(emergencyRepo, auditRepo, orch, hub, logger)
	configService := service.NewConfigService(snapshotRepo, auditRepo, orch, logger)
	positionService := service.NewPositionService(auditRepo, orch, logger)
	strategyService := service.NewStrategyService(auditRepo, orch, logger)
	tradeService := service.NewTradeService(auditRepo, orch, logger)
	alertService := service.NewAlertService(alertRepo, auditRepo, orch, hub, []byte(cfg.Security.EncryptionKey), logger)
	healthService := service.NewHealthService(auditRepo, orch, logger)
	dashboardService := service.NewDashboardService(emergencyRepo, orch, summaryCache, hub, logger)
	auditService := service.NewAuditService(auditRepo)

	// HTTP роутер
	router := api.SetupRoutes(&api.Dependencies{
		Logger: logger,
		Signer: signer,
		Hub:    hub,

		AuthService:      authService,
		EmergencyService: emergencyService,
		ConfigService:    configService,
		PositionService:  positionService,
		StrategyService:  strategyService,
		TradeService:     tradeService,
		AlertService:     alertService,
		HealthService:    healthService,
		DashboardService: dashboardService,
		AuditService:     auditService,

		InternalUsername: cfg.Security.InternalUsername,
		InternalPassword: cfg.Security.InternalPassword,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск сервера
	go func() {
		logger.Info("starting server", utils.String("addr", server.Addr))

		var err error
		if cfg.Server.UseHTTPS {
			err = server.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", utils.Err(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", utils.Err(err))
	}

	logger.Info("server exited")
}

// initDatabase создает подключение к базе данных
func initDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Пул соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
