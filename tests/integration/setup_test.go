//go:build integration

// Package integration contains integration tests for the trading dashboard backend.
//
// These tests verify the correct interaction between components:
// - API integration tests: full HTTP request cycle through the real router
// - WebSocket tests: connection, broadcast messaging
// - Database tests: schema, repositories, concurrent access
//
// The orchestrator is replaced with a local stub server; the database is
// a real PostgreSQL instance configured via TEST_DB_* environment variables.
//
// Run with: go test -tags=integration ./tests/integration/...
package integration

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"dashboard/internal/api"
	"dashboard/internal/auth"
	"dashboard/internal/cache"
	"dashboard/internal/config"
	"dashboard/internal/models"
	"dashboard/internal/orchestrator"
	"dashboard/internal/repository"
	"dashboard/internal/service"
	"dashboard/internal/websocket"
	"dashboard/pkg/crypto"
	"dashboard/pkg/utils"
)

const (
	testAdminUsername = "admin"
	testAdminPassword = "integration-password"
	testSessionSecret = "integration-session-secret-32-ch"
	testEncryptionKey = "integration-encrypt-key-32-bytes"
)

// TestConfig contains database configuration for integration tests
type TestConfig struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string
}

// TestServer encapsulates all components needed for integration testing
type TestServer struct {
	DB           *sql.DB
	Router       *mux.Router
	Server       *httptest.Server
	Orchestrator *httptest.Server
	Hub          *websocket.Hub
	Signer       *auth.TokenSigner
	AuditRepo    *repository.AuditRepository
	Cleanup      func()
}

// getTestConfig returns configuration from environment variables or defaults
func getTestConfig() TestConfig {
	return TestConfig{
		DBDriver:   getEnv("TEST_DB_DRIVER", "postgres"),
		DBHost:     getEnv("TEST_DB_HOST", "localhost"),
		DBPort:     getEnv("TEST_DB_PORT", "5432"),
		DBName:     getEnv("TEST_DB_NAME", "dashboard_test"),
		DBUser:     getEnv("TEST_DB_USER", "postgres"),
		DBPassword: getEnv("TEST_DB_PASSWORD", "postgres"),
		DBSSLMode:  getEnv("TEST_DB_SSLMODE", "disable"),
	}
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// SetupTestDB creates a test database connection
func SetupTestDB(t *testing.T) (*sql.DB, func()) {
	cfg := getTestConfig()

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
	)

	db, err := sql.Open(cfg.DBDriver, connStr)
	if err != nil {
		t.Skipf("Skipping integration test: cannot connect to database: %v", err)
		return nil, func() {}
	}

	if err := db.Ping(); err != nil {
		t.Skipf("Skipping integration test: cannot ping database: %v", err)
		return nil, func() {}
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}

	return db, cleanup
}

// initTestTables creates the dashboard schema from scratch
func initTestTables(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS emergency_actions (
			id TEXT PRIMARY KEY,
			action_type TEXT NOT NULL,
			triggered_by TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			result JSONB,
			created_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			action TEXT NOT NULL,
			resource TEXT NOT NULL,
			details JSONB,
			ip_address TEXT NOT NULL DEFAULT '',
			user_agent TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS config_snapshots (
			id TEXT PRIMARY KEY,
			config_type TEXT NOT NULL,
			config_data JSONB NOT NULL,
			created_by TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS alert_rules (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			threshold DOUBLE PRECISION NOT NULL DEFAULT 0,
			threshold_unit TEXT NOT NULL DEFAULT '',
			severity TEXT NOT NULL DEFAULT 'warning',
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS notification_channels (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			enabled BOOLEAN NOT NULL DEFAULT FALSE,
			config TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			rule_id TEXT NOT NULL DEFAULT '',
			severity TEXT NOT NULL,
			message TEXT NOT NULL,
			acknowledged BOOLEAN NOT NULL DEFAULT FALSE,
			acknowledged_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			acknowledged_at TIMESTAMPTZ
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// truncateTables clears all dashboard tables between tests
func truncateTables(db *sql.DB) error {
	_, err := db.Exec(`TRUNCATE emergency_actions, audit_log, config_snapshots, alert_rules, notification_channels, alerts`)
	return err
}

// stubOrchestrator returns an httptest server imitating the trading engine API
func stubOrchestrator() *httptest.Server {
	respond := func(w http.ResponseWriter, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    data,
		})
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/emergency/pause-all":
			respond(w, map[string]int{"paused_strategies": 3})
		case r.URL.Path == "/api/emergency/stop-all":
			respond(w, map[string]int{"stopped_strategies": 3})
		case r.URL.Path == "/api/emergency/close-all":
			respond(w, map[string]int{"closed_positions": 2})
		case r.URL.Path == "/api/config":
			respond(w, map[string]interface{}{"max_position_size": 500, "risk_limit_pct": 2.5})
		case r.URL.Path == "/api/positions":
			respond(w, []models.Position{})
		case r.URL.Path == "/api/strategies":
			respond(w, []models.Strategy{
				{ID: "momentum-1", Name: "Momentum", Status: models.StrategyStatusRunning},
			})
		case r.URL.Path == "/api/services":
			respond(w, []models.ServiceStatus{
				{ID: "executor", Name: "Order Executor", Status: "healthy"},
			})
		case r.URL.Path == "/api/markets":
			respond(w, []models.Market{})
		case r.URL.Path == "/api/trades/recent":
			respond(w, []models.RecentTrade{})
		case strings.HasSuffix(r.URL.Path, "/close"),
			strings.HasSuffix(r.URL.Path, "/restart"),
			strings.HasSuffix(r.URL.Path, "/pause"),
			strings.HasSuffix(r.URL.Path, "/start"),
			strings.HasSuffix(r.URL.Path, "/stop"):
			respond(w, map[string]string{"status": "ok"})
		default:
			respond(w, map[string]string{"status": "ok"})
		}
	}))
}

// SetupTestServer creates a complete test server with all components
func SetupTestServer(t *testing.T) *TestServer {
	db, dbCleanup := SetupTestDB(t)
	if db == nil {
		return nil
	}

	if err := initTestTables(db); err != nil {
		dbCleanup()
		t.Skipf("Skipping integration test: cannot initialize tables: %v", err)
		return nil
	}
	if err := truncateTables(db); err != nil {
		dbCleanup()
		t.Fatalf("failed to truncate tables: %v", err)
	}

	logger := utils.InitLogger(utils.LogConfig{Level: "fatal", Format: "json", Output: "stderr"})

	signer, err := auth.NewTokenSigner(testSessionSecret, time.Hour)
	if err != nil {
		dbCleanup()
		t.Fatalf("failed to create token signer: %v", err)
	}

	orchStub := stubOrchestrator()
	orch := orchestrator.NewClient(orchestrator.Config{
		BaseURL:        orchStub.URL,
		RequestTimeout: 5 * time.Second,
	}, logger)

	hub := websocket.NewHub(logger)
	go hub.Run()

	emergencyRepo := repository.NewEmergencyRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	adminHash, err := crypto.HashPassword(testAdminPassword)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}
	sec := config.SecurityConfig{
		SessionSecret:     testSessionSecret,
		SessionTTL:        time.Hour,
		EncryptionKey:     testEncryptionKey,
		AdminUsername:     testAdminUsername,
		AdminPasswordHash: adminHash,
		LoginRatePerSec:   100,
		LoginBurst:        100,
	}

	summaryCache := cache.New(64, 2*time.Second)

	router := api.SetupRoutes(&api.Dependencies{
		Logger: logger,
		Signer: signer,
		Hub:    hub,

		AuthService:      service.NewAuthService(signer, sec, auditRepo, logger),
		EmergencyService: service.NewEmergencyService(emergencyRepo, auditRepo, orch, hub, logger),
		ConfigService:    service.NewConfigService(snapshotRepo, auditRepo, orch, logger),
		PositionService:  service.NewPositionService(auditRepo, orch, logger),
		StrategyService:  service.NewStrategyService(auditRepo, orch, logger),
		TradeService:     service.NewTradeService(auditRepo, orch, logger),
		AlertService:     service.NewAlertService(alertRepo, auditRepo, orch, hub, []byte(testEncryptionKey), logger),
		HealthService:    service.NewHealthService(auditRepo, orch, logger),
		DashboardService: service.NewDashboardService(emergencyRepo, orch, summaryCache, hub, logger),
		AuditService:     service.NewAuditService(auditRepo),
	})

	server := httptest.NewServer(router)

	cleanup := func() {
		server.Close()
		hub.Stop()
		orchStub.Close()
		dbCleanup()
	}

	return &TestServer{
		DB:           db,
		Router:       router,
		Server:       server,
		Orchestrator: orchStub,
		Hub:          hub,
		Signer:       signer,
		AuditRepo:    auditRepo,
		Cleanup:      cleanup,
	}
}

// login performs a real login request and returns the session token
func (ts *TestServer) login(t *testing.T) string {
	body := strings.NewReader(fmt.Sprintf(`{"username":%q,"password":%q}`, testAdminUsername, testAdminPassword))
	resp, err := http.Post(ts.Server.URL+"/api/v1/auth/login", "application/json", body)
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned status %d, want 200", resp.StatusCode)
	}

	var envelope struct {
		Success bool `json:"success"`
		Data    struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if envelope.Data.Token == "" {
		t.Fatal("login response contains no token")
	}
	return envelope.Data.Token
}

// doJSON performs an authenticated request against the test server
func (ts *TestServer) doJSON(t *testing.T, method, path, token, body string) (*http.Response, []byte) {
	req, err := http.NewRequest(method, ts.Server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp, raw
}
