// Package orchestrator содержит типизированный HTTP клиент к внешнему
// торговому движку ("оркестратору"). Оркестратор владеет стратегиями,
// позициями и подключением к площадкам; дашборд только проксирует
// команды и читает состояние.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	jsoniter "github.com/json-iterator/go"

	"dashboard/internal/metrics"
	"dashboard/internal/models"
	"dashboard/pkg/retry"
	"dashboard/pkg/utils"
)

// jsonCodec - быстрый JSON кодек для wire-формата оркестратора
var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// response - единый конверт ответов оркестратора
type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Config - настройки клиента
type Config struct {
	BaseURL string

	// RequestTimeout - таймаут каждого HTTP запроса.
	// Явный: аварийные команды не должны висеть на дефолтах transport'а.
	RequestTimeout time.Duration

	// Retry только для read-only запросов; мутации не ретраятся,
	// идемпотентность мутаций - зона ответственности оркестратора.
	MaxRetries   int
	RetryBackoff time.Duration
}

// Client - HTTP клиент оркестратора.
// Создается один раз в main и внедряется в сервисы конструкторами.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryCfg   retry.Config
	logger     *utils.Logger
}

// NewClient создает клиент оркестратора
func NewClient(cfg Config, logger *utils.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// Connection pooling: клиент переиспользуется всеми запросами
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	retryCfg := retry.Config{
		MaxRetries:   cfg.MaxRetries,
		InitialDelay: cfg.RetryBackoff,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		retryCfg: retryCfg,
		logger:   logger.WithComponent("orchestrator"),
	}
}

// ============ Конфигурация ============

// GetConfig возвращает текущую конфигурацию торгового движка
func (c *Client) GetConfig(ctx context.Context) (json.RawMessage, error) {
	return c.getWithRetry(ctx, "/api/config", nil)
}

// UpdateConfig отправляет обновление конфигурации
func (c *Client) UpdateConfig(ctx context.Context, payload json.RawMessage) error {
	_, err := c.do(ctx, http.MethodPut, "/api/config", payload)
	return err
}

// ============ Аварийные операции ============

// PauseAllStrategies приостанавливает все стратегии
func (c *Client) PauseAllStrategies(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/api/emergency/pause-all", nil)
}

// StopAllTrading останавливает всю торговлю
func (c *Client) StopAllTrading(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, "/api/emergency/stop-all", nil)
}

// closeAllResult - ответ оркестратора на close-all
type closeAllResult struct {
	ClosedPositions int `json:"closed_positions"`
}

// CloseAllPositions закрывает все открытые позиции.
// Возвращает количество закрытых позиций по данным оркестратора.
func (c *Client) CloseAllPositions(ctx context.Context) (int, json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodPost, "/api/emergency/close-all", nil)
	if err != nil {
		return 0, nil, err
	}

	var result closeAllResult
	if err := jsonCodec.Unmarshal(raw, &result); err != nil {
		return 0, raw, fmt.Errorf("decode close-all result: %w", err)
	}
	return result.ClosedPositions, raw, nil
}

// ============ Позиции ============

// PositionFilter - фильтры списка позиций
type PositionFilter struct {
	Market     string
	StrategyID string
}

// GetPositions возвращает открытые позиции
func (c *Client) GetPositions(ctx context.Context, filter PositionFilter) ([]models.Position, error) {
	params := url.Values{}
	if filter.Market != "" {
		params.Set("market", filter.Market)
	}
	if filter.StrategyID != "" {
		params.Set("strategy_id", filter.StrategyID)
	}

	raw, err := c.getWithRetry(ctx, "/api/positions", params)
	if err != nil {
		return nil, err
	}

	var positions []models.Position
	if err := jsonCodec.Unmarshal(raw, &positions); err != nil {
		return nil, fmt.Errorf("decode positions: %w", err)
	}
	return positions, nil
}

// ClosePosition закрывает одну позицию по id
func (c *Client) ClosePosition(ctx context.Context, positionID string) error {
	path := "/api/positions/" + url.PathEscape(positionID) + "/close"
	_, err := c.do(ctx, http.MethodPost, path, nil)
	return err
}

// ============ Стратегии ============

// GetStrategies возвращает список стратегий
func (c *Client) GetStrategies(ctx context.Context) ([]models.Strategy, error) {
	raw, err := c.getWithRetry(ctx, "/api/strategies", nil)
	if err != nil {
		return nil, err
	}

	var strategies []models.Strategy
	if err := jsonCodec.Unmarshal(raw, &strategies); err != nil {
		return nil, fmt.Errorf("decode strategies: %w", err)
	}
	return strategies, nil
}

// SetStrategyStatus выполняет start/pause/stop для стратегии
func (c *Client) SetStrategyStatus(ctx context.Context, strategyID, action string) error {
	path := "/api/strategies/" + url.PathEscape(strategyID) + "/" + url.PathEscape(action)
	_, err := c.do(ctx, http.MethodPost, path, nil)
	return err
}

// ============ Сервисы ============

// GetServices возвращает состояние сервисов торговой системы
func (c *Client) GetServices(ctx context.Context) ([]models.ServiceStatus, error) {
	raw, err := c.getWithRetry(ctx, "/api/services", nil)
	if err != nil {
		return nil, err
	}

	var services []models.ServiceStatus
	if err := jsonCodec.Unmarshal(raw, &services); err != nil {
		return nil, fmt.Errorf("decode services: %w", err)
	}
	return services, nil
}

// RestartService перезапускает сервис торговой системы
func (c *Client) RestartService(ctx context.Context, serviceID string) error {
	path := "/api/services/" + url.PathEscape(serviceID) + "/restart"
	_, err := c.do(ctx, http.MethodPost, path, nil)
	return err
}

// ============ Рынки и сделки ============

// SearchMarkets возвращает рынки по поисковому запросу
func (c *Client) SearchMarkets(ctx context.Context, query string) ([]models.Market, error) {
	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}

	raw, err := c.getWithRetry(ctx, "/api/markets", params)
	if err != nil {
		return nil, err
	}

	var markets []models.Market
	if err := jsonCodec.Unmarshal(raw, &markets); err != nil {
		return nil, fmt.Errorf("decode markets: %w", err)
	}
	return markets, nil
}

// GetMarket возвращает один рынок по id
func (c *Client) GetMarket(ctx context.Context, marketID string) (*models.Market, error) {
	raw, err := c.getWithRetry(ctx, "/api/markets/"+url.PathEscape(marketID), nil)
	if err != nil {
		return nil, err
	}

	var market models.Market
	if err := jsonCodec.Unmarshal(raw, &market); err != nil {
		return nil, fmt.Errorf("decode market: %w", err)
	}
	return &market, nil
}

// GetRecentTrades возвращает последние сделки
func (c *Client) GetRecentTrades(ctx context.Context, limit int) ([]models.RecentTrade, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	raw, err := c.getWithRetry(ctx, "/api/trades/recent", params)
	if err != nil {
		return nil, err
	}

	var trades []models.RecentTrade
	if err := jsonCodec.Unmarshal(raw, &trades); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}
	return trades, nil
}

// ExecuteTradeRequest - запрос на исполнение сделки
type ExecuteTradeRequest struct {
	Market     string  `json:"market"`
	Side       string  `json:"side"`
	Size       float64 `json:"size"`
	OrderType  string  `json:"order_type"`
	LimitPrice float64 `json:"limit_price,omitempty"`
}

// ExecuteTrade отправляет сделку на исполнение.
// Текущий endpoint оркестратора симулирует исполнение; реальный
// order-routing должен заменить его без изменения этого интерфейса.
func (c *Client) ExecuteTrade(ctx context.Context, req ExecuteTradeRequest) (json.RawMessage, error) {
	payload, err := jsonCodec.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode trade request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/api/trades/execute", payload)
}

// ============ Уведомления ============

// SendTestNotification просит relay оркестратора отправить
// тестовое сообщение в канал уведомлений
func (c *Client) SendTestNotification(ctx context.Context, channelType, channelConfig string) error {
	payload, err := jsonCodec.Marshal(map[string]string{
		"type":   channelType,
		"config": channelConfig,
	})
	if err != nil {
		return fmt.Errorf("encode notification request: %w", err)
	}
	_, err = c.do(ctx, http.MethodPost, "/api/notifications/test", payload)
	return err
}

// ============ Транспорт ============

// getWithRetry выполняет GET с retry: чтения идемпотентны,
// транспортные ошибки ретраятся с экспоненциальным backoff
func (c *Client) getWithRetry(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	fullPath := path
	if len(params) > 0 {
		fullPath = path + "?" + params.Encode()
	}

	return retry.DoWithResult(ctx, func() (json.RawMessage, error) {
		return c.do(ctx, http.MethodGet, fullPath, nil)
	}, c.withRetryPolicy())
}

// withRetryPolicy возвращает retry конфиг, ретраящий только транспортные ошибки
func (c *Client) withRetryPolicy() retry.Config {
	cfg := c.retryCfg
	cfg.RetryIf = func(err error) bool {
		// API ошибки (оркестратор ответил) не ретраим
		if _, ok := IsAPIError(err); ok {
			return false
		}
		return true
	}
	cfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		c.logger.Warn("retrying orchestrator request",
			utils.Int("attempt", attempt),
			utils.Err(err),
		)
	}
	return cfg
}

// do выполняет один HTTP запрос и разбирает конверт ответа
func (c *Client) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		metrics.OrchestratorRequestsTotal.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.OrchestratorRequestsTotal.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		metrics.OrchestratorRequestsTotal.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		metrics.OrchestratorRequestsTotal.WithLabelValues("api_error").Inc()
		return nil, ErrNotFound
	}

	var envelope response
	if err := jsonCodec.Unmarshal(raw, &envelope); err != nil {
		metrics.OrchestratorRequestsTotal.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("%w: malformed response: %v", ErrUnavailable, err)
	}

	if !envelope.Success {
		message := envelope.Error
		if message == "" {
			message = "operation failed"
		}
		metrics.OrchestratorRequestsTotal.WithLabelValues("api_error").Inc()
		return nil, &APIError{StatusCode: resp.StatusCode, Message: message}
	}

	metrics.OrchestratorRequestsTotal.WithLabelValues("ok").Inc()
	return envelope.Data, nil
}
