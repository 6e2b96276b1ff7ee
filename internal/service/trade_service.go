package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"dashboard/internal/auth"
	"dashboard/internal/models"
	"dashboard/internal/orchestrator"
	"dashboard/pkg/utils"
)

// Фиксированные ставки комиссии по площадкам
var platformFeeRates = map[string]decimal.Decimal{
	"polymarket": decimal.NewFromFloat(0.005),
	"kalshi":     decimal.NewFromFloat(0.007),
}

// defaultFeeRate применяется для неизвестных площадок
var defaultFeeRate = decimal.NewFromFloat(0.01)

// Потолок эвристики проскальзывания в процентах
var maxSlippagePct = decimal.NewFromFloat(5.0)

// TradeRequest представляет запрос preview или execute
type TradeRequest struct {
	Market     string  `json:"market"`
	Side       string  `json:"side"`       // YES / NO
	Size       float64 `json:"size"`       // количество контрактов
	OrderType  string  `json:"order_type"` // market / limit
	LimitPrice float64 `json:"limit_price,omitempty"`
}

// TradeService отвечает за поиск рынков, preview и (симулированное)
// исполнение сделок.
//
// Preview - чистая децимальная арифметика без побочных эффектов.
// Execute делегирует симулирующему endpoint оркестратора и не
// является авторитативным исполнением.
type TradeService struct {
	auditRepo AuditRepositoryInterface
	orch      OrchestratorInterface
	logger    *utils.Logger
}

// NewTradeService создает новый экземпляр TradeService.
func NewTradeService(auditRepo AuditRepositoryInterface, orch OrchestratorInterface, logger *utils.Logger) *TradeService {
	return &TradeService{
		auditRepo: auditRepo,
		orch:      orch,
		logger:    logger.WithComponent("trade"),
	}
}

// SearchMarkets ищет рынки по строке запроса
func (s *TradeService) SearchMarkets(ctx context.Context, query string) ([]models.Market, error) {
	markets, err := s.orch.SearchMarkets(ctx, query)
	if err != nil {
		return nil, sanitizeOrchestratorError(err)
	}
	return markets, nil
}

// RecentTrades возвращает последние исполненные сделки
func (s *TradeService) RecentTrades(ctx context.Context, limit int) ([]models.RecentTrade, error) {
	trades, err := s.orch.GetRecentTrades(ctx, limit)
	if err != nil {
		return nil, sanitizeOrchestratorError(err)
	}
	return trades, nil
}

// Preview рассчитывает оценку стоимости сделки.
//
// Формулы:
//   - cost = size * price
//   - fee = cost * ставка площадки
//   - priceImpact = min(notional / liquidity * 100, потолок)
//   - slippage = priceImpact / 2 (market-ордер), 0 (limit-ордер)
//
// Гейт тот же, что у Execute: preview - часть торгового потока.
func (s *TradeService) Preview(ctx context.Context, session *models.Session, req *TradeRequest) (*models.TradePreview, error) {
	if err := s.validateTradeRequest(req); err != nil {
		return nil, err
	}
	if !auth.CanManagePositions(session.Role) {
		return nil, ErrForbidden
	}

	market, err := s.orch.GetMarket(ctx, req.Market)
	if err != nil {
		return nil, sanitizeOrchestratorError(err)
	}

	price := s.referencePrice(market, req)
	if price.LessThanOrEqual(decimal.Zero) || price.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: market has no tradable price for side %s", ErrValidation, req.Side)
	}

	size := decimal.NewFromFloat(req.Size)
	cost := size.Mul(price)
	fee := cost.Mul(s.feeRate(market.Platform))

	impact := decimal.Zero
	if market.Liquidity > 0 {
		impact = cost.Div(decimal.NewFromFloat(market.Liquidity)).Mul(decimal.NewFromInt(100))
		if impact.GreaterThan(maxSlippagePct) {
			impact = maxSlippagePct
		}
	}

	slippage := decimal.Zero
	if req.OrderType == models.OrderTypeMarket {
		slippage = impact.Div(decimal.NewFromInt(2))
	}

	total := cost.Add(fee)

	preview := &models.TradePreview{
		Market:         req.Market,
		Platform:       market.Platform,
		Side:           req.Side,
		Size:           req.Size,
		Price:          price.InexactFloat64(),
		EstimatedCost:  cost.Round(6).InexactFloat64(),
		EstimatedFees:  fee.Round(6).InexactFloat64(),
		SlippagePct:    slippage.Round(4).InexactFloat64(),
		PriceImpactPct: impact.Round(4).InexactFloat64(),
		TotalCost:      total.Round(6).InexactFloat64(),
	}
	return preview, nil
}

// Execute отправляет сделку на симулированное исполнение
func (s *TradeService) Execute(ctx context.Context, session *models.Session, req *TradeRequest) (json.RawMessage, error) {
	if err := s.validateTradeRequest(req); err != nil {
		return nil, err
	}
	if !auth.CanManagePositions(session.Role) {
		return nil, ErrForbidden
	}

	result, err := s.orch.ExecuteTrade(ctx, orchestrator.ExecuteTradeRequest{
		Market:     req.Market,
		Side:       req.Side,
		Size:       req.Size,
		OrderType:  req.OrderType,
		LimitPrice: req.LimitPrice,
	})
	if err != nil {
		return nil, sanitizeOrchestratorError(err)
	}

	recordAudit(s.auditRepo, s.logger, session, "trade_execute", models.AuditResourceTrade, map[string]interface{}{
		"market":     req.Market,
		"side":       req.Side,
		"size":       req.Size,
		"order_type": req.OrderType,
	})
	return result, nil
}

// validateTradeRequest проверяет общие поля preview/execute запроса
func (s *TradeService) validateTradeRequest(req *TradeRequest) error {
	if err := utils.ValidateMarketID(req.Market); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !models.ValidTradeSide(req.Side) {
		return fmt.Errorf("%w: side must be YES or NO", ErrValidation)
	}
	if !models.ValidOrderType(req.OrderType) {
		return fmt.Errorf("%w: order type must be market or limit", ErrValidation)
	}
	if err := utils.ValidateOrderSize(req.Size); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if req.OrderType == models.OrderTypeLimit {
		if err := utils.ValidatePrice(req.LimitPrice); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	return nil
}

// referencePrice выбирает цену для расчета: лимитную для limit-ордера,
// текущую цену стороны рынка для market-ордера
func (s *TradeService) referencePrice(market *models.Market, req *TradeRequest) decimal.Decimal {
	if req.OrderType == models.OrderTypeLimit {
		return decimal.NewFromFloat(req.LimitPrice)
	}
	if req.Side == models.TradeSideYes {
		return decimal.NewFromFloat(market.YesPrice)
	}
	return decimal.NewFromFloat(market.NoPrice)
}

// feeRate возвращает ставку комиссии площадки
func (s *TradeService) feeRate(platform string) decimal.Decimal {
	if rate, ok := platformFeeRates[platform]; ok {
		return rate
	}
	return defaultFeeRate
}
