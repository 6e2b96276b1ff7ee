package models

// Стороны ордера на prediction-рынке
const (
	TradeSideYes = "YES"
	TradeSideNo  = "NO"
)

// Типы ордеров
const (
	OrderTypeMarket = "market"
	OrderTypeLimit  = "limit"
)

// TradePreview представляет неавторитативную оценку стоимости сделки.
//
// Детерминированный расчет без side effects:
//   - cost = size * price
//   - fee = cost * фиксированная ставка площадки
//   - slippage/price impact - эвристики от notional/liquidity с потолком
//
// Это НЕ гарантия исполнения: реальная стоимость определяется
// книгой заявок площадки в момент исполнения.
type TradePreview struct {
	Market         string  `json:"market"`
	Platform       string  `json:"platform"`
	Side           string  `json:"side"`
	Size           float64 `json:"size"`
	Price          float64 `json:"price"`
	EstimatedCost  float64 `json:"estimated_cost"`
	EstimatedFees  float64 `json:"estimated_fees"`
	SlippagePct    float64 `json:"slippage_pct"`
	PriceImpactPct float64 `json:"price_impact_pct"`
	TotalCost      float64 `json:"total_cost"`
}

// ValidTradeSide проверяет сторону ордера
func ValidTradeSide(side string) bool {
	return side == TradeSideYes || side == TradeSideNo
}

// ValidOrderType проверяет тип ордера
func ValidOrderType(t string) bool {
	return t == OrderTypeMarket || t == OrderTypeLimit
}
