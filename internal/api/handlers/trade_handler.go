package handlers

import (
	"net/http"

	"dashboard/internal/service"
)

// TradeHandler отвечает за торговые операции через дашборд
//
// Endpoints:
// - GET /api/v1/trades/markets?q=... - поиск рынков
// - GET /api/v1/trades/recent - последние сделки бота
// - POST /api/v1/trades/preview - расчет стоимости сделки
// - POST /api/v1/trades/execute - исполнение сделки через оркестратор
//
// Назначение:
// Поиск рынков и лента сделок читаются из оркестратора. Preview
// считается детерминированно на стороне дашборда: стоимость, комиссия
// площадки, оценка влияния на цену и проскальзывание для market ордеров.
type TradeHandler struct {
	tradeService service.TradeServiceInterface
}

// NewTradeHandler создает новый TradeHandler с внедрением зависимости
func NewTradeHandler(tradeService service.TradeServiceInterface) *TradeHandler {
	return &TradeHandler{
		tradeService: tradeService,
	}
}

// SearchMarkets возвращает рынки по поисковому запросу
//
// GET /api/v1/trades/markets?q=fed
func (h *TradeHandler) SearchMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := h.tradeService.SearchMarkets(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, markets, "")
}

// RecentTrades возвращает последние сделки бота
//
// GET /api/v1/trades/recent?limit=50
func (h *TradeHandler) RecentTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.tradeService.RecentTrades(r.Context(), parseLimit(r, 50))
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, trades, "")
}

// Preview рассчитывает стоимость сделки без исполнения
//
// POST /api/v1/trades/preview
//
// Тело запроса:
//
//	{"market": "...", "side": "YES", "size": 100, "order_type": "market"}
//
// HTTP коды:
// - 200 OK: расчет в data
// - 400 Bad Request: некорректные параметры сделки
// - 403 Forbidden: роль не допускает торговые операции
func (h *TradeHandler) Preview(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req service.TradeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	preview, err := h.tradeService.Preview(r.Context(), session, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, preview, "")
}

// Execute исполняет сделку через оркестратор
//
// POST /api/v1/trades/execute
//
// HTTP коды:
// - 200 OK: сделка передана оркестратору, сырой ответ в data
// - 400 Bad Request: некорректные параметры сделки
// - 403 Forbidden: роль не допускает торговые операции
func (h *TradeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFrom(w, r)
	if !ok {
		return
	}

	var req service.TradeRequest
	if err := decodeJSONBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.tradeService.Execute(r.Context(), session, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, result, "trade submitted")
}
