package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/chesadev/marketsim/internal/domain"
	"github.com/chesadev/marketsim/internal/service"
)

// StockHandler handles HTTP requests for stock endpoints.
type StockHandler struct {
	stockSvc *service.StockService
	orderSvc *service.OrderService
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockSvc *service.StockService, orderSvc *service.OrderService) *StockHandler {
	return &StockHandler{stockSvc: stockSvc, orderSvc: orderSvc}
}

// stockResponse is the JSON shape of one stock listing.
type stockResponse struct {
	StockID        string  `json:"id"`
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	CurrentPrice   float64 `json:"current_price"`
	PriceChangePct float64 `json:"price_change_pct"`
}

// addStockRequest is the JSON request body for POST /api/admin/stocks.
type addStockRequest struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`
}

// instantTradeRequest is the JSON request body for the instant
// buy/sell endpoints.
type instantTradeRequest struct {
	Quantity int64 `json:"quantity"`
}

// instantTradeResponse reports the account's balance after an instant
// trade settles.
type instantTradeResponse struct {
	Message    string  `json:"message"`
	NewBalance float64 `json:"new_balance"`
}

// List handles GET /api/stocks.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	stocks, err := h.stockSvc.List(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}

	resp := make([]stockResponse, len(stocks))
	for i := range stocks {
		resp[i] = buildStockResponse(&stocks[i])
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Add handles POST /api/admin/stocks.
func (h *StockHandler) Add(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req addStockRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	stock, err := h.stockSvc.Add(r.Context(), uid, service.AddStockRequest{
		Symbol:       req.Symbol,
		Name:         req.Name,
		InitialPrice: decimal.NewFromFloat(req.CurrentPrice),
	})
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildStockResponse(stock))
}

// Buy handles POST /api/stocks/{stock_id}/buy: an immediate purchase
// at the current price, outside the batch-clearing path.
func (h *StockHandler) Buy(w http.ResponseWriter, r *http.Request) {
	h.instantTrade(w, r, domain.OrderSideBuy)
}

// Sell handles POST /api/stocks/{stock_id}/sell.
func (h *StockHandler) Sell(w http.ResponseWriter, r *http.Request) {
	h.instantTrade(w, r, domain.OrderSideSell)
}

func (h *StockHandler) instantTrade(w http.ResponseWriter, r *http.Request, side domain.OrderSide) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req instantTradeRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	stockID := chi.URLParam(r, "stock_id")
	var (
		balance decimal.Decimal
		err     error
		message string
	)
	if side == domain.OrderSideBuy {
		balance, err = h.orderSvc.InstantBuy(r.Context(), uid, stockID, req.Quantity)
		message = "stock purchased successfully"
	} else {
		balance, err = h.orderSvc.InstantSell(r.Context(), uid, stockID, req.Quantity)
		message = "stock sold successfully"
	}
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, instantTradeResponse{
		Message:    message,
		NewBalance: balance.InexactFloat64(),
	})
}

func buildStockResponse(s *domain.Stock) stockResponse {
	return stockResponse{
		StockID:        s.ID,
		Symbol:         s.Symbol,
		Name:           s.Name,
		CurrentPrice:   s.CurrentPrice.InexactFloat64(),
		PriceChangePct: s.PriceChangePct.InexactFloat64(),
	}
}
