package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/chesadev/marketsim/internal/domain"
	"github.com/chesadev/marketsim/internal/service"
)

// OrderHandler handles HTTP requests for order and transaction
// endpoints.
type OrderHandler struct {
	orderSvc *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderSvc *service.OrderService) *OrderHandler {
	return &OrderHandler{orderSvc: orderSvc}
}

// submitOrderRequest is the JSON request body for POST /api/orders.
type submitOrderRequest struct {
	StockID  string `json:"stock_id"`
	Side     string `json:"side"`
	Quantity int64  `json:"quantity"`
}

// orderResponse is the JSON shape of one order.
type orderResponse struct {
	OrderID   string  `json:"order_id"`
	StockID   string  `json:"stock_id"`
	Symbol    string  `json:"stock_symbol,omitempty"`
	Side      string  `json:"side"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
	Status    string  `json:"status"`
	CreatedAt string  `json:"created_at"`
}

// transactionResponse is the JSON shape of one ledger entry.
type transactionResponse struct {
	TransactionID string  `json:"transaction_id"`
	StockID       string  `json:"stock_id"`
	Side          string  `json:"side"`
	Quantity      int64   `json:"quantity"`
	Price         float64 `json:"price"`
	TotalAmount   float64 `json:"total_amount"`
	OrderID       string  `json:"order_id"`
	CreatedAt     string  `json:"created_at"`
}

// SubmitOrder handles POST /api/orders.
func (h *OrderHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req submitOrderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	order, err := h.orderSvc.SubmitOrder(r.Context(), service.SubmitOrderRequest{
		UserID:   uid,
		StockID:  req.StockID,
		Side:     domain.OrderSide(req.Side),
		Quantity: req.Quantity,
	})
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, buildOrderResponse(order))
}

// GetOrder handles GET /api/orders/{order_id}.
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	order, err := h.orderSvc.GetOrder(r.Context(), uid, chi.URLParam(r, "order_id"))
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildOrderResponse(order))
}

// ListOrders handles GET /api/orders.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	orders, err := h.orderSvc.ListOrders(r.Context(), uid)
	if err != nil {
		mapError(w, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = buildOrderResponse(&orders[i])
	}
	WriteJSON(w, http.StatusOK, resp)
}

// ListTransactions handles GET /api/transactions.
func (h *OrderHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	txns, err := h.orderSvc.ListTransactions(r.Context(), uid)
	if err != nil {
		mapError(w, err)
		return
	}

	resp := make([]transactionResponse, len(txns))
	for i, t := range txns {
		resp[i] = transactionResponse{
			TransactionID: t.ID,
			StockID:       t.StockID,
			Side:          string(t.Side),
			Quantity:      t.Quantity,
			Price:         t.Price.InexactFloat64(),
			TotalAmount:   t.TotalAmount.InexactFloat64(),
			OrderID:       t.OrderID,
			CreatedAt:     t.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

func buildOrderResponse(o *domain.Order) orderResponse {
	resp := orderResponse{
		OrderID:   o.ID,
		StockID:   o.StockID,
		Side:      string(o.Side),
		Quantity:  o.Quantity,
		Price:     o.Price.InexactFloat64(),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
	}
	if o.Stock != nil {
		resp.Symbol = o.Stock.Symbol
	}
	return resp
}
