package handler

import (
	"net/http"

	"github.com/chesadev/marketsim/internal/service"
)

// MarketHandler handles the market gate endpoints.
type MarketHandler struct {
	marketSvc *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

// controlMarketRequest is the JSON request body for POST /api/market/control.
type controlMarketRequest struct {
	IsActive *bool `json:"is_active"`
}

// marketStateResponse is the JSON shape of the market state.
type marketStateResponse struct {
	IsActive bool   `json:"is_active"`
	Message  string `json:"message"`
}

// State handles GET /api/market/state.
func (h *MarketHandler) State(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, buildMarketStateResponse(h.marketSvc.Active()))
}

// Control handles POST /api/market/control: admin-only open/close.
func (h *MarketHandler) Control(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req controlMarketRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.IsActive == nil {
		WriteError(w, http.StatusBadRequest, "validation_error", "is_active field is required")
		return
	}

	if err := h.marketSvc.SetActive(r.Context(), uid, *req.IsActive); err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, buildMarketStateResponse(*req.IsActive))
}

func buildMarketStateResponse(active bool) marketStateResponse {
	msg := "market is currently inactive"
	if active {
		msg = "market is currently active"
	}
	return marketStateResponse{IsActive: active, Message: msg}
}
