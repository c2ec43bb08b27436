package handler

import (
	"net/http"
	"time"

	"github.com/chesadev/marketsim/internal/domain"
	"github.com/chesadev/marketsim/internal/service"
)

// AccountHandler handles account provisioning and the portfolio
// projections.
type AccountHandler struct {
	accountSvc *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc *service.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// createAccountRequest is the JSON request body for POST /api/accounts.
type createAccountRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// accountResponse is the JSON shape of one account.
type accountResponse struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	Balance   float64 `json:"balance"`
	CreatedAt string  `json:"created_at"`
}

// profileResponse is the JSON shape of the profile projection.
type profileResponse struct {
	Balance             float64 `json:"balance"`
	TotalPortfolioValue float64 `json:"total_portfolio_value"`
}

// holdingResponse is the JSON shape of one priced holding.
type holdingResponse struct {
	StockID      string  `json:"stock_id"`
	StockSymbol  string  `json:"stock_symbol"`
	StockName    string  `json:"stock_name"`
	Quantity     int64   `json:"quantity"`
	CurrentPrice float64 `json:"current_price"`
	TotalValue   float64 `json:"total_value"`
}

// leaderboardResponse is the JSON shape of one leaderboard entry.
type leaderboardResponse struct {
	UserID     string  `json:"user_id"`
	Email      string  `json:"email"`
	TotalValue float64 `json:"total_value"`
}

// Create handles POST /api/accounts.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	account, err := h.accountSvc.Create(r.Context(), service.CreateAccountRequest{
		Email: req.Email,
		Role:  domain.Role(req.Role),
	})
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, accountResponse{
		UserID:    account.UserID,
		Email:     account.Email,
		Role:      string(account.Role),
		Balance:   account.Balance.InexactFloat64(),
		CreatedAt: account.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// Profile handles GET /api/portfolio/profile.
func (h *AccountHandler) Profile(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	profile, err := h.accountSvc.Profile(r.Context(), uid)
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, profileResponse{
		Balance:             profile.Balance.InexactFloat64(),
		TotalPortfolioValue: profile.TotalPortfolioValue.InexactFloat64(),
	})
}

// Holdings handles GET /api/portfolio/holdings.
func (h *AccountHandler) Holdings(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	holdings, err := h.accountSvc.Holdings(r.Context(), uid)
	if err != nil {
		mapError(w, err)
		return
	}

	resp := make([]holdingResponse, len(holdings))
	for i, h := range holdings {
		resp[i] = holdingResponse{
			StockID:      h.StockID,
			StockSymbol:  h.StockSymbol,
			StockName:    h.StockName,
			Quantity:     h.Quantity,
			CurrentPrice: h.CurrentPrice.InexactFloat64(),
			TotalValue:   h.TotalValue.InexactFloat64(),
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Leaderboard handles GET /api/leaderboard.
func (h *AccountHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.accountSvc.Leaderboard(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}

	resp := make([]leaderboardResponse, len(entries))
	for i, e := range entries {
		resp[i] = leaderboardResponse{
			UserID:     e.UserID,
			Email:      e.Email,
			TotalValue: e.TotalValue.InexactFloat64(),
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}
