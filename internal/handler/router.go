package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/chesadev/marketsim/internal/service"
	"github.com/chesadev/marketsim/internal/stream"
)

// NewRouter creates a chi router with all routes registered, request
// logging, Content-Type validation, and a rate limit on order intake.
func NewRouter(
	accountSvc *service.AccountService,
	orderSvc *service.OrderService,
	stockSvc *service.StockService,
	marketSvc *service.MarketService,
	newsSvc *service.NewsService,
	hub *stream.Hub,
	intakeLimiter *rate.Limiter,
	logger *slog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))
	r.Use(contentTypeJSON)

	// Create handlers.
	accountH := NewAccountHandler(accountSvc)
	orderH := NewOrderHandler(orderSvc)
	stockH := NewStockHandler(stockSvc, orderSvc)
	marketH := NewMarketHandler(marketSvc)
	newsH := NewNewsHandler(newsSvc)
	streamH := NewStreamHandler(hub, logger)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Account and portfolio routes.
	r.Post("/api/accounts", accountH.Create)
	r.Get("/api/portfolio/profile", accountH.Profile)
	r.Get("/api/portfolio/holdings", accountH.Holdings)
	r.Get("/api/leaderboard", accountH.Leaderboard)

	// Order routes. Submission is rate limited.
	r.With(rateLimit(intakeLimiter)).Post("/api/orders", orderH.SubmitOrder)
	r.Get("/api/orders", orderH.ListOrders)
	r.Get("/api/orders/{order_id}", orderH.GetOrder)
	r.Get("/api/transactions", orderH.ListTransactions)

	// Stock routes.
	r.Get("/api/stocks", stockH.List)
	r.Get("/api/stocks/stream", streamH.Stream)
	r.Post("/api/stocks/{stock_id}/buy", stockH.Buy)
	r.Post("/api/stocks/{stock_id}/sell", stockH.Sell)
	r.Post("/api/admin/stocks", stockH.Add)

	// Market gate routes.
	r.Get("/api/market/state", marketH.State)
	r.Post("/api/market/control", marketH.Control)

	// News routes.
	r.Get("/api/news", newsH.List)
	r.Post("/api/news", newsH.Create)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT,
// and PATCH requests before the handler runs.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimit is middleware that applies a shared token-bucket limit to
// the wrapped route.
func rateLimit(limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				WriteError(w, http.StatusTooManyRequests, "rate_limited",
					"too many order submissions, slow down")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
