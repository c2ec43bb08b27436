package handler

import (
	"net/http"
	"time"

	"github.com/chesadev/marketsim/internal/service"
)

// NewsHandler handles the news endpoints.
type NewsHandler struct {
	newsSvc *service.NewsService
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(newsSvc *service.NewsService) *NewsHandler {
	return &NewsHandler{newsSvc: newsSvc}
}

// createNewsRequest is the JSON request body for POST /api/news.
type createNewsRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// newsResponse is the JSON shape of one announcement.
type newsResponse struct {
	NewsID    string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// List handles GET /api/news.
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.newsSvc.List(r.Context())
	if err != nil {
		mapError(w, err)
		return
	}

	resp := make([]newsResponse, len(items))
	for i, n := range items {
		resp[i] = newsResponse{
			NewsID:    n.ID,
			Title:     n.Title,
			Content:   n.Content,
			CreatedAt: n.CreatedAt.UTC().Format(time.RFC3339),
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/news: admin-only publication.
func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req createNewsRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	item, err := h.newsSvc.Create(r.Context(), uid, req.Title, req.Content)
	if err != nil {
		mapError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, newsResponse{
		NewsID:    item.ID,
		Title:     item.Title,
		Content:   item.Content,
		CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339),
	})
}
