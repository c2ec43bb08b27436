package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chesadev/marketsim/internal/domain"
	"github.com/chesadev/marketsim/internal/store"
)

// NewsService serves market announcements.
type NewsService struct {
	store *store.Store
}

// NewNewsService creates a NewsService.
func NewNewsService(s *store.Store) *NewsService {
	return &NewsService{store: s}
}

// List returns all announcements, newest first.
func (s *NewsService) List(ctx context.Context) ([]domain.News, error) {
	return s.store.ListNews(ctx)
}

// Create publishes an announcement. Admin only.
func (s *NewsService) Create(ctx context.Context, actorID, title, content string) (*domain.News, error) {
	if err := requireAdmin(ctx, s.store, actorID); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, &domain.ValidationError{Message: "title is required"}
	}

	item := &domain.News{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateNews(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
