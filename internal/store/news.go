package store

import (
	"context"

	"github.com/chesadev/marketsim/internal/domain"
)

// CreateNews inserts a news item.
func (s *Store) CreateNews(ctx context.Context, item *domain.News) error {
	return s.db.WithContext(ctx).Create(item).Error
}

// ListNews returns all news items, newest first.
func (s *Store) ListNews(ctx context.Context) ([]domain.News, error) {
	var items []domain.News
	err := s.db.WithContext(ctx).Order("created_at desc").Find(&items).Error
	return items, err
}
