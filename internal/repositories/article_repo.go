package repositories

import (
	"context"
	"errors"

	"lager/internal/models"
)

var (
	// ErrNotFound is returned when no article matches the EAN code.
	ErrNotFound = errors.New("article not found")
	// ErrDuplicateKey is returned when an article with the same EAN code already exists.
	ErrDuplicateKey = errors.New("duplicate ean code")
	// ErrNoFields is returned by Update when the change set is empty.
	ErrNoFields = errors.New("no fields to update")
)

// ListQuery filters List. Zero value lists every article.
type ListQuery struct {
	// Search matches case-insensitively against ean_code, name or description.
	Search string
	// InStockOnly keeps articles with quantity > 0.
	InStockOnly bool
}

// ArticleRepository defines the interface for article data access.
// Every call is one committed unit of work.
type ArticleRepository interface {
	List(ctx context.Context, q ListQuery) ([]models.Article, error)
	GetByEAN(ctx context.Context, ean string) (*models.Article, error)
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, ean string, changes models.ArticleUpdate) (*models.Article, error)
	Delete(ctx context.Context, ean string) error
}
