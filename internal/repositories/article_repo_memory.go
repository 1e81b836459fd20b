package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"lager/internal/models"
)

// MemoryArticleRepository is an in-memory implementation of ArticleRepository.
type MemoryArticleRepository struct {
	articles map[string]models.Article
	nextID   int64
	now      func() time.Time
	mu       sync.RWMutex
}

// NewMemoryArticleRepository creates a new instance of MemoryArticleRepository.
func NewMemoryArticleRepository() *MemoryArticleRepository {
	return &MemoryArticleRepository{
		articles: make(map[string]models.Article),
		now:      time.Now,
	}
}

// List returns articles ordered by name.
func (r *MemoryArticleRepository) List(ctx context.Context, q ListQuery) ([]models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(q.Search))
	articleList := make([]models.Article, 0, len(r.articles))
	for _, a := range r.articles {
		if q.InStockOnly && a.Quantity <= 0 {
			continue
		}
		if term != "" && !matches(a, term) {
			continue
		}
		articleList = append(articleList, clone(a))
	}
	sort.Slice(articleList, func(i, j int) bool {
		if articleList[i].Name != articleList[j].Name {
			return articleList[i].Name < articleList[j].Name
		}
		return articleList[i].ID < articleList[j].ID
	})
	return articleList, nil
}

// GetByEAN returns an article by its EAN code.
func (r *MemoryArticleRepository) GetByEAN(ctx context.Context, ean string) (*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.articles[ean]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ean)
	}
	a = clone(a)
	return &a, nil
}

// Create adds a new article.
func (r *MemoryArticleRepository) Create(ctx context.Context, article *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.articles[article.EANCode]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, article.EANCode)
	}
	r.nextID++
	now := r.now()
	article.ID = r.nextID
	article.CreatedAt = now
	article.UpdatedAt = now
	r.articles[article.EANCode] = clone(*article)
	return nil
}

// Update modifies only the provided fields of an existing article.
func (r *MemoryArticleRepository) Update(ctx context.Context, ean string, changes models.ArticleUpdate) (*models.Article, error) {
	if changes.IsEmpty() {
		return nil, ErrNoFields
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.articles[ean]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ean)
	}
	if changes.Name != nil {
		a.Name = *changes.Name
	}
	if changes.Description != nil {
		d := *changes.Description
		a.Description = &d
	}
	if changes.Quantity != nil {
		a.Quantity = *changes.Quantity
	}
	if changes.Price != nil {
		p := *changes.Price
		a.Price = &p
	}
	a.UpdatedAt = r.now()
	r.articles[ean] = a

	out := clone(a)
	return &out, nil
}

// Delete removes an article by its EAN code.
func (r *MemoryArticleRepository) Delete(ctx context.Context, ean string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.articles[ean]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, ean)
	}
	delete(r.articles, ean)
	return nil
}

func matches(a models.Article, term string) bool {
	if strings.Contains(strings.ToLower(a.EANCode), term) || strings.Contains(strings.ToLower(a.Name), term) {
		return true
	}
	return a.Description != nil && strings.Contains(strings.ToLower(*a.Description), term)
}

// clone copies the pointer fields so callers never share state with the map.
func clone(a models.Article) models.Article {
	if a.Description != nil {
		d := *a.Description
		a.Description = &d
	}
	if a.Price != nil {
		p := *a.Price
		a.Price = &p
	}
	return a
}
