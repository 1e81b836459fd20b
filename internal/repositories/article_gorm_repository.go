package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lager/internal/database"
	"lager/internal/models"

	"gorm.io/gorm"
)

// GORMArticleRepository is a GORM implementation of ArticleRepository running
// each operation on a pooled connection.
type GORMArticleRepository struct {
	pool *database.Pool
}

// NewGORMArticleRepository creates a new instance of GORMArticleRepository.
func NewGORMArticleRepository(pool *database.Pool) *GORMArticleRepository {
	return &GORMArticleRepository{
		pool: pool,
	}
}

// List returns articles ordered by name.
func (r *GORMArticleRepository) List(ctx context.Context, q ListQuery) ([]models.Article, error) {
	articles := []models.Article{}
	err := r.pool.WithTx(ctx, func(tx *gorm.DB) error {
		query := tx.Model(&models.Article{})
		if term := strings.TrimSpace(q.Search); term != "" {
			// SQLite's LOWER folds ASCII only.
			like := likePattern(term)
			query = query.Where(
				"LOWER(ean_code) LIKE ? ESCAPE '!' OR LOWER(name) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!'",
				like, like, like,
			)
		}
		if q.InStockOnly {
			query = query.Where("quantity > ?", 0)
		}
		return query.Order("name ASC").Order("id ASC").Find(&articles).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

// GetByEAN retrieves a single article by its EAN code.
func (r *GORMArticleRepository) GetByEAN(ctx context.Context, ean string) (*models.Article, error) {
	var article models.Article
	err := r.pool.WithTx(ctx, func(tx *gorm.DB) error {
		return findByEAN(tx, ean, &article)
	})
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// Create inserts the article and refreshes it with the persisted values.
func (r *GORMArticleRepository) Create(ctx context.Context, article *models.Article) error {
	return r.pool.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(article).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %s", ErrDuplicateKey, article.EANCode)
			}
			return fmt.Errorf("failed to create article: %w", err)
		}
		return findByEAN(tx, article.EANCode, article)
	})
}

// Update applies a partial update and returns the article as stored afterwards.
func (r *GORMArticleRepository) Update(ctx context.Context, ean string, changes models.ArticleUpdate) (*models.Article, error) {
	var article models.Article
	err := r.pool.WithTx(ctx, func(tx *gorm.DB) error {
		stmt, err := BuildUpdate(ean, changes, tx.NowFunc())
		if err != nil {
			return err
		}
		if err := tx.Exec(stmt.SQL, stmt.Args...).Error; err != nil {
			return fmt.Errorf("failed to update article %s: %w", ean, err)
		}
		// Re-read instead of trusting RowsAffected: MySQL reports 0 for a no-op change.
		return findByEAN(tx, ean, &article)
	})
	if err != nil {
		return nil, err
	}
	return &article, nil
}

// Delete removes the article with the given EAN code.
func (r *GORMArticleRepository) Delete(ctx context.Context, ean string) error {
	return r.pool.WithTx(ctx, func(tx *gorm.DB) error {
		res := tx.Where("ean_code = ?", ean).Delete(&models.Article{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete article %s: %w", ean, res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, ean)
		}
		return nil
	})
}

func findByEAN(tx *gorm.DB, ean string, dst *models.Article) error {
	if err := tx.Where("ean_code = ?", ean).First(dst).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, ean)
		}
		return fmt.Errorf("failed to get article %s: %w", ean, err)
	}
	return nil
}
