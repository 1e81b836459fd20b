package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"

	"lager/internal/models"
	"lager/internal/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Article change events.
const (
	EventArticleCreated = "article.created"
	EventArticleUpdated = "article.updated"
	EventArticleDeleted = "article.deleted"
)

// EventPublisher receives article change events after they were committed.
type EventPublisher interface {
	Publish(eventType string, payload interface{}) error
}

// ArticleService handles business logic related to articles.
type ArticleService struct {
	repo      repositories.ArticleRepository
	validate  *validator.Validate
	publisher EventPublisher
}

// NewArticleService creates a new ArticleService. publisher may be nil.
func NewArticleService(repo repositories.ArticleRepository, publisher EventPublisher) *ArticleService {
	return &ArticleService{
		repo:      repo,
		validate:  NewValidator(),
		publisher: publisher,
	}
}

// NewValidator returns a validator that reports JSON field names and understands decimals.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// List returns all articles, or those matching search in EAN code, name or description.
func (s *ArticleService) List(ctx context.Context, search string) ([]models.Article, error) {
	articles, err := s.repo.List(ctx, repositories.ListQuery{Search: search})
	if err != nil {
		return nil, classify("list articles", err)
	}
	return articles, nil
}

// Get retrieves a single article by its EAN code.
func (s *ArticleService) Get(ctx context.Context, ean string) (*models.Article, error) {
	article, err := s.repo.GetByEAN(ctx, ean)
	if err != nil {
		return nil, classify("get article", err)
	}
	return article, nil
}

// Create validates the input and stores a new article.
func (s *ArticleService) Create(ctx context.Context, in models.ArticleCreate) (*models.Article, error) {
	in.EANCode = strings.TrimSpace(in.EANCode)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in, in.Price); err != nil {
		return nil, err
	}

	article := &models.Article{
		EANCode:     in.EANCode,
		Name:        in.Name,
		Description: in.Description,
		Quantity:    in.Quantity,
		Price:       in.Price,
	}
	if err := s.repo.Create(ctx, article); err != nil {
		return nil, classify("create article", err)
	}

	s.publish(EventArticleCreated, article)
	return article, nil
}

// Update applies a partial update. An empty change set is rejected before reaching the store.
func (s *ArticleService) Update(ctx context.Context, ean string, changes models.ArticleUpdate) (*models.Article, error) {
	if changes.IsEmpty() {
		return nil, &ValidationError{Message: "No fields to update"}
	}
	if changes.Name != nil {
		name := strings.TrimSpace(*changes.Name)
		changes.Name = &name
	}
	if err := s.check(changes, changes.Price); err != nil {
		return nil, err
	}

	article, err := s.repo.Update(ctx, ean, changes)
	if err != nil {
		return nil, classify("update article", err)
	}

	s.publish(EventArticleUpdated, article)
	return article, nil
}

// Delete removes an article by its EAN code.
func (s *ArticleService) Delete(ctx context.Context, ean string) error {
	if err := s.repo.Delete(ctx, ean); err != nil {
		return classify("delete article", err)
	}

	s.publish(EventArticleDeleted, map[string]string{"ean_code": ean})
	return nil
}

// maxPrice is the first value that no longer fits the decimal(10,2) price column.
var maxPrice = decimal.New(1, 8)

// ValidateStruct runs v over in and reports tag failures as a *ValidationError keyed by JSON field name.
func ValidateStruct(v *validator.Validate, in interface{}) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate input: %w", err)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &ValidationError{Message: "Validation failed", Fields: fields}
}

// check validates in and additionally requires price to fit the stored precision.
func (s *ArticleService) check(in interface{}, price *decimal.Decimal) error {
	err := ValidateStruct(s.validate, in)
	var vErr *ValidationError
	switch {
	case err == nil:
	case errors.As(err, &vErr):
	default:
		return err
	}

	if msg := priceProblem(price); msg != "" {
		if vErr == nil {
			vErr = &ValidationError{Message: "Validation failed", Fields: map[string]string{}}
		}
		if _, ok := vErr.Fields["price"]; !ok {
			vErr.Fields["price"] = msg
		}
	}
	if vErr != nil {
		return vErr
	}
	return nil
}

func priceProblem(price *decimal.Decimal) string {
	switch {
	case price == nil:
		return ""
	case !price.Equal(price.Round(2)):
		return "Field 'price' must have at most 2 decimal places"
	case price.Abs().GreaterThanOrEqual(maxPrice):
		return "Field 'price' must be less than 100000000"
	}
	return ""
}

// publish never fails the caller: the change is already committed.
func (s *ArticleService) publish(eventType string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(eventType, payload); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}
