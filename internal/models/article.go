package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, e.g. 19.99 rather than "19.99".
	decimal.MarshalJSONWithoutQuotes = true
}

// Article is a single inventory item identified by its EAN barcode.
type Article struct {
	ID          int64            `json:"id" gorm:"primaryKey;autoIncrement"`
	EANCode     string           `json:"ean_code" gorm:"column:ean_code;type:varchar(13);uniqueIndex;not null"`
	Name        string           `json:"name" gorm:"type:varchar(255);not null"`
	Description *string          `json:"description" gorm:"type:text"`
	Quantity    int              `json:"quantity" gorm:"not null;default:0"`
	Price       *decimal.Decimal `json:"price" gorm:"type:decimal(10,2)"`
	CreatedAt   time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName pins the table name regardless of naming strategy.
func (Article) TableName() string {
	return "articles"
}

// ArticleCreate is the request body for creating an article.
type ArticleCreate struct {
	EANCode     string           `json:"ean_code" validate:"required,min=1,max=13"`
	Name        string           `json:"name" validate:"required,min=1,max=255"`
	Description *string          `json:"description"`
	Quantity    int              `json:"quantity" validate:"gte=0"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
}

// ArticleUpdate is a sparse set of changes; nil fields are left untouched.
type ArticleUpdate struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string          `json:"description"`
	Quantity    *int             `json:"quantity" validate:"omitempty,gte=0"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
}

// IsEmpty reports whether no field was provided.
func (u ArticleUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Quantity == nil && u.Price == nil
}
