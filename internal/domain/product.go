package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed storefront departments.
type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryFashion     Category = "Fashion"
	CategoryHomeLiving  Category = "Home & Living"
	CategorySports      Category = "Sports & Fitness"
)

// CategoryAll is the selector value that disables category filtering.
const CategoryAll = "all"

// Categories lists every department in display order.
var Categories = []Category{CategoryElectronics, CategoryFashion, CategoryHomeLiving, CategorySports}

// Valid reports whether c is one of the known departments.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// LowStockThreshold is the stock level under which a product is flagged as running out.
const LowStockThreshold = 20

// Product represents a product in the catalog.
// Price is a decimal and is serialized as a JSON string so currency amounts never pass through a float.
type Product struct {
	ID          int64           `json:"id" validate:"required,gt=0"`
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Category    Category        `json:"category" validate:"required,category"`
	ImageURL    string          `json:"image_url"`
	Stock       int32           `json:"stock" validate:"gte=0"`
	Featured    bool            `json:"featured"`
	Active      bool            `json:"active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// LowStock reports whether fewer than LowStockThreshold units remain.
func (p Product) LowStock() bool {
	return p.Stock < LowStockThreshold
}

// OutOfStock reports whether no units remain.
func (p Product) OutOfStock() bool {
	return p.Stock <= 0
}

// Matches reports whether the lowercased needle appears in the name, description or category.
func (p Product) Matches(needle string) bool {
	return strings.Contains(strings.ToLower(p.Name), needle) ||
		strings.Contains(strings.ToLower(p.Description), needle) ||
		strings.Contains(strings.ToLower(string(p.Category)), needle)
}

// ProductView counts how often a product detail page was opened.
type ProductView struct {
	ProductID  int64     `json:"product_id"`
	ViewCount  int64     `json:"view_count"`
	LastViewed time.Time `json:"last_viewed"`
}
