package store

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront-service/internal/domain"
)

// ListProductsParams filters the active catalog. Nil fields do not filter.
// Results are always newest first.
type ListProductsParams struct {
	Featured *bool
	Category *domain.Category
	Search   *string // case-insensitive match on name
	Limit    int     // 0 means no limit
}

// ProductPatch is a partial product update. Only non-nil fields are written.
type ProductPatch struct {
	Name        *string          `json:"name" validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Category    *domain.Category `json:"category" validate:"omitempty,category"`
	ImageURL    *string          `json:"image_url"`
	Stock       *int32           `json:"stock" validate:"omitempty,gte=0"`
	Featured    *bool            `json:"featured"`
	Active      *bool            `json:"active"`
}

// ProductStorer defines the database operations for products.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	IncrementProductView(ctx context.Context, productID int64) error
}

// FeedbackStorer defines the database operations for contact form messages.
type FeedbackStorer interface {
	CreateFeedback(ctx context.Context, in domain.FeedbackInput) (*domain.Feedback, error)
	ListFeedback(ctx context.Context, limit int) ([]domain.Feedback, error) // newest first; 0 means all
}

// ReviewStorer defines the database operations for product reviews.
type ReviewStorer interface {
	ListReviews(ctx context.Context, productID int64) ([]domain.Review, error)
	CreateReview(ctx context.Context, productID int64, in domain.ReviewInput) (*domain.Review, error)
	GetRating(ctx context.Context, productID int64) (domain.Rating, error)
}

// UserStorer defines the user lookups needed for admin login.
type UserStorer interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}
