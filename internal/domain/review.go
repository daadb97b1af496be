package domain

import "time"

// Review is a shopper's rating of a product.
type Review struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	ProductID int64     `json:"product_id"`
	Rating    int32     `json:"rating"`
	Title     string    `json:"title"`
	Comment   string    `json:"comment"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// Rating summarizes the reviews of one product.
type Rating struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// ReviewInput is the payload for adding a review.
type ReviewInput struct {
	UserID  *int64 `json:"user_id" validate:"omitempty,gt=0"`
	Rating  int32  `json:"rating" validate:"required,min=1,max=5"`
	Title   string `json:"title" validate:"required,max=255"`
	Comment string `json:"comment" validate:"required"`
}
