package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"storefront-service/internal/domain"
	"storefront-service/internal/validation"
)

// ListProducts fetches the active catalog.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return c.products(ctx, "/api/products")
}

// Featured fetches the featured products.
func (c *Client) Featured(ctx context.Context) ([]domain.Product, error) {
	return c.products(ctx, "/api/products/featured")
}

// Trending fetches the trending products.
func (c *Client) Trending(ctx context.Context) ([]domain.Product, error) {
	return c.products(ctx, "/api/products/trending")
}

// Recommended fetches the recommended products.
func (c *Client) Recommended(ctx context.Context) ([]domain.Product, error) {
	return c.products(ctx, "/api/products/recommended")
}

// Search asks the API for products whose name contains q.
func (c *Client) Search(ctx context.Context, q string) ([]domain.Product, error) {
	return c.products(ctx, "/api/products/search?q="+url.QueryEscape(q))
}

// ByCategory fetches the active products of one category.
func (c *Client) ByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	return c.products(ctx, "/api/products/category/"+url.PathEscape(string(category)))
}

// GetProduct fetches one product; ErrNotFound when it is missing or inactive.
func (c *Client) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	if err := c.do(ctx, http.MethodGet, productPath(id), nil, &p); err != nil {
		return domain.Product{}, notFound(err)
	}
	if err := checkPayload(p); err != nil {
		return domain.Product{}, err
	}
	if !p.Active {
		return domain.Product{}, fmt.Errorf("%w: product %d is inactive", ErrNotFound, id)
	}
	return p, nil
}

// TrackView records that the product detail page was opened.
func (c *Client) TrackView(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, productPath(id)+"/view", nil, nil)
}

// Reviews fetches the reviews of a product, newest first.
func (c *Client) Reviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	var reviews []domain.Review
	if err := c.do(ctx, http.MethodGet, productPath(productID)+"/reviews", nil, &reviews); err != nil {
		return nil, notFound(err)
	}
	return reviews, nil
}

// AddReview posts a review. Invalid input is rejected before any request is made.
func (c *Client) AddReview(ctx context.Context, productID int64, in domain.ReviewInput) (domain.Review, error) {
	if err := validation.Validate(in); err != nil {
		return domain.Review{}, err
	}
	var r domain.Review
	if err := c.do(ctx, http.MethodPost, productPath(productID)+"/reviews", in, &r); err != nil {
		return domain.Review{}, notFound(err)
	}
	return r, nil
}

// Rating fetches the rating summary of a product.
func (c *Client) Rating(ctx context.Context, productID int64) (domain.Rating, error) {
	var r domain.Rating
	if err := c.do(ctx, http.MethodGet, productPath(productID)+"/rating", nil, &r); err != nil {
		return domain.Rating{}, notFound(err)
	}
	return r, nil
}

func (c *Client) products(ctx context.Context, path string) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	for i := range products {
		if err := checkPayload(products[i]); err != nil {
			return nil, fmt.Errorf("product at index %d: %w", i, err)
		}
		if !products[i].Active {
			return nil, fmt.Errorf("product at index %d: %w: product %d is inactive", i, ErrMalformedPayload, products[i].ID)
		}
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func productPath(id int64) string {
	return "/api/products/" + strconv.FormatInt(id, 10)
}

// checkPayload validates a decoded response value against its struct tags.
func checkPayload(v any) error {
	if err := validation.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}

func notFound(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
	}
	return err
}
