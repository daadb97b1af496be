package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lib/pq"

	"storefront-service/internal/domain"
)

// Predefined errors for store operations
var (
	ErrProductNotFound = errors.New("store: product not found")
	ErrUserNotFound    = errors.New("store: user not found")
	ErrInvalidReview   = errors.New("store: review violates a constraint")
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore implements the storer interfaces using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("store: Migrate failed: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const productColumns = `id, name, description, price, category, image_url, stock, featured, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner, p *domain.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.ImageURL,
		&p.Stock, &p.Featured, &p.Active, &p.CreatedAt, &p.UpdatedAt,
	)
}

// mapForeignKeyErr turns a dangling product_id into ErrProductNotFound.
func mapForeignKeyErr(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return ErrProductNotFound
	}
	return nil
}

// --- ProductStorer Implementation ---

func (s *PostgresStore) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO products (name, description, price, category, image_url, stock, featured, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + productColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		product.Name, product.Description, product.Price, product.Category,
		product.ImageURL, product.Stock, product.Featured, product.Active,
	)

	var created domain.Product
	if err := scanProduct(row, &created); err != nil {
		return nil, fmt.Errorf("store: CreateProduct failed to scan row: %w", err)
	}
	return &created, nil
}

// GetProductByID returns an active product. Inactive products are reported as not found.
func (s *PostgresStore) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND active = TRUE;`

	var product domain.Product
	if err := scanProduct(s.db.QueryRowContext(ctx, query, id), &product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to scan row: %w", err)
	}
	return &product, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, params ListProductsParams) ([]domain.Product, error) {
	queryArgs := []any{}
	whereClauses := []string{"active = TRUE"}
	argID := 1

	if params.Featured != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("featured = $%d", argID))
		queryArgs = append(queryArgs, *params.Featured)
		argID++
	}
	if params.Category != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("category = $%d", argID))
		queryArgs = append(queryArgs, string(*params.Category))
		argID++
	}
	if params.Search != nil && *params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("name ILIKE $%d", argID))
		queryArgs = append(queryArgs, "%"+*params.Search+"%")
		argID++
	}

	query := fmt.Sprintf("SELECT %s FROM products WHERE %s ORDER BY created_at DESC",
		productColumns, strings.Join(whereClauses, " AND "))
	if params.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		queryArgs = append(queryArgs, params.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("store: ListProducts failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListProducts iteration error: %w", err)
	}
	return products, nil
}

// UpdateProduct writes the non-nil fields of patch and bumps updated_at.
// Inactive products can be updated too, which is how they are restored.
func (s *PostgresStore) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*domain.Product, error) {
	var setClauses []string
	var queryArgs []any
	argID := 1

	set := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		queryArgs = append(queryArgs, value)
		argID++
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.Category != nil {
		set("category", string(*patch.Category))
	}
	if patch.ImageURL != nil {
		set("image_url", *patch.ImageURL)
	}
	if patch.Stock != nil {
		set("stock", *patch.Stock)
	}
	if patch.Featured != nil {
		set("featured", *patch.Featured)
	}
	if patch.Active != nil {
		set("active", *patch.Active)
	}
	setClauses = append(setClauses, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf("UPDATE products SET %s WHERE id = $%d RETURNING %s;",
		strings.Join(setClauses, ", "), argID, productColumns)
	queryArgs = append(queryArgs, id)

	var updated domain.Product
	if err := scanProduct(s.db.QueryRowContext(ctx, query, queryArgs...), &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: UpdateProduct failed to scan row: %w", err)
	}
	return &updated, nil
}

// DeleteProduct is a soft delete: the row stays and active becomes false.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id int64) error {
	query := `UPDATE products SET active = FALSE, updated_at = CURRENT_TIMESTAMP WHERE id = $1;`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to execute update: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// IncrementProductView bumps the view counter, creating it on first view.
func (s *PostgresStore) IncrementProductView(ctx context.Context, productID int64) error {
	query := `
		INSERT INTO product_views (product_id, view_count, last_viewed)
		VALUES ($1, 1, CURRENT_TIMESTAMP)
		ON CONFLICT (product_id)
		DO UPDATE SET view_count = product_views.view_count + 1, last_viewed = CURRENT_TIMESTAMP;
	`
	if _, err := s.db.ExecContext(ctx, query, productID); err != nil {
		if mapped := mapForeignKeyErr(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("store: IncrementProductView failed: %w", err)
	}
	return nil
}

// --- FeedbackStorer Implementation ---

func (s *PostgresStore) CreateFeedback(ctx context.Context, in domain.FeedbackInput) (*domain.Feedback, error) {
	query := `
		INSERT INTO feedback (name, email, subject, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, subject, message, created_at;
	`
	var fb domain.Feedback
	err := s.db.QueryRowContext(ctx, query, in.Name, in.Email, string(in.Subject), in.Message).Scan(
		&fb.ID, &fb.Name, &fb.Email, &fb.Subject, &fb.Message, &fb.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("store: CreateFeedback failed to scan row: %w", err)
	}
	return &fb, nil
}

func (s *PostgresStore) ListFeedback(ctx context.Context, limit int) ([]domain.Feedback, error) {
	query := `SELECT id, name, email, subject, message, created_at FROM feedback ORDER BY created_at DESC`
	var queryArgs []any
	if limit > 0 {
		query += " LIMIT $1"
		queryArgs = append(queryArgs, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("store: ListFeedback failed to query feedback: %w", err)
	}
	defer rows.Close()

	list := []domain.Feedback{}
	for rows.Next() {
		var fb domain.Feedback
		if err := rows.Scan(&fb.ID, &fb.Name, &fb.Email, &fb.Subject, &fb.Message, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: ListFeedback failed to scan feedback row: %w", err)
		}
		list = append(list, fb)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListFeedback iteration error: %w", err)
	}
	return list, nil
}

// --- ReviewStorer Implementation ---

func (s *PostgresStore) ListReviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	query := `
		SELECT id, user_id, product_id, rating, title, comment, verified, created_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC;
	`
	rows, err := s.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("store: ListReviews failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(&r.ID, &r.UserID, &r.ProductID, &r.Rating, &r.Title, &r.Comment, &r.Verified, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: ListReviews failed to scan review row: %w", err)
		}
		reviews = append(reviews, r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListReviews iteration error: %w", err)
	}
	return reviews, nil
}

func (s *PostgresStore) CreateReview(ctx context.Context, productID int64, in domain.ReviewInput) (*domain.Review, error) {
	query := `
		INSERT INTO reviews (user_id, product_id, rating, title, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, product_id, rating, title, comment, verified, created_at;
	`
	var r domain.Review
	err := s.db.QueryRowContext(ctx, query, in.UserID, productID, in.Rating, in.Title, in.Comment).Scan(
		&r.ID, &r.UserID, &r.ProductID, &r.Rating, &r.Title, &r.Comment, &r.Verified, &r.CreatedAt,
	)
	if err != nil {
		if mapped := mapForeignKeyErr(err); mapped != nil {
			return nil, mapped
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23514" { // check violation
			return nil, ErrInvalidReview
		}
		return nil, fmt.Errorf("store: CreateReview failed to scan row: %w", err)
	}
	return &r, nil
}

// GetRating averages the product's ratings to one decimal place. No reviews yields 0/0.
func (s *PostgresStore) GetRating(ctx context.Context, productID int64) (domain.Rating, error) {
	query := `SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM reviews WHERE product_id = $1;`

	var avg float64
	var total int
	if err := s.db.QueryRowContext(ctx, query, productID).Scan(&avg, &total); err != nil {
		return domain.Rating{}, fmt.Errorf("store: GetRating failed to scan row: %w", err)
	}
	return domain.Rating{AverageRating: math.Round(avg*10) / 10, TotalReviews: total}, nil
}

// --- UserStorer Implementation ---

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT id, username, email, password_hash, role, created_at FROM users WHERE email = $1;`

	var u domain.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("store: GetUserByEmail failed to scan row: %w", err)
	}
	return &u, nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
