package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"storefront-service/internal/catalog"
	"storefront-service/internal/config"
	"storefront-service/internal/domain"
	"storefront-service/internal/logging"
	"storefront-service/internal/store"
	"storefront-service/internal/validation"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Stores groups the persistence dependencies of the handlers.
type Stores struct {
	Products store.ProductStorer
	Feedback store.FeedbackStorer
	Reviews  store.ReviewStorer
	Users    store.UserStorer
	Health   Pinger
}

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	productStore  store.ProductStorer
	feedbackStore store.FeedbackStorer
	reviewStore   store.ReviewStorer
	userStore     store.UserStorer
	health        Pinger
	admin         config.AdminConfig
	catalog       config.CatalogConfig
	writeLimit    func(http.Handler) http.Handler
	log           *slog.Logger
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(stores Stores, admin config.AdminConfig, catalogCfg config.CatalogConfig, logger *slog.Logger) *HTTPHandler {
	return &HTTPHandler{
		productStore:  stores.Products,
		feedbackStore: stores.Feedback,
		reviewStore:   stores.Reviews,
		userStore:     stores.Users,
		health:        stores.Health,
		admin:         admin,
		catalog:       catalogCfg,
		writeLimit:    func(next http.Handler) http.Handler { return next },
		log:           logger,
	}
}

// LimitPublicWrites puts mw in front of the anonymous write routes: feedback and admin login.
func (h *HTTPHandler) LimitPublicWrites(mw func(http.Handler) http.Handler) {
	h.writeLimit = mw
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondWithValidationError renders per-field messages when err came from the validator.
func respondWithValidationError(w http.ResponseWriter, message string, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: message, Fields: verr.Fields()})
		return
	}
	respondWithError(w, http.StatusBadRequest, message+": "+err.Error())
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

func (h *HTTPHandler) logger(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context(), h.log)
}

func productIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// --- Product Handlers ---

// ProductCreateInput defines the expected input for creating a product.
type ProductCreateInput struct {
	Name        string           `json:"name" validate:"required,max=255"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Category    domain.Category  `json:"category" validate:"required,category"`
	ImageURL    string           `json:"image_url" validate:"omitempty,url,max=2048"`
	Stock       *int32           `json:"stock" validate:"omitempty,gte=0"`
	Featured    bool             `json:"featured"`
	Active      *bool            `json:"active"` // defaults to true
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input ProductCreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := validation.Validate(input); err != nil {
		respondWithValidationError(w, "Invalid product data", err)
		return
	}

	product := &domain.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       *input.Price,
		Category:    input.Category,
		ImageURL:    input.ImageURL,
		Featured:    input.Featured,
		Active:      true,
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Active != nil {
		product.Active = *input.Active
	}

	created, err := h.productStore.CreateProduct(r.Context(), product)
	if err != nil {
		h.logger(r).ErrorContext(r.Context(), "CreateProduct store operation failed", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// listProducts runs a product query and answers with a JSON array.
func (h *HTTPHandler) listProducts(w http.ResponseWriter, r *http.Request, params store.ListProductsParams, failure string) {
	products, err := h.productStore.ListProducts(r.Context(), params)
	if err != nil {
		h.logger(r).ErrorContext(r.Context(), "ListProducts store operation failed", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, failure)
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	h.listProducts(w, r, store.ListProductsParams{}, "Failed to fetch products")
}

// FeaturedProducts also serves /trending: trending is the featured list until view data drives it.
func (h *HTTPHandler) FeaturedProducts(w http.ResponseWriter, r *http.Request) {
	featured := true
	h.listProducts(w, r, store.ListProductsParams{Featured: &featured}, "Failed to fetch featured products")
}

// RecommendedProducts returns the newest products.
func (h *HTTPHandler) RecommendedProducts(w http.ResponseWriter, r *http.Request) {
	h.listProducts(w, r, store.ListProductsParams{Limit: h.catalog.RecommendedLimit}, "Failed to fetch recommended products")
}

func (h *HTTPHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondWithError(w, http.StatusBadRequest, "Search query is required")
		return
	}
	h.listProducts(w, r, store.ListProductsParams{Search: &q}, "Failed to search products")
}

func (h *HTTPHandler) ProductsByCategory(w http.ResponseWriter, r *http.Request) {
	raw, err := url.PathUnescape(chi.URLParam(r, "category"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category")
		return
	}
	category := domain.Category(raw)
	if !category.Valid() {
		respondWithError(w, http.StatusBadRequest, "Invalid category")
		return
	}
	h.listProducts(w, r, store.ListProductsParams{Category: &category}, "Failed to fetch products by category")
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.productStore.GetProductByID(r.Context(), productID)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger(r).ErrorContext(r.Context(), "GetProductByID store operation failed",
			slog.Int64("product_id", productID), slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch product")
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

// UpdateProduct applies a partial update; absent fields keep their value.
func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var patch store.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := validation.Validate(patch); err != nil {
		respondWithValidationError(w, "Invalid product data", err)
		return
	}

	updated, err := h.productStore.UpdateProduct(r.Context(), productID, patch)
	if err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger(r).ErrorContext(r.Context(), "UpdateProduct store operation failed",
			slog.Int64("product_id", productID), slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.productStore.DeleteProduct(r.Context(), productID); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger(r).ErrorContext(r.Context(), "DeleteProduct store operation failed",
			slog.Int64("product_id", productID), slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

func (h *HTTPHandler) TrackProductView(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	if err := h.productStore.IncrementProductView(r.Context(), productID); err != nil {
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger(r).ErrorContext(r.Context(), "product view tracking failed",
			slog.Int64("product_id", productID), slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to track product view")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// BrowseCatalog runs search, category, sort and pagination over the active catalog.
func (h *HTTPHandler) BrowseCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := strconv.Atoi(q.Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	category := q.Get("category")
	if category == "" {
		category = domain.CategoryAll
	}

	products, err := h.productStore.ListProducts(r.Context(), store.ListProductsParams{})
	if err != nil {
		h.logger(r).ErrorContext(r.Context(), "ListProducts store operation failed", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	respondWithJSON(w, http.StatusOK, catalog.Apply(products, catalog.Query{
		Search:   q.Get("search"),
		Category: category,
		Sort:     catalog.ParseSortKey(q.Get("sort")),
		Page:     page,
		PageSize: h.catalog.PageSize,
	}))
}

// --- Health ---

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if h.health != nil {
		if err := h.health.Ping(ctx); err != nil {
			dbStatus = "unhealthy"
			h.logger(r).WarnContext(r.Context(), "health check DB ping failed", slog.String("error", err.Error()))
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  dbStatus,
	})
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", h.HealthCheck)
		r.Get("/catalog", h.BrowseCatalog)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Post("/", h.CreateProduct)
			// Static paths before {productId}.
			r.Get("/featured", h.FeaturedProducts)
			r.Get("/trending", h.FeaturedProducts)
			r.Get("/recommended", h.RecommendedProducts)
			r.Get("/search", h.SearchProducts)
			r.Get("/category/{category}", h.ProductsByCategory)

			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", h.GetProductByID)
				r.Put("/", h.UpdateProduct)
				r.Delete("/", h.DeleteProduct)
				r.Post("/view", h.TrackProductView)
				r.Get("/reviews", h.ListReviews)
				r.Post("/reviews", h.AddReview)
				r.Get("/rating", h.GetRating)
			})
		})

		r.Get("/feedback", h.ListFeedback)
		r.With(h.writeLimit).Post("/feedback", h.CreateFeedback)

		r.With(h.writeLimit).Post("/admin/login", h.AdminLogin)
		r.Get("/admin/stats", h.AdminStats)
	})
}
