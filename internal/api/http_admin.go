package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"storefront-service/internal/domain"
	"storefront-service/internal/store"
	"storefront-service/internal/validation"
)

// Dashboard figures nothing in the system records yet.
const (
	demoTotalOrders = 1429
	demoActiveUsers = 3892
)

var (
	demoTotalRevenue = decimal.NewFromInt(94521)
	demoSalesData    = []int{12000, 19000, 15000, 25000, 22000, 30000}
)

// demoAdminID is the user id handed out for the configured admin account.
const demoAdminID = 1

// --- Admin Handlers ---

// AdminLogin accepts the configured admin account, or any admin user whose bcrypt hash matches.
func (h *HTTPHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.AdminCredentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := validation.Validate(creds); err != nil {
		respondWithValidationError(w, "Invalid login data", err)
		return
	}

	if h.matchesConfiguredAdmin(creds) {
		respondWithJSON(w, http.StatusOK, domain.LoginResult{
			Success: true,
			User:    domain.AdminUser{ID: demoAdminID, Email: h.admin.Email, Role: domain.RoleAdmin},
		})
		return
	}

	user, err := h.userStore.GetUserByEmail(r.Context(), creds.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger(r).ErrorContext(r.Context(), "admin login lookup failed", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if user.Role != domain.RoleAdmin || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	respondWithJSON(w, http.StatusOK, domain.LoginResult{
		Success: true,
		User:    domain.AdminUser{ID: user.ID, Email: user.Email, Role: user.Role},
	})
}

func (h *HTTPHandler) matchesConfiguredAdmin(creds domain.AdminCredentials) bool {
	if h.admin.Email == "" || h.admin.Password == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(creds.Email), []byte(h.admin.Email)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(creds.Password), []byte(h.admin.Password)) == 1
	return emailOK && passOK
}

func (h *HTTPHandler) AdminStats(w http.ResponseWriter, r *http.Request) {
	products, err := h.productStore.ListProducts(r.Context(), store.ListProductsParams{})
	if err != nil {
		h.logger(r).ErrorContext(r.Context(), "admin stats product query failed", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch admin stats")
		return
	}
	recent, err := h.feedbackStore.ListFeedback(r.Context(), h.catalog.RecentFeedbackMax)
	if err != nil {
		h.logger(r).ErrorContext(r.Context(), "admin stats feedback query failed", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch admin stats")
		return
	}
	respondWithJSON(w, http.StatusOK, buildAdminStats(products, recent))
}

// buildAdminStats counts products per category and those running low on stock.
func buildAdminStats(products []domain.Product, recent []domain.Feedback) domain.AdminStats {
	stats := domain.AdminStats{
		TotalProducts:  len(products),
		TotalOrders:    demoTotalOrders,
		TotalRevenue:   demoTotalRevenue,
		ActiveUsers:    demoActiveUsers,
		CategoryStats:  make(map[domain.Category]int, len(domain.Categories)),
		SalesData:      append([]int(nil), demoSalesData...),
		RecentFeedback: recent,
	}
	if stats.RecentFeedback == nil {
		stats.RecentFeedback = []domain.Feedback{}
	}
	for _, c := range domain.Categories {
		stats.CategoryStats[c] = 0
	}
	for _, p := range products {
		if p.LowStock() {
			stats.LowStockProducts++
		}
		if p.Category.Valid() {
			stats.CategoryStats[p.Category]++
		}
	}
	return stats
}

// --- Feedback Handlers ---

func (h *HTTPHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	list, err := h.feedbackStore.ListFeedback(r.Context(), 0)
	if err != nil {
		h.logger(r).ErrorContext(r.Context(), "ListFeedback store operation failed", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch feedback")
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

func (h *HTTPHandler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	var input domain.FeedbackInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := validation.Validate(input); err != nil {
		respondWithValidationError(w, "Invalid feedback data", err)
		return
	}

	fb, err := h.feedbackStore.CreateFeedback(r.Context(), input)
	if err != nil {
		h.logger(r).ErrorContext(r.Context(), "CreateFeedback store operation failed", slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to submit feedback")
		return
	}
	respondWithJSON(w, http.StatusCreated, fb)
}

// --- Review Handlers ---

func (h *HTTPHandler) ListReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	reviews, err := h.reviewStore.ListReviews(r.Context(), productID)
	if err != nil {
		h.logger(r).ErrorContext(r.Context(), "ListReviews store operation failed",
			slog.Int64("product_id", productID), slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch reviews")
		return
	}
	respondWithJSON(w, http.StatusOK, reviews)
}

func (h *HTTPHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var input domain.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := validation.Validate(input); err != nil {
		respondWithValidationError(w, "Invalid review data", err)
		return
	}

	review, err := h.reviewStore.CreateReview(r.Context(), productID, input)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, store.ErrInvalidReview):
			respondWithError(w, http.StatusBadRequest, "Invalid review data")
		default:
			h.logger(r).ErrorContext(r.Context(), "CreateReview store operation failed",
				slog.Int64("product_id", productID), slog.String("error", err.Error()))
			respondWithError(w, http.StatusInternalServerError, "Failed to add review")
		}
		return
	}
	respondWithJSON(w, http.StatusCreated, review)
}

func (h *HTTPHandler) GetRating(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(r)
	if !ok {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}
	rating, err := h.reviewStore.GetRating(r.Context(), productID)
	if err != nil {
		h.logger(r).ErrorContext(r.Context(), "GetRating store operation failed",
			slog.Int64("product_id", productID), slog.String("error", err.Error()))
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch rating")
		return
	}
	respondWithJSON(w, http.StatusOK, rating)
}
