package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/domain"
	"storefront-service/internal/logging"
	"storefront-service/internal/validation"
)

const productJSON = `{"id":1,"name":"Red Shoe","description":"Comfy","price":"20.00","category":"Fashion",
"image_url":"https://img/1.jpg","stock":12,"featured":true,"active":true,
"created_at":"2024-05-01T10:00:00Z","updated_at":"2024-05-01T10:00:00Z"}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cfg := DefaultConfig(srv.URL)
	cfg.Timeout = 2 * time.Second
	return New(cfg, logging.Discard())
}

func TestListProducts(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/products", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("[" + productJSON + "]"))
	})

	products, err := c.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Red Shoe", products[0].Name)
	assert.Equal(t, "20", products[0].Price.String())
	assert.True(t, products[0].LowStock())
}

func TestListProducts_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>oops</html>`},
		{name: "unknown category", body: `[{"id":1,"name":"Toy","price":"3","category":"Toys","stock":1}]`},
		{name: "negative stock", body: `[{"id":1,"name":"Toy","price":"3","category":"Fashion","stock":-2}]`},
		{name: "missing id", body: `[{"name":"Toy","price":"3","category":"Fashion","stock":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.ListProducts(context.Background())
			assert.ErrorIs(t, err, ErrMalformedPayload)
		})
	}
}

func TestProducts_RejectsInactive(t *testing.T) {
	inactive := `{"id":7,"name":"Old Lamp","price":"15","category":"Home & Living","stock":3,"active":false}`

	t.Run("list", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("[" + productJSON + "," + inactive + "]"))
		})
		_, err := c.Featured(context.Background())
		assert.ErrorIs(t, err, ErrMalformedPayload)
		assert.ErrorContains(t, err, "product 7 is inactive")
	})

	t.Run("single", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(inactive))
		})
		_, err := c.GetProduct(context.Background(), 7)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestProductRails(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte("[" + productJSON + "]"))
	})
	ctx := context.Background()

	for _, fetch := range []func(context.Context) ([]domain.Product, error){c.Featured, c.Trending, c.Recommended} {
		products, err := fetch(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, int64(1), products[0].ID)
	}
	assert.Equal(t, []string{
		"/api/products/featured",
		"/api/products/trending",
		"/api/products/recommended",
	}, paths)
}

func TestSearch_EscapesQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/search", r.URL.Path)
		assert.Equal(t, "home & garden", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`[]`))
	})

	products, err := c.Search(context.Background(), "home & garden")
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestByCategory_EscapesPath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/category/Home%20&%20Living", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := c.ByCategory(context.Background(), domain.CategoryHomeLiving)
	require.NoError(t, err)
}

func TestGetProduct_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"store: product not found"}`))
	})

	_, err := c.GetProduct(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitFeedback(t *testing.T) {
	valid := domain.FeedbackInput{
		Name: "Ada", Email: "ada@example.com", Subject: domain.SubjectGeneral, Message: "Hello there, lovely shop!",
	}

	t.Run("invalid input never hits the network", func(t *testing.T) {
		var calls int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		})
		in := valid
		in.Email = "nope"

		_, err := c.SubmitFeedback(context.Background(), in)
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields(), "email")
		assert.Zero(t, atomic.LoadInt32(&calls))
	})

	t.Run("server field errors", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Invalid feedback data","fields":{"message":"must be at least 10 characters"}}`))
		})

		_, err := c.SubmitFeedback(context.Background(), valid)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "must be at least 10 characters", apiErr.Fields["message"])
		assert.Equal(t, "Invalid feedback data: message must be at least 10 characters", apiErr.Error())
	})

	t.Run("created", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var in domain.FeedbackInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, valid, in)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":5,"name":"Ada","email":"ada@example.com","subject":"general","message":"Hello there, lovely shop!","created_at":"2024-06-01T00:00:00Z"}`))
		})

		fb, err := c.SubmitFeedback(context.Background(), valid)
		require.NoError(t, err)
		assert.Equal(t, int64(5), fb.ID)
	})
}

func TestAdminLogin(t *testing.T) {
	creds := domain.AdminCredentials{Email: "admin@buyzzle.com", Password: "admin123"}

	t.Run("rejected", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
		})
		_, err := c.AdminLogin(context.Background(), creds)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("accepted", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/admin/login", r.URL.Path)
			_, _ = w.Write([]byte(`{"success":true,"user":{"id":1,"email":"admin@buyzzle.com","role":"admin"}}`))
		})
		user, err := c.AdminLogin(context.Background(), creds)
		require.NoError(t, err)
		assert.Equal(t, domain.AdminUser{ID: 1, Email: "admin@buyzzle.com", Role: "admin"}, user)
	})

	t.Run("user payload checked", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"success":true,"user":{"id":0}}`))
		})
		_, err := c.AdminLogin(context.Background(), creds)
		assert.ErrorIs(t, err, ErrMalformedPayload)
	})
}

func TestRatingAndTrackView(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/products/3/rating":
			_, _ = w.Write([]byte(`{"average_rating":4.3,"total_reviews":3}`))
		case "/api/products/3/view":
			assert.Equal(t, http.MethodPost, r.Method)
			_, _ = w.Write([]byte(`{"success":true}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	r, err := c.Rating(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, domain.Rating{AverageRating: 4.3, TotalReviews: 3}, r)
	assert.NoError(t, c.TrackView(context.Background(), 3))
}

func TestReviews(t *testing.T) {
	valid := domain.ReviewInput{Rating: 5, Title: "Great", Comment: "Fits perfectly"}

	t.Run("list", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/products/3/reviews", r.URL.Path)
			_, _ = w.Write([]byte(`[{"id":2,"product_id":3,"rating":4,"title":"Nice","comment":"Good value","verified":true,"created_at":"2024-06-02T00:00:00Z"}]`))
		})
		reviews, err := c.Reviews(context.Background(), 3)
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, "Nice", reviews[0].Title)
		assert.Equal(t, int32(4), reviews[0].Rating)
	})

	t.Run("add", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			var in domain.ReviewInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, valid, in)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":9,"product_id":3,"rating":5,"title":"Great","comment":"Fits perfectly","created_at":"2024-06-03T00:00:00Z"}`))
		})
		r, err := c.AddReview(context.Background(), 3, valid)
		require.NoError(t, err)
		assert.Equal(t, int64(9), r.ID)
	})

	t.Run("invalid rating never hits the network", func(t *testing.T) {
		var calls int32
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
		})
		in := valid
		in.Rating = 6
		_, err := c.AddReview(context.Background(), 3, in)
		var verr *validation.Error
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields(), "rating")
		assert.Zero(t, atomic.LoadInt32(&calls))
	})

	t.Run("unknown product", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"Product not found"}`))
		})
		_, err := c.Reviews(context.Background(), 404)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestListFeedback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/feedback", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":5,"name":"Ada","email":"ada@example.com","subject":"business","message":"Let's partner up!","created_at":"2024-06-01T00:00:00Z"}]`))
	})

	list, err := c.ListFeedback(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.SubjectBusiness, list[0].Subject)
	assert.Equal(t, "Ada", list[0].Name)
}

func TestCircuitBreaker_OpensOnServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to fetch products"}`))
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig(srv.URL)
	cfg.Breaker.MinRequests = 2
	c := New(cfg, logging.Discard())

	for i := 0; i < 2; i++ {
		_, err := c.ListProducts(context.Background())
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Failed to fetch products", apiErr.Message)
	}

	_, err := c.ListProducts(context.Background())
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, gobreaker.StateOpen, c.State())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
