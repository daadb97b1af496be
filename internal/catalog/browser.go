package catalog

import (
	"sync"

	"storefront-service/internal/domain"
)

// Store holds the latest catalog snapshot fetched from the API.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
}

// Replace swaps in a new snapshot. The slice is copied.
func (s *Store) Replace(products []domain.Product) {
	cp := make([]domain.Product, len(products))
	copy(cp, products)
	s.mu.Lock()
	s.products = cp
	s.mu.Unlock()
}

// Products returns a copy of the snapshot.
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Find looks a product up by id.
func (s *Store) Find(id int64) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Browser is the stateful side of the products page. Changing the search, the category
// or the sort key sends the shopper back to page 1.
type Browser struct {
	store *Store
	query Query
}

// NewBrowser starts on page 1 of the featured ordering over store.
func NewBrowser(store *Store, pageSize int) *Browser {
	return &Browser{
		store: store,
		query: Query{Category: domain.CategoryAll, Sort: SortFeatured, Page: 1, PageSize: pageSize},
	}
}

func (b *Browser) SetSearch(search string) {
	b.query.Search = search
	b.query.Page = 1
}

func (b *Browser) SetCategory(category string) {
	b.query.Category = category
	b.query.Page = 1
}

func (b *Browser) SetSort(key SortKey) {
	b.query.Sort = key
	b.query.Page = 1
}

// SetPage moves to page. Values below 1 are treated as 1.
func (b *Browser) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	b.query.Page = page
}

// Query returns the current knobs.
func (b *Browser) Query() Query {
	return b.query
}

// Current evaluates the pipeline over the latest snapshot.
func (b *Browser) Current() Result {
	return Apply(b.store.Products(), b.query)
}
