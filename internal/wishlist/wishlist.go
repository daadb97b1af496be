// Package wishlist keeps the products a shopper saved for later.
package wishlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"storefront-service/internal/domain"
	"storefront-service/internal/localstore"
	"storefront-service/internal/notice"
)

// StorageKey is where the serialized product list lives.
const StorageKey = "buyzzle-wishlist"

// Manager owns the saved products of one client session. Each product appears at most once.
type Manager struct {
	mu       sync.Mutex
	storage  localstore.Storage
	notifier notice.Notifier
	log      *slog.Logger
	items    []domain.Product
}

// New builds a manager and loads the saved wishlist. Missing or corrupt data starts empty.
func New(ctx context.Context, storage localstore.Storage, notifier notice.Notifier, logger *slog.Logger) *Manager {
	m := &Manager{storage: storage, notifier: notifier, log: logger}
	m.Reload(ctx)
	return m
}

// Reload replaces the in-memory list with whatever storage holds now.
func (m *Manager) Reload(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var items []domain.Product
	if err := localstore.LoadJSON(ctx, m.storage, StorageKey, &items); err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			m.log.ErrorContext(ctx, "failed to load wishlist from storage", slog.String("error", err.Error()))
		}
		items = nil
	}
	m.items = items
}

// AddItem saves p unless it is already there; either way the shopper is told what happened.
func (m *Manager) AddItem(ctx context.Context, p domain.Product) {
	m.mu.Lock()
	if m.indexOf(p.ID) >= 0 {
		m.mu.Unlock()
		m.notifier.Notify(ctx, notice.Problem("Already in wishlist",
			fmt.Sprintf("%s is already in your wishlist.", p.Name)))
		return
	}
	m.items = append(m.items, p)
	m.save(ctx)
	m.mu.Unlock()

	m.notifier.Notify(ctx, notice.Info("Added to wishlist",
		fmt.Sprintf("%s has been added to your wishlist.", p.Name)))
}

// RemoveItem drops productID and names the removed product in a notice.
// Unknown products are ignored silently.
func (m *Manager) RemoveItem(ctx context.Context, productID int64) {
	m.mu.Lock()
	i := m.indexOf(productID)
	if i < 0 {
		m.mu.Unlock()
		return
	}
	removed := m.items[i]
	m.items = append(m.items[:i], m.items[i+1:]...)
	m.save(ctx)
	m.mu.Unlock()

	m.notifier.Notify(ctx, notice.Info("Removed from wishlist",
		fmt.Sprintf("%s has been removed from your wishlist.", removed.Name)))
}

// IsInWishlist reports whether productID is saved.
func (m *Manager) IsInWishlist(productID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexOf(productID) >= 0
}

// Items returns a copy of the saved products in the order they were added.
func (m *Manager) Items() []domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Product, len(m.items))
	copy(out, m.items)
	return out
}

// TotalItems is the number of saved products.
func (m *Manager) TotalItems() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Manager) indexOf(productID int64) int {
	for i := range m.items {
		if m.items[i].ID == productID {
			return i
		}
	}
	return -1
}

// save must be called with mu held.
func (m *Manager) save(ctx context.Context) {
	items := m.items
	if items == nil {
		items = []domain.Product{}
	}
	if err := localstore.SaveJSON(ctx, m.storage, StorageKey, items); err != nil {
		m.log.ErrorContext(ctx, "failed to save wishlist to storage", slog.String("error", err.Error()))
	}
}
