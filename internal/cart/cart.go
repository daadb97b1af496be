// Package cart keeps the shopper's cart: one line per product, persisted to local storage
// after every change.
package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"storefront-service/internal/domain"
	"storefront-service/internal/localstore"
)

// StorageKey is where the serialized line list lives.
const StorageKey = "buyzzle-cart"

// Line is one product in the cart. Product is a snapshot taken when the line was created;
// later catalog edits do not reach it.
type Line struct {
	ID       string         `json:"id"`
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Subtotal is unit price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Manager owns the cart lines of one client session.
// Two managers over the same storage are not coordinated; whichever saves last wins.
type Manager struct {
	mu      sync.Mutex
	storage localstore.Storage
	log     *slog.Logger
	newID   func() string
	lines   []Line
}

// Option customizes a Manager.
type Option func(*Manager)

// WithIDGenerator replaces the line id generator (random UUIDs by default).
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) { m.newID = fn }
}

// New builds a manager and loads any saved cart from storage.
// A missing or unreadable cart starts empty; the problem is logged, never returned.
func New(ctx context.Context, storage localstore.Storage, logger *slog.Logger, opts ...Option) *Manager {
	m := &Manager{
		storage: storage,
		log:     logger,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Reload(ctx)
	return m
}

// Reload replaces the in-memory lines with whatever storage holds now.
func (m *Manager) Reload(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lines []Line
	if err := localstore.LoadJSON(ctx, m.storage, StorageKey, &lines); err != nil {
		if !errors.Is(err, localstore.ErrNotFound) {
			m.log.ErrorContext(ctx, "failed to load cart from storage", slog.String("error", err.Error()))
		}
		lines = nil
	}
	m.lines = lines
}

// AddItem puts quantity units of p in the cart. If p is already there its quantity grows;
// otherwise a new line with a fresh id is appended. A quantity below 1 counts as 1.
func (m *Manager) AddItem(ctx context.Context, p domain.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexOf(p.ID); i >= 0 {
		m.lines[i].Quantity += quantity
	} else {
		m.lines = append(m.lines, Line{ID: m.newID(), Product: p, Quantity: quantity})
	}
	m.save(ctx)
}

// Add puts one unit of p in the cart.
func (m *Manager) Add(ctx context.Context, p domain.Product) {
	m.AddItem(ctx, p, 1)
}

// RemoveItem drops the line for productID. Unknown products are ignored.
func (m *Manager) RemoveItem(ctx context.Context, productID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remove(ctx, productID)
}

// UpdateQuantity sets the line's quantity as given; zero or less removes the line.
// No stock limit is applied here, see ClampQuantity.
func (m *Manager) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if quantity <= 0 {
		m.remove(ctx, productID)
		return
	}
	if i := m.indexOf(productID); i >= 0 {
		m.lines[i].Quantity = quantity
		m.save(ctx)
	}
}

// Clear empties the cart.
func (m *Manager) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = nil
	m.save(ctx)
}

// Items returns a copy of the lines in insertion order.
func (m *Manager) Items() []Line {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Line, len(m.lines))
	copy(out, m.lines)
	return out
}

// TotalItems is the sum of all quantities.
func (m *Manager) TotalItems() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, l := range m.lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice is the sum of every line subtotal.
func (m *Manager) TotalPrice() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := decimal.Zero
	for _, l := range m.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Summary prices the cart for checkout.
func (m *Manager) Summary() Summary {
	return Summarize(m.TotalPrice(), m.TotalItems())
}

func (m *Manager) remove(ctx context.Context, productID int64) {
	i := m.indexOf(productID)
	if i < 0 {
		return
	}
	m.lines = append(m.lines[:i], m.lines[i+1:]...)
	m.save(ctx)
}

func (m *Manager) indexOf(productID int64) int {
	for i := range m.lines {
		if m.lines[i].Product.ID == productID {
			return i
		}
	}
	return -1
}

// save must be called with mu held.
func (m *Manager) save(ctx context.Context) {
	lines := m.lines
	if lines == nil {
		lines = []Line{}
	}
	if err := localstore.SaveJSON(ctx, m.storage, StorageKey, lines); err != nil {
		m.log.ErrorContext(ctx, "failed to save cart to storage", slog.String("error", err.Error()))
	}
}

// ClampQuantity fits a requested quantity into [1, stock] for the quantity picker.
// Out-of-stock products yield 0, which UpdateQuantity treats as removal.
func ClampQuantity(requested int, stock int32) int {
	if stock <= 0 {
		return 0
	}
	if requested < 1 {
		return 1
	}
	if requested > int(stock) {
		return int(stock)
	}
	return requested
}
