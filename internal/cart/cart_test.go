package cart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/domain"
	"storefront-service/internal/localstore"
	"storefront-service/internal/logging"
)

func product(id int64, name, price string) domain.Product {
	return domain.Product{
		ID:        id,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Category:  domain.CategoryFashion,
		Stock:     50,
		Active:    true,
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("line-%d", n)
	})
}

func newManager(t *testing.T, s localstore.Storage) *Manager {
	t.Helper()
	return New(context.Background(), s, logging.Discard(), sequentialIDs())
}

func TestAddItem_AccumulatesSameProduct(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, localstore.NewMemory())
	shoe := product(1, "Red Shoe", "20.00")

	m.AddItem(ctx, shoe, 1)
	m.AddItem(ctx, shoe, 3)
	m.AddItem(ctx, shoe, 2)

	items := m.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 6, items[0].Quantity)
	assert.Equal(t, "line-1", items[0].ID)
	assert.Equal(t, 6, m.TotalItems())
}

func TestAddItem_DefaultsQuantityToOne(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, localstore.NewMemory())

	m.AddItem(ctx, product(1, "Red Shoe", "20.00"), 0)
	assert.Equal(t, 1, m.TotalItems())

	m.Add(ctx, product(1, "Red Shoe", "20.00"))
	assert.Equal(t, 2, m.TotalItems())
}

func TestAddItem_SnapshotIsNotLive(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, localstore.NewMemory())
	lamp := product(2, "Lamp", "15.00")

	m.AddItem(ctx, lamp, 1)
	lamp.Name = "Renamed Lamp"

	assert.Equal(t, "Lamp", m.Items()[0].Product.Name)
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	for _, q := range []int{0, -1} {
		t.Run(fmt.Sprintf("removes on %d", q), func(t *testing.T) {
			m := newManager(t, localstore.NewMemory())
			m.AddItem(ctx, product(1, "Red Shoe", "20.00"), 2)
			m.AddItem(ctx, product(2, "Blue Shoe", "10.00"), 1)

			m.UpdateQuantity(ctx, 1, q)
			items := m.Items()
			require.Len(t, items, 1)
			assert.Equal(t, int64(2), items[0].Product.ID)

			// Removing again is a no-op.
			m.UpdateQuantity(ctx, 1, q)
			assert.Len(t, m.Items(), 1)
		})
	}

	t.Run("sets verbatim without clamping", func(t *testing.T) {
		m := newManager(t, localstore.NewMemory())
		m.AddItem(ctx, product(1, "Red Shoe", "20.00"), 2)

		m.UpdateQuantity(ctx, 1, 500)
		assert.Equal(t, 500, m.Items()[0].Quantity)
	})

	t.Run("unknown product ignored", func(t *testing.T) {
		m := newManager(t, localstore.NewMemory())
		m.UpdateQuantity(ctx, 99, 3)
		assert.Empty(t, m.Items())
	})
}

func TestRemoveItemAndClear(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, localstore.NewMemory())
	m.AddItem(ctx, product(1, "Red Shoe", "20.00"), 1)
	m.AddItem(ctx, product(2, "Blue Shoe", "10.00"), 1)

	m.RemoveItem(ctx, 42)
	assert.Len(t, m.Items(), 2)

	m.RemoveItem(ctx, 1)
	assert.Len(t, m.Items(), 1)

	m.Clear(ctx)
	assert.Empty(t, m.Items())
	assert.Equal(t, 0, m.TotalItems())
	assert.True(t, m.TotalPrice().IsZero())
}

func TestTotalPrice(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, localstore.NewMemory())
	m.AddItem(ctx, product(1, "Red Shoe", "19.99"), 3)
	m.AddItem(ctx, product(2, "Blue Shoe", "0.10"), 1)

	assert.True(t, decimal.RequireFromString("60.07").Equal(m.TotalPrice()), m.TotalPrice().String())
}

func TestPersistence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := localstore.NewMemory()

	first := newManager(t, s)
	first.AddItem(ctx, product(3, "Scarf", "12.49"), 2)
	first.AddItem(ctx, product(1, "Red Shoe", "19.99"), 1)
	first.AddItem(ctx, product(2, "Blue Shoe", "9.99"), 4)
	first.UpdateQuantity(ctx, 1, 7)

	second := newManager(t, s)
	assert.Equal(t, first.Items(), second.Items())
	assert.Equal(t, first.TotalItems(), second.TotalItems())
	assert.True(t, first.TotalPrice().Equal(second.TotalPrice()))
}

func TestPersistence_SavesAfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	s := localstore.NewMemory()
	m := newManager(t, s)

	m.AddItem(ctx, product(1, "Red Shoe", "20.00"), 1)
	raw, err := s.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"quantity":1`)

	m.Clear(ctx)
	raw, err = s.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestLoad_CorruptFallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	s := localstore.NewMemory()
	require.NoError(t, s.Set(ctx, StorageKey, []byte("{not json")))

	var logs bytes.Buffer
	m := New(ctx, s, logging.NewWithWriter("test", "info", &logs))

	assert.Empty(t, m.Items())
	assert.Contains(t, logs.String(), "failed to load cart from storage")
}

type brokenStorage struct{}

func (brokenStorage) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk unavailable")
}
func (brokenStorage) Set(context.Context, string, []byte) error { return errors.New("disk full") }
func (brokenStorage) Delete(context.Context, string) error      { return errors.New("disk full") }

func TestStorageErrorsAreLoggedNotSurfaced(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	m := New(ctx, brokenStorage{}, logging.NewWithWriter("test", "info", &logs))

	m.AddItem(ctx, product(1, "Red Shoe", "20.00"), 2)

	assert.Equal(t, 2, m.TotalItems())
	assert.Contains(t, logs.String(), "failed to load cart from storage")
	assert.Contains(t, logs.String(), "failed to save cart to storage")
}

func TestLastWriterWins(t *testing.T) {
	ctx := context.Background()
	s := localstore.NewMemory()
	tabA := newManager(t, s)
	tabB := newManager(t, s)

	tabA.AddItem(ctx, product(1, "Red Shoe", "20.00"), 1)
	tabB.AddItem(ctx, product(2, "Blue Shoe", "10.00"), 1)

	tabA.Reload(ctx)
	items := tabA.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Product.ID)
}

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		requested int
		stock     int32
		want      int
	}{
		{requested: 3, stock: 10, want: 3},
		{requested: 0, stock: 10, want: 1},
		{requested: -4, stock: 10, want: 1},
		{requested: 25, stock: 10, want: 10},
		{requested: 2, stock: 0, want: 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampQuantity(tt.requested, tt.stock), "requested=%d stock=%d", tt.requested, tt.stock)
	}
}
