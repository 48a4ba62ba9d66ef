package cart

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
	"github.com/ariefcatur/go-rental-booking.git/internal/catalog"
)

type fakeCatalog struct {
	assets   map[string]*catalog.Asset
	services map[string]*catalog.Service
}

func (f *fakeCatalog) GetAsset(_ context.Context, id string) (*catalog.Asset, error) {
	a, ok := f.assets[id]
	if !ok {
		return nil, apperr.NotFound("ASSET_NOT_FOUND", "asset tidak ditemukan")
	}
	cp := *a
	return &cp, nil
}

func (f *fakeCatalog) GetService(_ context.Context, id string) (*catalog.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, apperr.NotFound("SERVICE_NOT_FOUND", "jasa tidak ditemukan")
	}
	cp := *s
	return &cp, nil
}

func (f *fakeCatalog) ListAssets(context.Context) ([]catalog.Asset, error)     { return nil, nil }
func (f *fakeCatalog) ListServices(context.Context) ([]catalog.Service, error) { return nil, nil }

type fakeCartStore struct {
	mu    sync.Mutex
	lines map[string]*Line
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{lines: map[string]*Line{}}
}

func (f *fakeCartStore) ListByUser(_ context.Context, userID string) ([]Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Line
	for _, l := range f.lines {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeCartStore) Get(_ context.Context, id string) (*Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.lines[id]
	if !ok {
		return nil, apperr.NotFound("CART_LINE_NOT_FOUND", "item keranjang tidak ditemukan")
	}
	cp := *l
	return &cp, nil
}

func (f *fakeCartStore) Find(_ context.Context, userID string, t catalog.ItemType, itemID string) (*Line, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.lines {
		if l.UserID == userID && l.ItemType == t && l.ItemID() == itemID {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeCartStore) Insert(_ context.Context, l *Line) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *l
	f.lines[l.ID] = &cp
	return nil
}

func (f *fakeCartStore) UpdateQty(_ context.Context, id string, qty int, price int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.lines[id]
	l.Qty, l.Price = qty, price
	return nil
}

func (f *fakeCartStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.lines, id)
	return nil
}

func (f *fakeCartStore) ClearUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, l := range f.lines {
		if l.UserID == userID {
			delete(f.lines, id)
		}
	}
	return nil
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		assets: map[string]*catalog.Asset{
			"kamera": {ID: "kamera", Code: "CAM-01", Name: "Kamera", DailyRate: 100000, Stock: 3, Status: catalog.AssetTersedia},
			"rusak":  {ID: "rusak", Code: "CAM-02", Name: "Kamera Rusak", DailyRate: 100000, Stock: 3, Status: "TIDAK_TERSEDIA"},
		},
		services: map[string]*catalog.Service{
			"editing": {ID: "editing", Code: "SVC-01", Name: "Editing", UnitRate: 50000, IsActive: true},
			"tutup":   {ID: "tutup", Code: "SVC-02", Name: "Sudah Tutup", UnitRate: 50000, IsActive: false},
		},
	}
}

func TestAddAsset(t *testing.T) {
	svc := NewService(newFakeCartStore(), testCatalog())

	l, err := svc.Add(context.Background(), "u1", AddInput{ItemType: catalog.ItemAset, AssetID: "kamera", Qty: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, l.Qty)
	assert.Equal(t, int64(200000), l.Price)
	assert.Equal(t, "kamera", l.AssetID)
}

func TestAddDefaultsQtyToOne(t *testing.T) {
	svc := NewService(newFakeCartStore(), testCatalog())

	l, err := svc.Add(context.Background(), "u1", AddInput{ItemType: catalog.ItemJasa, ServiceID: "editing"})
	require.NoError(t, err)
	assert.Equal(t, 1, l.Qty)
	assert.Equal(t, int64(50000), l.Price)
}

func TestAddMergesExistingLine(t *testing.T) {
	store := newFakeCartStore()
	svc := NewService(store, testCatalog())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", AddInput{ItemType: catalog.ItemAset, AssetID: "kamera", Qty: 1})
	require.NoError(t, err)
	l, err := svc.Add(ctx, "u1", AddInput{ItemType: catalog.ItemAset, AssetID: "kamera", Qty: 2})
	require.NoError(t, err)

	assert.Equal(t, 3, l.Qty)
	assert.Equal(t, int64(300000), l.Price)

	lines, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, lines, 1, "merge, bukan line duplikat")
}

func TestAddMergeRejectsOverStock(t *testing.T) {
	svc := NewService(newFakeCartStore(), testCatalog())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", AddInput{ItemType: catalog.ItemAset, AssetID: "kamera", Qty: 2})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", AddInput{ItemType: catalog.ItemAset, AssetID: "kamera", Qty: 2})
	assert.Equal(t, "INSUFFICIENT_STOCK", apperr.CodeOf(err))
}

func TestAddValidation(t *testing.T) {
	svc := NewService(newFakeCartStore(), testCatalog())
	ctx := context.Background()

	_, err := svc.Add(ctx, "u1", AddInput{ItemType: "MAKANAN", Qty: 1})
	assert.Equal(t, "INVALID_ITEM_TYPE", apperr.CodeOf(err))

	_, err = svc.Add(ctx, "u1", AddInput{ItemType: catalog.ItemAset, AssetID: "kamera", Qty: -1})
	assert.Equal(t, "INVALID_QTY", apperr.CodeOf(err))

	_, err = svc.Add(ctx, "u1", AddInput{ItemType: catalog.ItemAset, Qty: 1})
	assert.Equal(t, "MISSING_ASSET_ID", apperr.CodeOf(err))

	_, err = svc.Add(ctx, "u1", AddInput{ItemType: catalog.ItemAset, AssetID: "rusak", Qty: 1})
	assert.Equal(t, "ASSET_UNAVAILABLE", apperr.CodeOf(err))

	_, err = svc.Add(ctx, "u1", AddInput{ItemType: catalog.ItemJasa, ServiceID: "tutup", Qty: 1})
	assert.Equal(t, "SERVICE_INACTIVE", apperr.CodeOf(err))
}

func TestUpdateQtyReprices(t *testing.T) {
	store := newFakeCartStore()
	svc := NewService(store, testCatalog())
	ctx := context.Background()

	l, err := svc.Add(ctx, "u1", AddInput{ItemType: catalog.ItemAset, AssetID: "kamera", Qty: 1})
	require.NoError(t, err)

	got, err := svc.UpdateQty(ctx, "u1", l.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Qty)
	assert.Equal(t, int64(300000), got.Price)

	_, err = svc.UpdateQty(ctx, "u1", l.ID, 0)
	assert.Equal(t, "INVALID_QTY", apperr.CodeOf(err))
}

func TestOtherUsersLineIsNotFound(t *testing.T) {
	store := newFakeCartStore()
	svc := NewService(store, testCatalog())
	ctx := context.Background()

	l, err := svc.Add(ctx, "u1", AddInput{ItemType: catalog.ItemAset, AssetID: "kamera", Qty: 1})
	require.NoError(t, err)

	_, err = svc.UpdateQty(ctx, "u2", l.ID, 2)
	assert.Equal(t, "CART_LINE_NOT_FOUND", apperr.CodeOf(err))

	err = svc.Remove(ctx, "u2", l.ID)
	assert.Equal(t, "CART_LINE_NOT_FOUND", apperr.CodeOf(err))
}

func TestRemoveAndClear(t *testing.T) {
	store := newFakeCartStore()
	svc := NewService(store, testCatalog())
	ctx := context.Background()

	l, err := svc.Add(ctx, "u1", AddInput{ItemType: catalog.ItemAset, AssetID: "kamera", Qty: 1})
	require.NoError(t, err)
	_, err = svc.Add(ctx, "u1", AddInput{ItemType: catalog.ItemJasa, ServiceID: "editing"})
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "u1", l.ID))
	lines, _ := svc.List(ctx, "u1")
	assert.Len(t, lines, 1)

	require.NoError(t, svc.Clear(ctx, "u1"))
	lines, _ = svc.List(ctx, "u1")
	assert.Empty(t, lines)
}
