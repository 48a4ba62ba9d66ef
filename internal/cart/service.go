package cart

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
	"github.com/ariefcatur/go-rental-booking.git/internal/catalog"
	"github.com/ariefcatur/go-rental-booking.git/internal/inventory"
)

type Service struct {
	store   Store
	catalog catalog.Store
}

func NewService(store Store, cat catalog.Store) *Service {
	return &Service{store: store, catalog: cat}
}

type AddInput struct {
	ItemType  catalog.ItemType `json:"item_type"`
	AssetID   string           `json:"asset_id"`
	ServiceID string           `json:"service_id"`
	Qty       int              `json:"qty"`
}

// Add: merge ke line yang sudah ada untuk item sama (jumlahkan qty), bukan duplikat.
// Cek stok/aktif di sini hanya advisory — keputusan final tetap di reservation
// engine saat checkout.
func (s *Service) Add(ctx context.Context, userID string, in AddInput) (*Line, error) {
	if !in.ItemType.Valid() {
		return nil, apperr.Validation("INVALID_ITEM_TYPE", "tipe item tidak valid")
	}
	if in.Qty == 0 {
		in.Qty = 1
	}
	if in.Qty < 0 {
		return nil, apperr.Validation("INVALID_QTY", "quantity harus lebih dari 0")
	}

	var itemID string
	var rate int64
	switch in.ItemType {
	case catalog.ItemAset:
		if in.AssetID == "" {
			return nil, apperr.Validation("MISSING_ASSET_ID", "asset id diperlukan untuk tipe ASET")
		}
		a, err := s.catalog.GetAsset(ctx, in.AssetID)
		if err != nil {
			return nil, err
		}
		if err := inventory.Evaluate(a.Available(), a.Stock, 0, in.Qty); err != nil {
			return nil, err
		}
		itemID, rate = a.ID, a.DailyRate
	case catalog.ItemJasa:
		if in.ServiceID == "" {
			return nil, apperr.Validation("MISSING_SERVICE_ID", "service id diperlukan untuk tipe JASA")
		}
		sv, err := s.catalog.GetService(ctx, in.ServiceID)
		if err != nil {
			return nil, err
		}
		if err := inventory.EvaluateService(sv.IsActive); err != nil {
			return nil, err
		}
		itemID, rate = sv.ID, sv.UnitRate
	}

	existing, err := s.store.Find(ctx, userID, in.ItemType, itemID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		newQty := existing.Qty + in.Qty
		if in.ItemType == catalog.ItemAset {
			a, err := s.catalog.GetAsset(ctx, itemID)
			if err != nil {
				return nil, err
			}
			if err := inventory.Evaluate(a.Available(), a.Stock, 0, newQty); err != nil {
				return nil, err
			}
		}
		if err := s.store.UpdateQty(ctx, existing.ID, newQty, rate*int64(newQty)); err != nil {
			return nil, err
		}
		existing.Qty = newQty
		existing.Price = rate * int64(newQty)
		return existing, nil
	}

	now := time.Now().UTC()
	l := &Line{
		ID:        uuid.NewString(),
		UserID:    userID,
		ItemType:  in.ItemType,
		Qty:       in.Qty,
		Price:     rate * int64(in.Qty),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.ItemType == catalog.ItemAset {
		l.AssetID = itemID
	} else {
		l.ServiceID = itemID
	}
	if err := s.store.Insert(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Line, error) {
	return s.store.ListByUser(ctx, userID)
}

// UpdateQty: ganti qty satu line (bukan merge), reprice dari rate katalog terkini.
func (s *Service) UpdateQty(ctx context.Context, userID, lineID string, qty int) (*Line, error) {
	if qty <= 0 {
		return nil, apperr.Validation("INVALID_QTY", "quantity harus lebih dari 0")
	}
	l, err := s.ownedLine(ctx, userID, lineID)
	if err != nil {
		return nil, err
	}

	var rate int64
	if l.ItemType == catalog.ItemAset {
		a, err := s.catalog.GetAsset(ctx, l.AssetID)
		if err != nil {
			return nil, err
		}
		if err := inventory.Evaluate(a.Available(), a.Stock, 0, qty); err != nil {
			return nil, err
		}
		rate = a.DailyRate
	} else {
		sv, err := s.catalog.GetService(ctx, l.ServiceID)
		if err != nil {
			return nil, err
		}
		rate = sv.UnitRate
	}

	price := rate * int64(qty)
	if err := s.store.UpdateQty(ctx, l.ID, qty, price); err != nil {
		return nil, err
	}
	l.Qty, l.Price = qty, price
	return l, nil
}

func (s *Service) Remove(ctx context.Context, userID, lineID string) error {
	l, err := s.ownedLine(ctx, userID, lineID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, l.ID)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.store.ClearUser(ctx, userID)
}

// ownedLine: line milik user lain diperlakukan sebagai tidak ditemukan.
func (s *Service) ownedLine(ctx context.Context, userID, lineID string) (*Line, error) {
	l, err := s.store.Get(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if l == nil || l.UserID != userID {
		return nil, apperr.NotFound("CART_LINE_NOT_FOUND", "item keranjang tidak ditemukan")
	}
	return l, nil
}
