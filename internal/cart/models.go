package cart

import (
	"context"
	"time"

	"github.com/ariefcatur/go-rental-booking.git/internal/catalog"
)

// Line: item keranjang per user. Price = snapshot rate x qty, bukan hold inventory —
// murni advisory sampai checkout.
type Line struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	ItemType  catalog.ItemType `json:"item_type"`
	AssetID   string           `json:"asset_id,omitempty"`
	ServiceID string           `json:"service_id,omitempty"`
	Qty       int              `json:"qty"`
	Price     int64            `json:"price"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ItemID: id item yang direferensikan, apapun tipenya.
func (l *Line) ItemID() string {
	if l.ItemType == catalog.ItemAset {
		return l.AssetID
	}
	return l.ServiceID
}

type Store interface {
	ListByUser(ctx context.Context, userID string) ([]Line, error)
	Get(ctx context.Context, id string) (*Line, error)
	// Find mencari line user untuk item yang sama (merge target). nil kalau tidak ada.
	Find(ctx context.Context, userID string, t catalog.ItemType, itemID string) (*Line, error)
	Insert(ctx context.Context, l *Line) error
	UpdateQty(ctx context.Context, id string, qty int, price int64) error
	Delete(ctx context.Context, id string) error
	ClearUser(ctx context.Context, userID string) error
}
