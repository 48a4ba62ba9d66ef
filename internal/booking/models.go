package booking

import (
	"context"
	"time"

	"github.com/ariefcatur/go-rental-booking.git/internal/catalog"
)

// Type booking diturunkan dari isi keranjang saat checkout.
type Type string

const (
	TypeAset   Type = "ASET"
	TypeJasa   Type = "JASA"
	TypeCampur Type = "CAMPUR"
)

// ClassifyType: fungsi murni atas himpunan jenis line item.
func ClassifyType(kinds []catalog.ItemType) Type {
	hasAsset, hasService := false, false
	for _, k := range kinds {
		switch k {
		case catalog.ItemAset:
			hasAsset = true
		case catalog.ItemJasa:
			hasService = true
		}
	}
	switch {
	case hasAsset && !hasService:
		return TypeAset
	case !hasAsset && hasService:
		return TypeJasa
	default:
		return TypeCampur
	}
}

type Booking struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Type       Type       `json:"type"`
	Start      time.Time  `json:"start_datetime"`
	End        time.Time  `json:"end_datetime"`
	Status     Status     `json:"status"`
	ApprovedBy string     `json:"approved_by,omitempty"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	Items      []Item     `json:"items,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Item dibuat atomik bersama booking-nya dan immutable setelah itu; pelepasan
// stok terjadi lewat transisi status, bukan mutasi item.
type Item struct {
	ID        string           `json:"id"`
	BookingID string           `json:"booking_id"`
	ItemType  catalog.ItemType `json:"item_type"`
	AssetID   string           `json:"asset_id,omitempty"`
	ServiceID string           `json:"service_id,omitempty"`
	Qty       int              `json:"qty"`
	Price     int64            `json:"price"` // snapshot rate x qty dari cart
}

// TransitionOpts: efek samping yang ikut dalam satu unit transisi.
type TransitionOpts struct {
	ReleaseStock bool
	ApprovedBy   string
	ApprovedAt   *time.Time
	Notes        string
}

type Store interface {
	// Create: satu unit atomik — validasi & hold stok (reservation engine),
	// insert booking + items, kosongkan cart user. Tidak boleh ada partial commit.
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id string) (*Booking, error)
	ListByUser(ctx context.Context, userID string, status Status, page, limit int) ([]Booking, int, error)
	// Transition: compare-and-swap — commit hanya jika status masih `from`;
	// kalau tidak, INVALID_TRANSITION tanpa mengubah apa pun.
	Transition(ctx context.Context, id string, from, to Status, opt TransitionOpts) error
}
