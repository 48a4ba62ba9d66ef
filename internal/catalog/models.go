package catalog

import (
	"context"
	"time"
)

// ItemType: item katalog itu tagged variant ASET (punya stok) atau JASA (flag aktif).
type ItemType string

const (
	ItemAset ItemType = "ASET"
	ItemJasa ItemType = "JASA"
)

func (t ItemType) Valid() bool { return t == ItemAset || t == ItemJasa }

const AssetTersedia = "TERSEDIA"

// Asset: barang fisik dengan stok. DailyRate dalam rupiah (integer, tanpa float).
// Stok hanya dimutasi oleh inventory engine.
type Asset struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	DailyRate   int64     `json:"daily_rate"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"` // TERSEDIA | TIDAK_TERSEDIA
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (a *Asset) Available() bool { return a.Status == AssetTersedia }

// Service: jasa tanpa stok, hanya flag aktif. UnitRate dalam rupiah.
type Service struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UnitRate    int64     `json:"unit_rate"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Store interface {
	GetAsset(ctx context.Context, id string) (*Asset, error)
	GetService(ctx context.Context, id string) (*Service, error)
	ListAssets(ctx context.Context) ([]Asset, error)
	ListServices(ctx context.Context) ([]Service, error)
}
