package user

import (
	"context"

	"github.com/ariefcatur/go-rental-booking.git/internal/auth"
)

// User: data minimal yang service ini butuhkan — fan-out notifikasi ke
// admin/approver dan customer detail untuk gateway. Registrasi & kredensial
// diurus layanan auth eksternal.
type User struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Phone  string    `json:"phone"`
	Role   auth.Role `json:"role"`
	Status string    `json:"status"` // AKTIF | NONAKTIF
}

const StatusAktif = "AKTIF"

type Store interface {
	Get(ctx context.Context, id string) (*User, error)
	// ListActiveByRole: user AKTIF dengan salah satu role yang diminta.
	ListActiveByRole(ctx context.Context, roles ...auth.Role) ([]User, error)
}
