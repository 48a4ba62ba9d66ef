package auth

import "github.com/ariefcatur/go-rental-booking.git/internal/apperr"

// Role dari layer auth eksternal (lihat header X-User-Role).
type Role string

const (
	RolePeminjam Role = "PEMINJAM"
	RoleApprover Role = "APPROVER"
	RoleAdmin    Role = "ADMIN"
)

// Identity di-resolve oleh auth middleware di luar service ini.
type Identity struct {
	UserID string
	Role   Role
}

func (id Identity) Valid() bool {
	switch id.Role {
	case RolePeminjam, RoleApprover, RoleAdmin:
		return id.UserID != ""
	}
	return false
}

// RequireRole: capability check terpusat, dipakai seragam oleh booking & payment.
func RequireRole(id Identity, allowed ...Role) error {
	for _, r := range allowed {
		if id.Role == r {
			return nil
		}
	}
	return apperr.Forbidden("FORBIDDEN", "akses ditolak")
}
