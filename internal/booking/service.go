package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
	"github.com/ariefcatur/go-rental-booking.git/internal/auth"
	"github.com/ariefcatur/go-rental-booking.git/internal/cart"
	"github.com/ariefcatur/go-rental-booking.git/internal/catalog"
	"github.com/ariefcatur/go-rental-booking.git/internal/inventory"
	"github.com/ariefcatur/go-rental-booking.git/internal/notify"
	"github.com/ariefcatur/go-rental-booking.git/internal/user"
)

// Service memiliki state machine booking; semua transisi lewat sini.
type Service struct {
	store Store
	carts cart.Store
	users user.Store
	notif notify.Notifier
	log   *zap.Logger
}

func NewService(store Store, carts cart.Store, users user.Store, notif notify.Notifier, log *zap.Logger) *Service {
	return &Service{store: store, carts: carts, users: users, notif: notif, log: log}
}

type CheckoutInput struct {
	Start time.Time
	End   time.Time
	Notes string
}

type CheckoutResult struct {
	Booking    *Booking `json:"booking"`
	TotalPrice int64    `json:"total_price"`
}

// Checkout: baca cart -> klasifikasi type -> satu unit atomik (hold stok + create
// booking + clear cart). Validasi window terjadi sebelum mutasi apa pun.
func (s *Service) Checkout(ctx context.Context, id auth.Identity, in CheckoutInput) (*CheckoutResult, error) {
	w := inventory.Window{Start: in.Start, End: in.End}
	if in.Start.IsZero() || in.End.IsZero() {
		return nil, apperr.Validation("MISSING_WINDOW", "tanggal mulai dan akhir diperlukan")
	}
	if !w.Valid() {
		return nil, apperr.Validation("INVALID_WINDOW", "tanggal mulai harus sebelum tanggal akhir")
	}

	lines, err := s.carts.ListByUser(ctx, id.UserID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, apperr.Validation("EMPTY_CART", "keranjang kosong")
	}

	kinds := make([]catalog.ItemType, 0, len(lines))
	for _, l := range lines {
		kinds = append(kinds, l.ItemType)
	}

	now := time.Now().UTC()
	b := &Booking{
		ID:        uuid.NewString(),
		UserID:    id.UserID,
		Type:      ClassifyType(kinds),
		Start:     in.Start,
		End:       in.End,
		Status:    StatusMenunggu,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var total int64
	for _, l := range lines {
		b.Items = append(b.Items, Item{
			ID:        uuid.NewString(),
			BookingID: b.ID,
			ItemType:  l.ItemType,
			AssetID:   l.AssetID,
			ServiceID: l.ServiceID,
			Qty:       l.Qty,
			Price:     l.Price,
		})
		total += l.Price
	}

	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}

	// Notifikasi setelah commit: approver/admin aktif + si peminjam.
	staff, err := s.users.ListActiveByRole(ctx, auth.RoleAdmin, auth.RoleApprover)
	if err != nil {
		s.log.Warn("list approvers for notification failed", zap.Error(err))
	}
	for _, u := range staff {
		s.notif.Send(ctx, u.ID, notify.TypeBooking, "Booking Baru Masuk",
			fmt.Sprintf("Booking baru dengan ID %s dari user ID %s sedang menunggu konfirmasi.", b.ID, id.UserID))
	}
	s.notif.Send(ctx, id.UserID, notify.TypeBooking, "Booking Anda Berhasil Diajukan",
		fmt.Sprintf("Booking Anda dengan ID %s berhasil dibuat dan sedang menunggu konfirmasi dari admin.", b.ID))

	return &CheckoutResult{Booking: b, TotalPrice: total}, nil
}

// Get: pemilik atau ADMIN; selain itu diperlakukan tidak ditemukan.
func (s *Service) Get(ctx context.Context, id auth.Identity, bookingID string) (*Booking, error) {
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != id.UserID && id.Role != auth.RoleAdmin {
		return nil, apperr.NotFound("BOOKING_NOT_FOUND", "booking tidak ditemukan")
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, id auth.Identity, status Status, page, limit int) ([]Booking, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.store.ListByUser(ctx, id.UserID, status, page, limit)
}

// Approve: hanya ADMIN/APPROVER, hanya dari MENUNGGU. Tidak menyentuh inventory —
// stok sudah dipegang sejak MENUNGGU (approval tidak re-cek ketersediaan).
func (s *Service) Approve(ctx context.Context, id auth.Identity, bookingID, notes string) (*Booking, error) {
	if err := auth.RequireRole(id, auth.RoleAdmin, auth.RoleApprover); err != nil {
		return nil, err
	}
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusMenunggu {
		return nil, apperr.Conflict("INVALID_TRANSITION", "booking tidak bisa disetujui")
	}

	now := time.Now().UTC()
	err = s.store.Transition(ctx, bookingID, StatusMenunggu, StatusDikonfirmasi, TransitionOpts{
		ApprovedBy: id.UserID,
		ApprovedAt: &now,
		Notes:      notes,
	})
	if err != nil {
		return nil, err
	}

	s.notif.Send(ctx, b.UserID, notify.TypeBooking, "Booking Disetujui",
		fmt.Sprintf("Booking Anda dengan ID %s telah disetujui.", bookingID))
	return s.store.Get(ctx, bookingID)
}

// Reject: seperti approve, tapi melepas semua hold aset dalam tx yang sama.
func (s *Service) Reject(ctx context.Context, id auth.Identity, bookingID, reason string) (*Booking, error) {
	if err := auth.RequireRole(id, auth.RoleAdmin, auth.RoleApprover); err != nil {
		return nil, err
	}
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != StatusMenunggu {
		return nil, apperr.Conflict("INVALID_TRANSITION", "booking tidak bisa ditolak")
	}

	err = s.store.Transition(ctx, bookingID, StatusMenunggu, StatusDitolak, TransitionOpts{
		ReleaseStock: true,
		Notes:        reason,
	})
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "Tidak ada alasan yang diberikan."
	}
	s.notif.Send(ctx, b.UserID, notify.TypeBooking, "Booking Ditolak",
		fmt.Sprintf("Booking Anda dengan ID %s telah ditolak. Alasan: %s", bookingID, reason))
	return s.store.Get(ctx, bookingID)
}

// Cancel: hanya pemilik, dari MENUNGGU atau DIKONFIRMASI; melepas hold aset.
// Cancel kedua kali ditolak INVALID_TRANSITION, stok tidak dikembalikan dua kali.
func (s *Service) Cancel(ctx context.Context, id auth.Identity, bookingID string) (*Booking, error) {
	b, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != id.UserID {
		return nil, apperr.NotFound("BOOKING_NOT_FOUND", "booking tidak ditemukan")
	}
	if !CanTransition(b.Status, StatusDibatalkan) {
		return nil, apperr.Conflict("INVALID_TRANSITION", "booking tidak bisa dibatalkan")
	}

	err = s.store.Transition(ctx, bookingID, b.Status, StatusDibatalkan, TransitionOpts{
		ReleaseStock: true,
	})
	if err != nil {
		return nil, err
	}

	s.notif.Send(ctx, id.UserID, notify.TypeBooking, "Booking Dibatalkan",
		fmt.Sprintf("Booking Anda dengan ID %s telah dibatalkan.", bookingID))
	return s.store.Get(ctx, bookingID)
}
