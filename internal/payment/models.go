package payment

import (
	"context"
	"time"
)

// Payment: maksimal satu payment non-terminal per booking pada satu waktu.
// Amount dalam rupiah (int64, exact).
type Payment struct {
	ID          string     `json:"id"`
	BookingID   string     `json:"booking_id"`
	Amount      int64      `json:"amount"`
	Method      Method     `json:"method"`
	Status      Status     `json:"status"`
	ReferenceNo string     `json:"reference_no"` // order_id di gateway
	RedirectURL string     `json:"redirect_url,omitempty"`
	Token       string     `json:"token,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Store interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, id string) (*Payment, error)
	// FindByReference: exact match saja; reference tak dikenal = unmatched,
	// tidak pernah fuzzy-match by prefix. nil kalau tidak ada.
	FindByReference(ctx context.Context, ref string) (*Payment, error)
	// FindActiveByBooking: payment PENDING/PAID untuk booking; nil kalau tidak ada.
	FindActiveByBooking(ctx context.Context, bookingID string) (*Payment, error)
	CountByBooking(ctx context.Context, bookingID string) (int, error)
	// ApplyStatus: CAS — update hanya jika status masih `from`; jika markBookingPaid,
	// booking ikut DIBAYAR dalam tx yang sama. Return false kalau CAS kalah.
	ApplyStatus(ctx context.Context, paymentID, bookingID string, from, to Status, paidAt *time.Time, markBookingPaid bool) (bool, error)
}

// Gateway: klien pembayaran eksternal (Midtrans Snap + Core API di produksi).
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error)
	QueryStatus(ctx context.Context, reference string) (*GatewayStatus, error)
}

type Customer struct {
	Name  string
	Email string
	Phone string
}

type CheckoutSessionInput struct {
	Reference string
	Amount    int64
	Method    Method
	Customer  Customer
}

type CheckoutSession struct {
	RedirectURL string
	Token       string
}

type GatewayStatus struct {
	TransactionStatus string
	FraudStatus       string
}
