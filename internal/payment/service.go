package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
	"github.com/ariefcatur/go-rental-booking.git/internal/auth"
	"github.com/ariefcatur/go-rental-booking.git/internal/booking"
	"github.com/ariefcatur/go-rental-booking.git/internal/notify"
	"github.com/ariefcatur/go-rental-booking.git/internal/user"
)

type Service struct {
	store          Store
	bookings       booking.Store
	users          user.Store
	gateway        Gateway
	notif          notify.Notifier
	log            *zap.Logger
	gatewayTimeout time.Duration
}

func NewService(store Store, bookings booking.Store, users user.Store, gw Gateway, notif notify.Notifier, log *zap.Logger, gatewayTimeout time.Duration) *Service {
	if gatewayTimeout <= 0 {
		gatewayTimeout = 10 * time.Second
	}
	return &Service{
		store: store, bookings: bookings, users: users,
		gateway: gw, notif: notif, log: log, gatewayTimeout: gatewayTimeout,
	}
}

type Intent struct {
	Payment     *Payment `json:"payment"`
	RedirectURL string   `json:"payment_url"`
	Token       string   `json:"token"`
}

// CreateIntent: booking harus DIKONFIRMASI, milik requester, dan belum punya
// payment non-terminal. Urutan: hitung amount -> panggil gateway (timeout
// terbatas) -> persist. Timeout gateway = gagal bersih tanpa row lokal;
// kebalikannya (gateway sukses, persist gagal) dicatat sebagai inkonsistensi.
func (s *Service) CreateIntent(ctx context.Context, id auth.Identity, bookingID string, method Method) (*Intent, error) {
	b, err := s.bookings.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != id.UserID {
		return nil, apperr.Forbidden("NOT_OWNER", "booking bukan milik Anda")
	}
	if b.Status != booking.StatusDikonfirmasi {
		return nil, apperr.Conflict("BOOKING_NOT_CONFIRMED", "booking belum dikonfirmasi oleh admin")
	}

	if existing, err := s.store.FindActiveByBooking(ctx, bookingID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Conflict("PAYMENT_IN_PROGRESS", "sudah ada pembayaran yang sedang diproses")
	}

	amount := ComputeAmount(b)
	if amount <= 0 {
		return nil, apperr.Validation("INVALID_AMOUNT", "amount pembayaran tidak valid")
	}

	u, err := s.users.Get(ctx, id.UserID)
	if err != nil {
		return nil, err
	}

	prior, err := s.store.CountByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	ref := Reference(bookingID, prior+1)

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	sess, err := s.gateway.CreateCheckoutSession(gctx, CheckoutSessionInput{
		Reference: ref,
		Amount:    amount,
		Method:    method,
		Customer:  Customer{Name: u.Name, Email: u.Email, Phone: u.Phone},
	})
	if err != nil {
		return nil, apperr.External("GATEWAY_ERROR", "error dari payment gateway", err)
	}

	now := time.Now().UTC()
	p := &Payment{
		ID:          uuid.NewString(),
		BookingID:   bookingID,
		Amount:      amount,
		Method:      method,
		Status:      StatusPending,
		ReferenceNo: ref,
		RedirectURL: sess.RedirectURL,
		Token:       sess.Token,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		// Transaksi gateway sudah terbuat tapi record lokal gagal — harus
		// ketahuan untuk di-void manual.
		s.log.Error("orphaned gateway transaction: checkout session exists without local payment",
			zap.String("reference_no", ref),
			zap.String("booking_id", bookingID),
			zap.Int64("amount", amount),
			zap.Error(err))
		return nil, apperr.Internal(err)
	}

	s.notif.Send(ctx, id.UserID, notify.TypePayment, "Pembayaran Dibuat",
		fmt.Sprintf("Silakan selesaikan pembayaran untuk booking ID %s", bookingID))

	return &Intent{Payment: p, RedirectURL: sess.RedirectURL, Token: sess.Token}, nil
}

// Get: detail payment untuk pemilik booking atau ADMIN.
func (s *Service) Get(ctx context.Context, id auth.Identity, paymentID string) (*Payment, error) {
	p, err := s.store.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, id, p); err != nil {
		return nil, err
	}
	return p, nil
}

type ReconcileOutcome string

const (
	OutcomeApplied          ReconcileOutcome = "applied"
	OutcomeAlreadyConverged ReconcileOutcome = "already_converged"
	OutcomeNoChange         ReconcileOutcome = "no_change"
	OutcomeUnmatched        ReconcileOutcome = "unmatched"
	OutcomeUnrecognized     ReconcileOutcome = "unrecognized_status"
	OutcomeTerminal         ReconcileOutcome = "terminal_mismatch"
	OutcomeStale            ReconcileOutcome = "stale"
)

type ReconcileResult struct {
	Outcome   ReconcileOutcome `json:"outcome"`
	PaymentID string           `json:"payment_id,omitempty"`
	Status    Status           `json:"status,omitempty"`
}

// Reconcile: entrypoint webhook. Idempotent terhadap replay dan aman terhadap
// delivery out-of-order: mapping murni -> guard konvergensi -> CAS commit.
// Notifikasi hanya saat CAS benar-benar apply, jadi sekali per transisi.
func (s *Service) Reconcile(ctx context.Context, reference, transactionStatus, fraudStatus string) (ReconcileResult, error) {
	p, err := s.store.FindByReference(ctx, reference)
	if err != nil {
		return ReconcileResult{}, err
	}
	if p == nil {
		// Diterima (caller balas 200 supaya gateway tidak retry storm), tapi
		// tidak pernah dianggap PAID — tinggal jejak untuk follow-up manual.
		s.log.Warn("unmatched_reference: webhook for unknown payment reference",
			zap.String("reference_no", reference),
			zap.String("transaction_status", transactionStatus))
		return ReconcileResult{Outcome: OutcomeUnmatched}, nil
	}

	target, ok := MapGatewayStatus(transactionStatus, fraudStatus)
	if !ok {
		s.log.Warn("unrecognized gateway status",
			zap.String("reference_no", reference),
			zap.String("transaction_status", transactionStatus),
			zap.String("fraud_status", fraudStatus))
		return ReconcileResult{Outcome: OutcomeUnrecognized, PaymentID: p.ID, Status: p.Status}, nil
	}

	if p.Status == StatusPaid && target == StatusPaid {
		return ReconcileResult{Outcome: OutcomeAlreadyConverged, PaymentID: p.ID, Status: p.Status}, nil
	}
	if target == p.Status {
		return ReconcileResult{Outcome: OutcomeNoChange, PaymentID: p.ID, Status: p.Status}, nil
	}
	if p.Status.Terminal() {
		// PENDING yang datang terlambat setelah PAID/FAILED tidak boleh mundur.
		s.log.Warn("conflicting status for terminal payment",
			zap.String("payment_id", p.ID),
			zap.String("current", string(p.Status)),
			zap.String("incoming", string(target)))
		return ReconcileResult{Outcome: OutcomeTerminal, PaymentID: p.ID, Status: p.Status}, nil
	}

	var paidAt *time.Time
	if target == StatusPaid {
		now := time.Now().UTC()
		paidAt = &now
	}
	applied, err := s.store.ApplyStatus(ctx, p.ID, p.BookingID, p.Status, target, paidAt, target == StatusPaid)
	if err != nil {
		return ReconcileResult{}, err
	}
	if !applied {
		// CAS kalah dari delivery lain — delivery itu yang sudah meng-notify.
		return ReconcileResult{Outcome: OutcomeStale, PaymentID: p.ID, Status: p.Status}, nil
	}

	if target == StatusPaid {
		if b, err := s.bookings.Get(ctx, p.BookingID); err == nil {
			s.notif.Send(ctx, b.UserID, notify.TypePayment, "Pembayaran Berhasil",
				fmt.Sprintf("Pembayaran untuk booking ID %s telah berhasil.", p.BookingID))
		} else {
			s.log.Warn("load booking for paid notification failed", zap.Error(err))
		}
		admins, err := s.users.ListActiveByRole(ctx, auth.RoleAdmin)
		if err != nil {
			s.log.Warn("list admins for paid notification failed", zap.Error(err))
		}
		for _, a := range admins {
			s.notif.Send(ctx, a.ID, notify.TypePayment, "Pembayaran Masuk",
				fmt.Sprintf("Pembayaran baru untuk booking ID %s.", p.BookingID))
		}
	}

	return ReconcileResult{Outcome: OutcomeApplied, PaymentID: p.ID, Status: target}, nil
}

type StatusCheck struct {
	PaymentStatus     Status `json:"payment_status"`
	TransactionStatus string `json:"gateway_status"`
	FraudStatus       string `json:"fraud_status,omitempty"`
}

// CheckStatus: cross-check read-only ke status live gateway.
func (s *Service) CheckStatus(ctx context.Context, id auth.Identity, paymentID string) (*StatusCheck, error) {
	p, err := s.store.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, id, p); err != nil {
		return nil, err
	}

	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	gs, err := s.gateway.QueryStatus(gctx, p.ReferenceNo)
	if err != nil {
		return nil, apperr.External("GATEWAY_ERROR", "error checking payment status", err)
	}
	return &StatusCheck{
		PaymentStatus:     p.Status,
		TransactionStatus: gs.TransactionStatus,
		FraudStatus:       gs.FraudStatus,
	}, nil
}

// VerifyWithGateway dipakai webhook handler untuk konfirmasi status otoritatif
// sebelum reconcile; nil kalau gateway belum mengenal reference-nya.
func (s *Service) VerifyWithGateway(ctx context.Context, reference string) (*GatewayStatus, error) {
	gctx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()
	return s.gateway.QueryStatus(gctx, reference)
}

func (s *Service) authorize(ctx context.Context, id auth.Identity, p *Payment) error {
	b, err := s.bookings.Get(ctx, p.BookingID)
	if err != nil {
		return err
	}
	if b.UserID != id.UserID && id.Role != auth.RoleAdmin {
		return apperr.Forbidden("FORBIDDEN", "akses ditolak")
	}
	return nil
}
