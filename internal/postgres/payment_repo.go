package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
	"github.com/ariefcatur/go-rental-booking.git/internal/booking"
	"github.com/ariefcatur/go-rental-booking.git/internal/payment"
)

type PaymentRepo struct{ DB *pgxpool.Pool }

const paymentCols = `id, booking_id, amount, method, status, reference_no,
	COALESCE(redirect_url,''), COALESCE(token,''), paid_at, created_at, updated_at`

func scanPayment(row pgx.Row) (*payment.Payment, error) {
	var p payment.Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.Amount, &p.Method, &p.Status, &p.ReferenceNo,
		&p.RedirectURL, &p.Token, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PaymentRepo) Create(ctx context.Context, p *payment.Payment) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO payments(id, booking_id, amount, method, status, reference_no, redirect_url, token, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),NULLIF($8,''),$9,$10)`,
		p.ID, p.BookingID, p.Amount, p.Method, p.Status, p.ReferenceNo, p.RedirectURL, p.Token, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *PaymentRepo) Get(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := scanPayment(r.DB.QueryRow(ctx, `SELECT `+paymentCols+` FROM payments WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("PAYMENT_NOT_FOUND", "payment tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PaymentRepo) FindByReference(ctx context.Context, ref string) (*payment.Payment, error) {
	p, err := scanPayment(r.DB.QueryRow(ctx, `SELECT `+paymentCols+` FROM payments WHERE reference_no=$1`, ref))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PaymentRepo) FindActiveByBooking(ctx context.Context, bookingID string) (*payment.Payment, error) {
	p, err := scanPayment(r.DB.QueryRow(ctx, `
		SELECT `+paymentCols+` FROM payments
		WHERE booking_id=$1 AND status IN ($2,$3)
		ORDER BY created_at DESC LIMIT 1`,
		bookingID, payment.StatusPending, payment.StatusPaid))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PaymentRepo) CountByBooking(ctx context.Context, bookingID string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM payments WHERE booking_id=$1`, bookingID).Scan(&n)
	return n, err
}

// ApplyStatus: CAS payment + (opsional) flip booking ke DIBAYAR dalam satu tx.
// CAS kalah (row sudah bergeser dari `from`) bukan error, cukup false.
func (r *PaymentRepo) ApplyStatus(ctx context.Context, paymentID, bookingID string, from, to payment.Status, paidAt *time.Time, markBookingPaid bool) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx, `
		UPDATE payments SET status=$3, paid_at=COALESCE($4, paid_at), updated_at=now()
		WHERE id=$1 AND status=$2`, paymentID, from, to, paidAt)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() == 0 {
		return false, nil
	}

	if markBookingPaid {
		// Booking hanya naik ke DIBAYAR dari DIKONFIRMASI; kalau sudah
		// bergeser (mis. dibatalkan balapan dengan webhook), payment tetap
		// tercatat PAID dan ketidaksesuaiannya terlihat di data.
		if _, err := tx.Exec(ctx,
			`UPDATE bookings SET status=$2, updated_at=now() WHERE id=$1 AND status=$3`,
			bookingID, booking.StatusDibayar, booking.StatusDikonfirmasi); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
