package postgres

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
	"github.com/ariefcatur/go-rental-booking.git/internal/booking"
	"github.com/ariefcatur/go-rental-booking.git/internal/catalog"
	"github.com/ariefcatur/go-rental-booking.git/internal/inventory"
)

type BookingRepo struct{ DB *pgxpool.Pool }

// Create: satu tx untuk seluruh checkout — hold stok (FOR UPDATE per aset),
// insert booking + items, clear cart user. Kalau satu langkah gagal, rollback
// total; checkout lain tidak pernah melihat state setengah jadi.
func (r *BookingRepo) Create(ctx context.Context, b *booking.Booking) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	w := inventory.Window{Start: b.Start, End: b.End}
	var assetLines []inventory.Line
	for _, it := range b.Items {
		switch it.ItemType {
		case catalog.ItemAset:
			assetLines = append(assetLines, inventory.Line{AssetID: it.AssetID, Qty: it.Qty})
		case catalog.ItemJasa:
			var active bool
			err := tx.QueryRow(ctx, `SELECT is_active FROM services WHERE id=$1`, it.ServiceID).Scan(&active)
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("SERVICE_NOT_FOUND", "jasa tidak ditemukan")
			}
			if err != nil {
				return err
			}
			if err := inventory.EvaluateService(active); err != nil {
				return err
			}
		}
	}
	if err := inventory.ReserveTx(ctx, tx, w, assetLines); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings(id, user_id, type, start_datetime, end_datetime, status, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),$8,$9)`,
		b.ID, b.UserID, b.Type, b.Start, b.End, b.Status, b.Notes, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		return err
	}

	for _, it := range b.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO booking_items(id, booking_id, item_type, asset_id, service_id, qty, price)
			VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,''),$6,$7)`,
			it.ID, it.BookingID, it.ItemType, it.AssetID, it.ServiceID, it.Qty, it.Price)
		if err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM carts WHERE user_id=$1`, b.UserID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const bookingCols = `id, user_id, type, start_datetime, end_datetime, status,
	COALESCE(approved_by,''), approved_at, COALESCE(notes,''), created_at, updated_at`

func scanBooking(row pgx.Row) (*booking.Booking, error) {
	var b booking.Booking
	err := row.Scan(&b.ID, &b.UserID, &b.Type, &b.Start, &b.End, &b.Status,
		&b.ApprovedBy, &b.ApprovedAt, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) Get(ctx context.Context, id string) (*booking.Booking, error) {
	b, err := scanBooking(r.DB.QueryRow(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("BOOKING_NOT_FOUND", "booking tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, booking_id, item_type, COALESCE(asset_id,''), COALESCE(service_id,''), qty, price
		FROM booking_items WHERE booking_id=$1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it booking.Item
		if err := rows.Scan(&it.ID, &it.BookingID, &it.ItemType, &it.AssetID, &it.ServiceID, &it.Qty, &it.Price); err != nil {
			return nil, err
		}
		b.Items = append(b.Items, it)
	}
	return b, rows.Err()
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID string, status booking.Status, page, limit int) ([]booking.Booking, int, error) {
	where := `WHERE user_id=$1`
	args := []any{userID}
	if status != "" {
		where += ` AND status=$2`
		args = append(args, status)
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM bookings `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := r.DB.Query(ctx,
		`SELECT `+bookingCols+` FROM bookings `+where+
			` ORDER BY created_at DESC LIMIT `+strconv.Itoa(limit)+` OFFSET `+strconv.Itoa(offset),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []booking.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *b)
	}
	return out, total, rows.Err()
}

// Transition: CAS di level SQL — UPDATE ... WHERE status=from. RowsAffected 0
// dibedakan antara booking hilang vs status sudah bergeser (race).
func (r *BookingRepo) Transition(ctx context.Context, id string, from, to booking.Status, opt booking.TransitionOpts) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx,
		`UPDATE bookings SET status=$3, updated_at=now() WHERE id=$1 AND status=$2`, id, from, to)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		var cur string
		err := tx.QueryRow(ctx, `SELECT status FROM bookings WHERE id=$1`, id).Scan(&cur)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("BOOKING_NOT_FOUND", "booking tidak ditemukan")
		}
		if err != nil {
			return err
		}
		return apperr.Conflict("INVALID_TRANSITION", "status booking sudah berubah")
	}

	if opt.ApprovedBy != "" {
		if _, err := tx.Exec(ctx,
			`UPDATE bookings SET approved_by=$2, approved_at=$3 WHERE id=$1`, id, opt.ApprovedBy, opt.ApprovedAt); err != nil {
			return err
		}
	}
	if opt.Notes != "" {
		if _, err := tx.Exec(ctx, `UPDATE bookings SET notes=$2 WHERE id=$1`, id, opt.Notes); err != nil {
			return err
		}
	}

	if opt.ReleaseStock {
		if err := inventory.ReleaseTx(ctx, tx, id); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
