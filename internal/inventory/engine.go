package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
)

// Line: satu baris reservasi aset dalam checkout.
type Line struct {
	AssetID string
	Qty     int
}

// Evaluate: keputusan murni apakah satu aset boleh di-hold.
// stock = stok saat ini (sudah dikurangi hold yang ada), held = total qty booking
// non-terminal yang overlap dengan window diminta.
func Evaluate(available bool, stock, held, qty int) error {
	if !available {
		return apperr.Conflict("ASSET_UNAVAILABLE", "asset tidak tersedia")
	}
	if qty > stock {
		return apperr.Conflict("INSUFFICIENT_STOCK", "stok asset tidak mencukupi")
	}
	if held+qty > stock {
		return apperr.Conflict("OVERLAP_CAPACITY", "asset sudah dipesan untuk periode tersebut")
	}
	return nil
}

// EvaluateService: jasa tidak punya stok, cukup flag aktif.
func EvaluateService(isActive bool) error {
	if !isActive {
		return apperr.Conflict("SERVICE_INACTIVE", "jasa tidak aktif")
	}
	return nil
}

// ReserveTx: lock tiap aset (FOR UPDATE) -> cek stok & overlap -> kurangi stok.
// Berjalan di dalam tx milik caller; kalau satu line gagal, caller rollback dan
// tidak ada perubahan yang ke-commit.
func ReserveTx(ctx context.Context, tx pgx.Tx, w Window, lines []Line) error {
	for _, ln := range lines {
		var stock int
		var status string
		err := tx.QueryRow(ctx,
			`SELECT stock, status FROM assets WHERE id=$1 FOR UPDATE`, ln.AssetID).
			Scan(&stock, &status)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("ASSET_NOT_FOUND", fmt.Sprintf("asset %s tidak ditemukan", ln.AssetID))
		}
		if err != nil {
			return err
		}

		// Total qty yang sudah dipegang booking MENUNGGU/DIKONFIRMASI yang overlap.
		var held int
		err = tx.QueryRow(ctx, `
			SELECT COALESCE(SUM(bi.qty), 0)
			FROM booking_items bi
			JOIN bookings b ON b.id = bi.booking_id
			WHERE bi.asset_id = $1
			  AND b.status IN ('MENUNGGU', 'DIKONFIRMASI')
			  AND b.start_datetime <= $3 AND b.end_datetime >= $2`,
			ln.AssetID, w.Start, w.End).Scan(&held)
		if err != nil {
			return err
		}

		if err := Evaluate(status == "TERSEDIA", stock, held, ln.Qty); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE assets SET stock = stock - $2, updated_at = now() WHERE id = $1`,
			ln.AssetID, ln.Qty); err != nil {
			return err
		}
	}
	return nil
}

// ReleaseTx: kembalikan stok semua line ASET milik satu booking (dipakai saat
// reject/cancel, di tx yang sama dengan update status booking).
func ReleaseTx(ctx context.Context, tx pgx.Tx, bookingID string) error {
	rows, err := tx.Query(ctx,
		`SELECT asset_id, qty FROM booking_items WHERE booking_id = $1 AND item_type = 'ASET'`,
		bookingID)
	if err != nil {
		return err
	}
	defer rows.Close()

	type rec struct {
		assetID string
		qty     int
	}
	var recs []rec
	for rows.Next() {
		var x rec
		if err := rows.Scan(&x.assetID, &x.qty); err != nil {
			return err
		}
		recs = append(recs, x)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, x := range recs {
		if _, err := tx.Exec(ctx,
			`UPDATE assets SET stock = stock + $2, updated_at = now() WHERE id = $1`,
			x.assetID, x.qty); err != nil {
			return err
		}
	}
	return nil
}
