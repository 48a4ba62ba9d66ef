package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
	"github.com/ariefcatur/go-rental-booking.git/internal/cart"
	"github.com/ariefcatur/go-rental-booking.git/internal/catalog"
)

type CartRepo struct{ DB *pgxpool.Pool }

const cartCols = `id, user_id, item_type, COALESCE(asset_id,''), COALESCE(service_id,''), qty, price, created_at, updated_at`

func scanCartLine(row pgx.Row) (*cart.Line, error) {
	var l cart.Line
	err := row.Scan(&l.ID, &l.UserID, &l.ItemType, &l.AssetID, &l.ServiceID, &l.Qty, &l.Price, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *CartRepo) ListByUser(ctx context.Context, userID string) ([]cart.Line, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+cartCols+` FROM carts WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []cart.Line
	for rows.Next() {
		l, err := scanCartLine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *CartRepo) Get(ctx context.Context, id string) (*cart.Line, error) {
	l, err := scanCartLine(r.DB.QueryRow(ctx, `SELECT `+cartCols+` FROM carts WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("CART_LINE_NOT_FOUND", "item keranjang tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *CartRepo) Find(ctx context.Context, userID string, t catalog.ItemType, itemID string) (*cart.Line, error) {
	q := `SELECT ` + cartCols + ` FROM carts WHERE user_id=$1 AND item_type=$2 AND asset_id=$3`
	if t == catalog.ItemJasa {
		q = `SELECT ` + cartCols + ` FROM carts WHERE user_id=$1 AND item_type=$2 AND service_id=$3`
	}
	l, err := scanCartLine(r.DB.QueryRow(ctx, q, userID, t, itemID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *CartRepo) Insert(ctx context.Context, l *cart.Line) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO carts(id, user_id, item_type, asset_id, service_id, qty, price, created_at, updated_at)
		VALUES ($1,$2,$3,NULLIF($4,''),NULLIF($5,''),$6,$7,$8,$9)`,
		l.ID, l.UserID, l.ItemType, l.AssetID, l.ServiceID, l.Qty, l.Price, l.CreatedAt, l.UpdatedAt)
	return err
}

func (r *CartRepo) UpdateQty(ctx context.Context, id string, qty int, price int64) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE carts SET qty=$2, price=$3, updated_at=now() WHERE id=$1`, id, qty, price)
	return err
}

func (r *CartRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM carts WHERE id=$1`, id)
	return err
}

func (r *CartRepo) ClearUser(ctx context.Context, userID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM carts WHERE user_id=$1`, userID)
	return err
}
