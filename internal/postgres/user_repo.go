package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
	"github.com/ariefcatur/go-rental-booking.git/internal/auth"
	"github.com/ariefcatur/go-rental-booking.git/internal/user"
)

type UserRepo struct{ DB *pgxpool.Pool }

func (r *UserRepo) Get(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, COALESCE(email,''), COALESCE(phone,''), role, status
		FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("USER_NOT_FOUND", "user tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ListActiveByRole(ctx context.Context, roles ...auth.Role) ([]user.User, error) {
	rs := make([]string, 0, len(roles))
	for _, role := range roles {
		rs = append(rs, string(role))
	}
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, COALESCE(email,''), COALESCE(phone,''), role, status
		FROM users WHERE role = ANY($1) AND status = $2`, rs, user.StatusAktif)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []user.User
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.Status); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
