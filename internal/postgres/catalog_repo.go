package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/go-rental-booking.git/internal/apperr"
	"github.com/ariefcatur/go-rental-booking.git/internal/catalog"
)

type CatalogRepo struct{ DB *pgxpool.Pool }

func (r *CatalogRepo) GetAsset(ctx context.Context, id string) (*catalog.Asset, error) {
	var a catalog.Asset
	err := r.DB.QueryRow(ctx, `
		SELECT id, code, name, COALESCE(description,''), daily_rate, stock, status, created_at, updated_at
		FROM assets WHERE id=$1`, id).
		Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.DailyRate, &a.Stock, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("ASSET_NOT_FOUND", "asset tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *CatalogRepo) GetService(ctx context.Context, id string) (*catalog.Service, error) {
	var s catalog.Service
	err := r.DB.QueryRow(ctx, `
		SELECT id, code, name, COALESCE(description,''), unit_rate, is_active, created_at, updated_at
		FROM services WHERE id=$1`, id).
		Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.UnitRate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("SERVICE_NOT_FOUND", "jasa tidak ditemukan")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CatalogRepo) ListAssets(ctx context.Context) ([]catalog.Asset, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, code, name, COALESCE(description,''), daily_rate, stock, status, created_at, updated_at
		FROM assets ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Asset
	for rows.Next() {
		var a catalog.Asset
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.DailyRate, &a.Stock, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *CatalogRepo) ListServices(ctx context.Context) ([]catalog.Service, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, code, name, COALESCE(description,''), unit_rate, is_active, created_at, updated_at
		FROM services ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.Service
	for rows.Next() {
		var s catalog.Service
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Description, &s.UnitRate, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
