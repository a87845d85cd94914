package dessert

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("dessert not found")

func Create(ctx context.Context, db sqlx.ExtContext, d Dessert) error {
	const q = `
	INSERT INTO desserts (dessert_id, name, description, image_url, price, active, created_at, updated_at)
	VALUES (:dessert_id, :name, :description, :image_url, :price, :active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, d); err != nil {
		return fmt.Errorf("inserting dessert: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Dessert, error) {
	const q = `SELECT * FROM desserts WHERE dessert_id = $1`

	var d Dessert
	if err := sqlx.GetContext(ctx, db, &d, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Dessert{}, ErrNotFound
		}
		return Dessert{}, fmt.Errorf("selecting dessert[%s]: %w", id, err)
	}
	return d, nil
}

func List(ctx context.Context, db sqlx.ExtContext, activeOnly bool) ([]Dessert, error) {
	q := `SELECT * FROM desserts ORDER BY created_at DESC`
	if activeOnly {
		q = `SELECT * FROM desserts WHERE active ORDER BY created_at DESC`
	}

	ds := []Dessert{}
	if err := sqlx.SelectContext(ctx, db, &ds, q); err != nil {
		return nil, fmt.Errorf("selecting desserts: %w", err)
	}
	return ds, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, d Dessert) error {
	const q = `
	UPDATE desserts SET
		name = :name,
		description = :description,
		image_url = :image_url,
		price = :price,
		active = :active,
		updated_at = :updated_at
	WHERE dessert_id = :dessert_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, d); err != nil {
		return fmt.Errorf("updating dessert[%s]: %w", d.ID, err)
	}
	return nil
}
