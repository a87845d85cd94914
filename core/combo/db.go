package combo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("combo not found")

func Create(ctx context.Context, db sqlx.ExtContext, c Combo) error {
	const q = `
	INSERT INTO combos (combo_id, name, description, items, image_url, price, shipping_price, active, created_at, updated_at)
	VALUES (:combo_id, :name, :description, :items, :image_url, :price, :shipping_price, :active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("inserting combo: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Combo, error) {
	const q = `SELECT * FROM combos WHERE combo_id = $1`

	var c Combo
	if err := sqlx.GetContext(ctx, db, &c, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Combo{}, ErrNotFound
		}
		return Combo{}, fmt.Errorf("selecting combo[%s]: %w", id, err)
	}
	return c, nil
}

func List(ctx context.Context, db sqlx.ExtContext, activeOnly bool) ([]Combo, error) {
	q := `SELECT * FROM combos ORDER BY created_at DESC`
	if activeOnly {
		q = `SELECT * FROM combos WHERE active ORDER BY created_at DESC`
	}

	cs := []Combo{}
	if err := sqlx.SelectContext(ctx, db, &cs, q); err != nil {
		return nil, fmt.Errorf("selecting combos: %w", err)
	}
	return cs, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, c Combo) error {
	const q = `
	UPDATE combos SET
		name = :name,
		description = :description,
		items = :items,
		image_url = :image_url,
		price = :price,
		shipping_price = :shipping_price,
		active = :active,
		updated_at = :updated_at
	WHERE combo_id = :combo_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, c); err != nil {
		return fmt.Errorf("updating combo[%s]: %w", c.ID, err)
	}
	return nil
}
