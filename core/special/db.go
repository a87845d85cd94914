package special

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("special not found")

func Create(ctx context.Context, db sqlx.ExtContext, s Special) error {
	const q = `
	INSERT INTO specials (special_id, name, description, image_url, price, active, created_at, updated_at)
	VALUES (:special_id, :name, :description, :image_url, :price, :active, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, s); err != nil {
		return fmt.Errorf("inserting special: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Special, error) {
	const q = `SELECT * FROM specials WHERE special_id = $1`

	var s Special
	if err := sqlx.GetContext(ctx, db, &s, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Special{}, ErrNotFound
		}
		return Special{}, fmt.Errorf("selecting special[%s]: %w", id, err)
	}
	return s, nil
}

func List(ctx context.Context, db sqlx.ExtContext, activeOnly bool) ([]Special, error) {
	q := `SELECT * FROM specials ORDER BY created_at DESC`
	if activeOnly {
		q = `SELECT * FROM specials WHERE active ORDER BY created_at DESC`
	}

	ss := []Special{}
	if err := sqlx.SelectContext(ctx, db, &ss, q); err != nil {
		return nil, fmt.Errorf("selecting specials: %w", err)
	}
	return ss, nil
}

func Deactivate(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `UPDATE specials SET active = FALSE, updated_at = NOW() WHERE special_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deactivating special[%s]: %w", id, err)
	}
	return nil
}
