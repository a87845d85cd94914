package address

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("address not found")

func Create(ctx context.Context, db sqlx.ExtContext, a Address) error {
	const q = `
	INSERT INTO addresses (address_id, user_id, label, line1, line2, city, postcode, phone, created_at, updated_at)
	VALUES (:address_id, :user_id, :label, :line1, :line2, :city, :postcode, :phone, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, a); err != nil {
		return fmt.Errorf("inserting address: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Address, error) {
	const q = `SELECT * FROM addresses WHERE address_id = $1`

	var a Address
	if err := sqlx.GetContext(ctx, db, &a, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Address{}, ErrNotFound
		}
		return Address{}, fmt.Errorf("selecting address[%s]: %w", id, err)
	}
	return a, nil
}

func ListByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Address, error) {
	const q = `SELECT * FROM addresses WHERE user_id = $1 ORDER BY created_at`

	as := []Address{}
	if err := sqlx.SelectContext(ctx, db, &as, q, userID); err != nil {
		return nil, fmt.Errorf("selecting addresses of user[%s]: %w", userID, err)
	}
	return as, nil
}

func Delete(ctx context.Context, db sqlx.ExtContext, id string) error {
	const q = `DELETE FROM addresses WHERE address_id = $1`

	if _, err := db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("deleting address[%s]: %w", id, err)
	}
	return nil
}
