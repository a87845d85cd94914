package workshop

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("workshop not found")

func Create(ctx context.Context, db sqlx.ExtContext, ws Workshop) error {
	const q = `
	INSERT INTO workshops (workshop_id, title, description, image_url, price, max_bookings, held_at, status, created_at, updated_at)
	VALUES (:workshop_id, :title, :description, :image_url, :price, :max_bookings, :held_at, :status, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ws); err != nil {
		return fmt.Errorf("inserting workshop: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Workshop, error) {
	const q = `SELECT * FROM workshops WHERE workshop_id = $1`

	var ws Workshop
	if err := sqlx.GetContext(ctx, db, &ws, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Workshop{}, ErrNotFound
		}
		return Workshop{}, fmt.Errorf("selecting workshop[%s]: %w", id, err)
	}
	return ws, nil
}

// FetchForUpdate locks the workshop row for the duration of the caller's
// transaction. The capacity check counts bookings under this lock, which
// is what closes the check-then-act overbooking race.
func FetchForUpdate(ctx context.Context, tx sqlx.ExtContext, id string) (Workshop, error) {
	const q = `SELECT * FROM workshops WHERE workshop_id = $1 FOR UPDATE`

	var ws Workshop
	if err := sqlx.GetContext(ctx, tx, &ws, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Workshop{}, ErrNotFound
		}
		return Workshop{}, fmt.Errorf("locking workshop[%s]: %w", id, err)
	}
	return ws, nil
}

func List(ctx context.Context, db sqlx.ExtContext, activeOnly bool) ([]Workshop, error) {
	q := `SELECT * FROM workshops ORDER BY held_at`
	if activeOnly {
		q = `SELECT * FROM workshops WHERE status = 'active' ORDER BY held_at`
	}

	wss := []Workshop{}
	if err := sqlx.SelectContext(ctx, db, &wss, q); err != nil {
		return nil, fmt.Errorf("selecting workshops: %w", err)
	}
	return wss, nil
}

func Update(ctx context.Context, db sqlx.ExtContext, ws Workshop) error {
	const q = `
	UPDATE workshops SET
		title = :title,
		description = :description,
		image_url = :image_url,
		price = :price,
		max_bookings = :max_bookings,
		held_at = :held_at,
		status = :status,
		updated_at = :updated_at
	WHERE workshop_id = :workshop_id`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ws); err != nil {
		return fmt.Errorf("updating workshop[%s]: %w", ws.ID, err)
	}
	return nil
}

// CountBooked sums the slots of bookings that actually hold a seat:
// payment captured and not soft-deleted. An optional excluded order id
// keeps the booking under verification out of its own count.
func CountBooked(ctx context.Context, db sqlx.ExtContext, workshopID, excludeOrderID string) (int, error) {
	const q = `
	SELECT COALESCE(SUM(slots), 0) FROM workshop_orders
	WHERE workshop_id = $1
	  AND NOT deleted
	  AND payment_status = 'captured'
	  AND workshop_order_id <> $2`

	var n int
	if err := sqlx.GetContext(ctx, db, &n, q, workshopID, excludeOrderID); err != nil {
		return 0, fmt.Errorf("counting bookings for workshop[%s]: %w", workshopID, err)
	}
	return n, nil
}
