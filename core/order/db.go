package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("order not found")

func Create(ctx context.Context, db sqlx.ExtContext, ord Order) error {
	const q = `
	INSERT INTO orders
		(order_id, user_id, reference, total, status, payment_status,
		 gateway_order_id, gateway_payment_id, gateway_signature,
		 pickup_at, note, deleted, created_at, updated_at)
	VALUES
		(:order_id, :user_id, :reference, :total, :status, :payment_status,
		 :gateway_order_id, :gateway_payment_id, :gateway_signature,
		 :pickup_at, :note, :deleted, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, ord); err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}
	return nil
}

func CreateItem(ctx context.Context, db sqlx.ExtContext, it Item) error {
	const q = `
	INSERT INTO order_items (order_id, item_id, item_type, name, price, quantity, created_at)
	VALUES (:order_id, :item_id, :item_type, :name, :price, :quantity, :created_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, it); err != nil {
		return fmt.Errorf("inserting order item: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (Order, error) {
	const q = `SELECT * FROM orders WHERE order_id = $1 AND NOT deleted`

	var ord Order
	if err := sqlx.GetContext(ctx, db, &ord, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, fmt.Errorf("selecting order[%s]: %w", id, err)
	}
	return ord, nil
}

func FetchItems(ctx context.Context, db sqlx.ExtContext, orderID string) ([]Item, error) {
	const q = `SELECT * FROM order_items WHERE order_id = $1 ORDER BY name`

	its := []Item{}
	if err := sqlx.SelectContext(ctx, db, &its, q, orderID); err != nil {
		return nil, fmt.Errorf("selecting items of order[%s]: %w", orderID, err)
	}
	return its, nil
}

func ListByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]Order, error) {
	const q = `SELECT * FROM orders WHERE user_id = $1 AND NOT deleted ORDER BY created_at DESC`

	ords := []Order{}
	if err := sqlx.SelectContext(ctx, db, &ords, q, userID); err != nil {
		return nil, fmt.Errorf("selecting orders of user[%s]: %w", userID, err)
	}
	return ords, nil
}

func List(ctx context.Context, db sqlx.ExtContext) ([]Order, error) {
	const q = `SELECT * FROM orders WHERE NOT deleted ORDER BY created_at DESC`

	ords := []Order{}
	if err := sqlx.SelectContext(ctx, db, &ords, q); err != nil {
		return nil, fmt.Errorf("selecting orders: %w", err)
	}
	return ords, nil
}

// AttachGateway records the gateway order opened for this order and moves
// it from pending to payment_pending.
func AttachGateway(ctx context.Context, db sqlx.ExtContext, id, gatewayOrderID string) error {
	const q = `
	UPDATE orders SET
		gateway_order_id = $2,
		status = $3,
		updated_at = $4
	WHERE order_id = $1`

	if _, err := db.ExecContext(ctx, q, id, gatewayOrderID, PaymentPending, time.Now().UTC()); err != nil {
		return fmt.Errorf("attaching gateway order to order[%s]: %w", id, err)
	}
	return nil
}

// UpdatePayment stores the gateway's verdict along with the lifecycle
// status it implies.
func UpdatePayment(ctx context.Context, db sqlx.ExtContext, id string, status Status, paymentStatus, paymentID, signature string) error {
	const q = `
	UPDATE orders SET
		status = $2,
		payment_status = $3,
		gateway_payment_id = $4,
		gateway_signature = $5,
		updated_at = $6
	WHERE order_id = $1`

	if _, err := db.ExecContext(ctx, q, id, status, paymentStatus, paymentID, signature, time.Now().UTC()); err != nil {
		return fmt.Errorf("updating payment of order[%s]: %w", id, err)
	}
	return nil
}

func UpdateStatus(ctx context.Context, db sqlx.ExtContext, id string, status Status) error {
	const q = `UPDATE orders SET status = $2, updated_at = $3 WHERE order_id = $1`

	if _, err := db.ExecContext(ctx, q, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("updating status of order[%s]: %w", id, err)
	}
	return nil
}

// FetchStuck returns orders that committed but never got a gateway order
// attached, older than the cutoff. The reconciliation worker owns these.
func FetchStuck(ctx context.Context, db sqlx.ExtContext, olderThan time.Duration) ([]Order, error) {
	const q = `
	SELECT * FROM orders
	WHERE status = 'pending'
	  AND gateway_order_id = ''
	  AND NOT deleted
	  AND created_at < $1`

	ords := []Order{}
	if err := sqlx.SelectContext(ctx, db, &ords, q, time.Now().UTC().Add(-olderThan)); err != nil {
		return nil, fmt.Errorf("selecting stuck orders: %w", err)
	}
	return ords, nil
}
