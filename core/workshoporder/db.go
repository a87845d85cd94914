package workshoporder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/crumbline/bakeshop/core/order"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("workshop order not found")

func Create(ctx context.Context, db sqlx.ExtContext, bo WorkshopOrder) error {
	const q = `
	INSERT INTO workshop_orders
		(workshop_order_id, workshop_id, user_id, slots, reference, total,
		 status, payment_status, gateway_order_id, gateway_payment_id,
		 gateway_signature, deleted, created_at, updated_at)
	VALUES
		(:workshop_order_id, :workshop_id, :user_id, :slots, :reference, :total,
		 :status, :payment_status, :gateway_order_id, :gateway_payment_id,
		 :gateway_signature, :deleted, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, bo); err != nil {
		return fmt.Errorf("inserting workshop order: %w", err)
	}
	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, id string) (WorkshopOrder, error) {
	const q = `SELECT * FROM workshop_orders WHERE workshop_order_id = $1 AND NOT deleted`

	var bo WorkshopOrder
	if err := sqlx.GetContext(ctx, db, &bo, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return WorkshopOrder{}, ErrNotFound
		}
		return WorkshopOrder{}, fmt.Errorf("selecting workshop order[%s]: %w", id, err)
	}
	return bo, nil
}

func ListByUser(ctx context.Context, db sqlx.ExtContext, userID string) ([]WorkshopOrder, error) {
	const q = `SELECT * FROM workshop_orders WHERE user_id = $1 AND NOT deleted ORDER BY created_at DESC`

	bos := []WorkshopOrder{}
	if err := sqlx.SelectContext(ctx, db, &bos, q, userID); err != nil {
		return nil, fmt.Errorf("selecting workshop orders of user[%s]: %w", userID, err)
	}
	return bos, nil
}

func List(ctx context.Context, db sqlx.ExtContext) ([]WorkshopOrder, error) {
	const q = `SELECT * FROM workshop_orders WHERE NOT deleted ORDER BY created_at DESC`

	bos := []WorkshopOrder{}
	if err := sqlx.SelectContext(ctx, db, &bos, q); err != nil {
		return nil, fmt.Errorf("selecting workshop orders: %w", err)
	}
	return bos, nil
}

func AttachGateway(ctx context.Context, db sqlx.ExtContext, id, gatewayOrderID string) error {
	const q = `
	UPDATE workshop_orders SET
		gateway_order_id = $2,
		status = $3,
		updated_at = $4
	WHERE workshop_order_id = $1`

	if _, err := db.ExecContext(ctx, q, id, gatewayOrderID, order.PaymentPending, time.Now().UTC()); err != nil {
		return fmt.Errorf("attaching gateway order to workshop order[%s]: %w", id, err)
	}
	return nil
}

func UpdatePayment(ctx context.Context, db sqlx.ExtContext, id string, status order.Status, paymentStatus, paymentID, signature string) error {
	const q = `
	UPDATE workshop_orders SET
		status = $2,
		payment_status = $3,
		gateway_payment_id = $4,
		gateway_signature = $5,
		updated_at = $6
	WHERE workshop_order_id = $1`

	if _, err := db.ExecContext(ctx, q, id, status, paymentStatus, paymentID, signature, time.Now().UTC()); err != nil {
		return fmt.Errorf("updating payment of workshop order[%s]: %w", id, err)
	}
	return nil
}

func UpdateStatus(ctx context.Context, db sqlx.ExtContext, id string, status order.Status) error {
	const q = `UPDATE workshop_orders SET status = $2, updated_at = $3 WHERE workshop_order_id = $1`

	if _, err := db.ExecContext(ctx, q, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("updating status of workshop order[%s]: %w", id, err)
	}
	return nil
}

func FetchStuck(ctx context.Context, db sqlx.ExtContext, olderThan time.Duration) ([]WorkshopOrder, error) {
	const q = `
	SELECT * FROM workshop_orders
	WHERE status = 'pending'
	  AND gateway_order_id = ''
	  AND NOT deleted
	  AND created_at < $1`

	bos := []WorkshopOrder{}
	if err := sqlx.SelectContext(ctx, db, &bos, q, time.Now().UTC().Add(-olderThan)); err != nil {
		return nil, fmt.Errorf("selecting stuck workshop orders: %w", err)
	}
	return bos, nil
}
