package order

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/crumbline/bakeshop/api/background"
	"github.com/crumbline/bakeshop/api/web"
	"github.com/crumbline/bakeshop/api/weberr"
	"github.com/crumbline/bakeshop/core/claims"
	"github.com/crumbline/bakeshop/core/user"
	"github.com/crumbline/bakeshop/database"
	"github.com/crumbline/bakeshop/money"
	"github.com/crumbline/bakeshop/payment"
	"github.com/crumbline/bakeshop/random"
	"github.com/crumbline/bakeshop/validate"
	"github.com/jmoiron/sqlx"
)

// checkoutResponse hands the storefront what it needs to open the gateway
// checkout: the local order, the gateway order id and the public key id.
type checkoutResponse struct {
	Order          Order  `json:"order"`
	GatewayOrderID string `json:"gatewayOrderId"`
	Key            string `json:"key"`
}

// HandleCreate is the order intake. The order and its items commit in one
// transaction; the gateway order is opened afterwards, outside of it. If
// that second step fails the order stays pending without a gateway id and
// the reconciliation worker picks it up.
func HandleCreate(db *sqlx.DB, gw payment.Gateway, keyID string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if _, err := claims.Get(ctx); err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var no OrderNew
		if err := web.Decode(w, r, &no); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(no); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		// The total is structural validation only: it must parse, but it
		// is persisted as submitted, not recomputed from the items.
		paise, err := money.ToPaise(no.Total)
		if err != nil {
			return weberr.NewError(err, "total is not a valid amount", http.StatusBadRequest)
		}
		for _, it := range no.Items {
			if err := money.Check(it.Price); err != nil {
				return weberr.NewError(err, "item price is not a valid amount", http.StatusBadRequest)
			}
		}

		var ord Order
		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			usr, err := user.FetchByEmail(ctx, tx, no.Email)
			if err != nil {
				if errors.Is(err, user.ErrNotFound) {
					return weberr.NotFound(fmt.Errorf("no account for email: %w", err))
				}
				return err
			}

			if err := user.UpdateContact(ctx, tx, usr.ID, no.Name, no.Phone); err != nil {
				return err
			}

			now := time.Now().UTC()
			ord = Order{
				ID:            validate.GenerateID(),
				UserID:        usr.ID,
				Reference:     "ORD-" + random.String(8),
				Total:         no.Total,
				Status:        Pending,
				PaymentStatus: payment.StatusCreated,
				PickupAt:      no.PickupAt,
				Note:          no.Note,
				CreatedAt:     now,
				UpdatedAt:     now,
			}

			if err := Create(ctx, tx, ord); err != nil {
				return err
			}

			for _, ni := range no.Items {
				it := Item{
					OrderID:   ord.ID,
					ItemID:    ni.ItemID,
					ItemType:  ni.ItemType,
					Name:      ni.Name,
					Price:     ni.Price,
					Quantity:  ni.Quantity,
					CreatedAt: now,
				}
				if err := CreateItem(ctx, tx, it); err != nil {
					return err
				}
			}

			return nil
		})
		if err != nil {
			return fmt.Errorf("creating order: %w", err)
		}

		gwOrd, err := gw.CreateOrder(ctx, paise, "INR", ord.Reference, map[string]string{
			"order_id": ord.ID,
		})
		if err != nil {
			return fmt.Errorf("order[%s] committed but gateway order failed: %w", ord.ID, err)
		}

		if err := AttachGateway(ctx, db, ord.ID, gwOrd.ID); err != nil {
			return err
		}
		ord.GatewayOrderID = gwOrd.ID
		ord.Status = PaymentPending

		resp := checkoutResponse{
			Order:          ord,
			GatewayOrderID: gwOrd.ID,
			Key:            keyID,
		}
		return web.Respond(ctx, w, resp, http.StatusCreated)
	}
}

// HandleVerify checks the gateway callback signature, then trusts only the
// gateway's own record of the payment. A bad signature never mutates
// state.
func HandleVerify(db *sqlx.DB, gw payment.Gateway, secret string, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var vn VerifyNew
		if err := web.Decode(w, r, &vn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(vn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		ord, err := Fetch(ctx, db, vn.OrderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if ord.GatewayOrderID == "" || ord.GatewayOrderID != vn.GatewayOrderID {
			return weberr.BadRequest(errors.New("gateway order does not belong to this order"))
		}

		if !payment.VerifySignature(vn.GatewayOrderID, vn.GatewayPaymentID, secret, vn.GatewaySignature) {
			return weberr.BadRequest(errors.New("invalid payment signature"))
		}

		// A replayed callback after the order settled is a no-op: no
		// write, no second confirmation email.
		if ord.Status != Pending && ord.Status != PaymentPending {
			return web.Respond(ctx, w, map[string]any{
				"success":    true,
				"alreadySet": true,
				"status":     ord.Status,
			}, http.StatusOK)
		}

		pay, err := gw.FetchPayment(ctx, vn.GatewayPaymentID)
		if err != nil {
			return fmt.Errorf("fetching payment state from gateway: %w", err)
		}

		if pay.Status != payment.StatusCaptured {
			if err := UpdatePayment(ctx, db, ord.ID, PaymentPending, pay.Status, pay.ID, vn.GatewaySignature); err != nil {
				return err
			}
			return web.Respond(ctx, w, map[string]any{
				"success": true,
				"status":  PaymentPending,
			}, http.StatusOK)
		}

		if err := UpdatePayment(ctx, db, ord.ID, Paid, payment.StatusCaptured, pay.ID, vn.GatewaySignature); err != nil {
			return err
		}
		ord.Status = Paid
		ord.PaymentStatus = payment.StatusCaptured
		ord.GatewayPaymentID = pay.ID

		usr, err := user.Fetch(ctx, db, ord.UserID)
		if err != nil {
			return err
		}
		items, err := FetchItems(ctx, db, ord.ID)
		if err != nil {
			return err
		}

		bg.Go("order-confirmation-email", func() error {
			return mailer.OrderConfirmation(usr.Email, ord, items)
		})

		return web.Respond(ctx, w, map[string]any{
			"success": true,
			"status":  Paid,
		}, http.StatusOK)
	}
}

// HandleStatus is the admin transition endpoint. Managers clear the
// coarse session check but are rejected here: the second tier is
// deliberate, back office staff browse orders read-only.
func HandleStatus(db *sqlx.DB, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if !claims.IsAdmin(ctx) {
			return weberr.Forbidden(errors.New("only admins may change order status"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var up StatusUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		ord, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		// Re-submitting the current status is a no-op: no write, no
		// second notification email.
		if ord.Status == up.Status {
			return web.Respond(ctx, w, map[string]any{
				"success":    true,
				"alreadySet": true,
				"status":     ord.Status,
			}, http.StatusOK)
		}

		if !CanTransition(ord.Status, up.Status) {
			err := fmt.Errorf("cannot transition order from %s to %s", ord.Status, up.Status)
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if err := UpdateStatus(ctx, db, ord.ID, up.Status); err != nil {
			return err
		}
		ord.Status = up.Status

		usr, err := user.Fetch(ctx, db, ord.UserID)
		if err != nil {
			return err
		}

		bg.Go("order-status-email", func() error {
			return mailer.OrderStatus(usr.Email, ord)
		})

		return web.Respond(ctx, w, map[string]any{
			"success": true,
			"status":  ord.Status,
		}, http.StatusOK)
	}
}

func HandleListOwned(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		ords, err := ListByUser(ctx, db, clm.UserID)
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, ords, http.StatusOK)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ords, err := List(ctx, db)
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, ords, http.StatusOK)
	}
}

// HandleShow returns one order with items, for its owner or back office
// staff.
func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		ord, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if !claims.IsUser(ctx, ord.UserID) && !claims.IsStaff(ctx) {
			return weberr.Forbidden(errors.New("not the order owner"))
		}

		items, err := FetchItems(ctx, db, ord.ID)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, map[string]any{
			"order": ord,
			"items": items,
		}, http.StatusOK)
	}
}
