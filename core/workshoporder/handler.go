package workshoporder

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
	"github.com/crumbline/bakeshop/core/order"
	"github.com/crumbline/bakeshop/core/user"
	"github.com/crumbline/bakeshop/core/workshop"
	"github.com/crumbline/bakeshop/database"
	"github.com/crumbline/bakeshop/money"
	"github.com/crumbline/bakeshop/payment"
	"github.com/crumbline/bakeshop/random"
	"github.com/crumbline/bakeshop/validate"
	"github.com/jmoiron/sqlx"
)

type checkoutResponse struct {
	Booking        WorkshopOrder `json:"booking"`
	GatewayOrderID string        `json:"gatewayOrderId"`
	Key            string        `json:"key"`
}

// HandleCreate books slots on a workshop. The availability check here is
// advisory only; the binding check happens at verification time under a
// row lock.
func HandleCreate(db *sqlx.DB, gw payment.Gateway, keyID string) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if _, err := claims.Get(ctx); err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var nb BookingNew
		if err := web.Decode(w, r, &nb); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(nb); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		ws, err := workshop.Fetch(ctx, db, nb.WorkshopID)
		if err != nil {
			if errors.Is(err, workshop.ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}
		if ws.Status != workshop.Active {
			err := errors.New("workshop is not open for booking")
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		booked, err := workshop.CountBooked(ctx, db, ws.ID, "00000000-0000-0000-0000-000000000000")
		if err != nil {
			return err
		}
		if booked+nb.Slots > ws.MaxBookings {
			err := errors.New("not enough slots available")
			return weberr.NewError(err, err.Error(), http.StatusUnprocessableEntity)
		}

		pricePaise, err := money.ToPaise(ws.Price)
		if err != nil {
			return fmt.Errorf("workshop[%s] has an invalid price: %w", ws.ID, err)
		}
		totalPaise := pricePaise * int64(nb.Slots)

		var bo WorkshopOrder
		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			usr, err := user.FetchByEmail(ctx, tx, nb.Email)
			if err != nil {
				if errors.Is(err, user.ErrNotFound) {
					return weberr.NotFound(fmt.Errorf("no account for email: %w", err))
				}
				return err
			}

			if err := user.UpdateContact(ctx, tx, usr.ID, nb.Name, nb.Phone); err != nil {
				return err
			}

			now := time.Now().UTC()
			bo = WorkshopOrder{
				ID:            validate.GenerateID(),
				WorkshopID:    ws.ID,
				UserID:        usr.ID,
				Slots:         nb.Slots,
				Reference:     "WKS-" + random.String(8),
				Total:         money.FromPaise(totalPaise),
				Status:        order.Pending,
				PaymentStatus: payment.StatusCreated,
				CreatedAt:     now,
				UpdatedAt:     now,
			}

			return Create(ctx, tx, bo)
		})
		if err != nil {
			return fmt.Errorf("creating workshop order: %w", err)
		}

		gwOrd, err := gw.CreateOrder(ctx, totalPaise, "INR", bo.Reference, map[string]string{
			"workshop_order_id": bo.ID,
		})
		if err != nil {
			return fmt.Errorf("workshop order[%s] committed but gateway order failed: %w", bo.ID, err)
		}

		if err := AttachGateway(ctx, db, bo.ID, gwOrd.ID); err != nil {
			return err
		}
		bo.GatewayOrderID = gwOrd.ID
		bo.Status = order.PaymentPending

		resp := checkoutResponse{
			Booking:        bo,
			GatewayOrderID: gwOrd.ID,
			Key:            keyID,
		}
		return web.Respond(ctx, w, resp, http.StatusCreated)
	}
}

// HandleVerify mirrors the order verification but adds the capacity
// guard. The workshop row is locked and bookings are counted inside the
// same transaction that writes the outcome, so two concurrent
// verifications cannot both see a free slot. When the workshop filled up
// while this payment was in flight the money has already been captured;
// the booking is cancelled and flagged for refund instead of paid.
func HandleVerify(db *sqlx.DB, gw payment.Gateway, secret string, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var vn VerifyNew
		if err := web.Decode(w, r, &vn); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(vn); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		bo, err := Fetch(ctx, db, vn.OrderID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if bo.GatewayOrderID == "" || bo.GatewayOrderID != vn.GatewayOrderID {
			return weberr.BadRequest(errors.New("gateway order does not belong to this booking"))
		}

		if !payment.VerifySignature(vn.GatewayOrderID, vn.GatewayPaymentID, secret, vn.GatewaySignature) {
			return weberr.BadRequest(errors.New("invalid payment signature"))
		}

		// A replayed callback after the booking settled is a no-op: no
		// write, no second round of capacity checks or emails.
		if bo.Status != order.Pending && bo.Status != order.PaymentPending {
			return web.Respond(ctx, w, map[string]any{
				"success":    true,
				"alreadySet": true,
				"status":     bo.Status,
			}, http.StatusOK)
		}

		pay, err := gw.FetchPayment(ctx, vn.GatewayPaymentID)
		if err != nil {
			return fmt.Errorf("fetching payment state from gateway: %w", err)
		}

		if pay.Status != payment.StatusCaptured {
			if err := UpdatePayment(ctx, db, bo.ID, order.PaymentPending, pay.Status, pay.ID, vn.GatewaySignature); err != nil {
				return err
			}
			return web.Respond(ctx, w, map[string]any{
				"success": true,
				"status":  order.PaymentPending,
			}, http.StatusOK)
		}

		var (
			ws       workshop.Workshop
			overflow bool
		)
		err = database.Transaction(db, func(tx sqlx.ExtContext) error {
			ws, err = workshop.FetchForUpdate(ctx, tx, bo.WorkshopID)
			if err != nil {
				return err
			}

			booked, err := workshop.CountBooked(ctx, tx, ws.ID, bo.ID)
			if err != nil {
				return err
			}

			if booked+bo.Slots > ws.MaxBookings {
				overflow = true
				return UpdatePayment(ctx, tx, bo.ID, order.Cancelled, payment.StatusRefunded, pay.ID, vn.GatewaySignature)
			}

			return UpdatePayment(ctx, tx, bo.ID, order.Paid, payment.StatusCaptured, pay.ID, vn.GatewaySignature)
		})
		if err != nil {
			return fmt.Errorf("settling workshop order[%s]: %w", bo.ID, err)
		}

		usr, err := user.Fetch(ctx, db, bo.UserID)
		if err != nil {
			return err
		}

		if overflow {
			bo.Status = order.Cancelled
			bo.PaymentStatus = payment.StatusRefunded

			bg.Go("booking-refund-email", func() error {
				return mailer.BookingRefund(usr.Email, bo, ws)
			})

			return web.Respond(ctx, w, map[string]any{
				"success": false,
				"status":  order.Cancelled,
				"error":   "the workshop filled up before payment completed; the amount will be refunded",
			}, http.StatusOK)
		}

		bo.Status = order.Paid
		bo.PaymentStatus = payment.StatusCaptured

		bg.Go("booking-confirmation-email", func() error {
			return mailer.BookingConfirmation(usr.Email, bo, ws)
		})

		return web.Respond(ctx, w, map[string]any{
			"success": true,
			"status":  order.Paid,
		}, http.StatusOK)
	}
}

// HandleStatus applies the same two-tier rule as order status: staff may
// reach it, only admins may write.
func HandleStatus(db *sqlx.DB, mailer Mailer, bg *background.Background) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if !claims.IsAdmin(ctx) {
			return weberr.Forbidden(errors.New("only admins may change booking status"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var up order.StatusUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		bo, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if bo.Status == up.Status {
			return web.Respond(ctx, w, map[string]any{
				"success":    true,
				"alreadySet": true,
				"status":     bo.Status,
			}, http.StatusOK)
		}

		if !order.CanTransition(bo.Status, up.Status) {
			err := fmt.Errorf("cannot transition booking from %s to %s", bo.Status, up.Status)
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if err := UpdateStatus(ctx, db, bo.ID, up.Status); err != nil {
			return err
		}
		bo.Status = up.Status

		ws, err := workshop.Fetch(ctx, db, bo.WorkshopID)
		if err != nil {
			return err
		}
		usr, err := user.Fetch(ctx, db, bo.UserID)
		if err != nil {
			return err
		}

		bg.Go("booking-status-email", func() error {
			return mailer.BookingStatus(usr.Email, bo, ws)
		})

		return web.Respond(ctx, w, map[string]any{
			"success": true,
			"status":  bo.Status,
		}, http.StatusOK)
	}
}

func HandleListOwned(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		bos, err := ListByUser(ctx, db, clm.UserID)
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, bos, http.StatusOK)
	}
}

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		bos, err := List(ctx, db)
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, bos, http.StatusOK)
	}
}
