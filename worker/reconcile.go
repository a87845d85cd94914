// Package worker holds the background jobs of the shop. The reconciler
// sweeps orders that committed locally but never got a gateway order
// attached, either because the gateway call failed or the process died
// between the two steps.
package worker

import (
	"context"
	"time"

	"github.com/crumbline/bakeshop/core/order"
	"github.com/crumbline/bakeshop/core/workshoporder"
	"github.com/crumbline/bakeshop/money"
	"github.com/crumbline/bakeshop/payment"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type Reconciler struct {
	log      *logrus.Logger
	db       *sqlx.DB
	gw       payment.Gateway
	interval time.Duration
	cutoff   time.Duration
	abandon  time.Duration
}

// NewReconciler builds a reconciler. cutoff is how old a pending order
// must be before it is considered stuck rather than in-flight; abandon
// is how old it must be before retrying stops and it gets cancelled.
func NewReconciler(log *logrus.Logger, db *sqlx.DB, gw payment.Gateway, interval, cutoff, abandon time.Duration) *Reconciler {
	return &Reconciler{
		log:      log,
		db:       db,
		gw:       gw,
		interval: interval,
		cutoff:   cutoff,
		abandon:  abandon,
	}
}

// Run sweeps on a ticker until ctx is cancelled.
func (rc *Reconciler) Run(ctx context.Context) {
	tick := time.NewTicker(rc.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			rc.sweep(ctx)
		}
	}
}

func (rc *Reconciler) sweep(ctx context.Context) {
	ords, err := order.FetchStuck(ctx, rc.db, rc.cutoff)
	if err != nil {
		rc.log.WithError(err).Error("reconciler: fetching stuck orders")
	}
	for _, ord := range ords {
		rc.reconcileOrder(ctx, ord)
	}

	bos, err := workshoporder.FetchStuck(ctx, rc.db, rc.cutoff)
	if err != nil {
		rc.log.WithError(err).Error("reconciler: fetching stuck workshop orders")
	}
	for _, bo := range bos {
		rc.reconcileBooking(ctx, bo)
	}
}

func (rc *Reconciler) reconcileOrder(ctx context.Context, ord order.Order) {
	if time.Since(ord.CreatedAt) > rc.abandon {
		if err := order.UpdateStatus(ctx, rc.db, ord.ID, order.Cancelled); err != nil {
			rc.log.WithError(err).WithField("order_id", ord.ID).Error("reconciler: cancelling abandoned order")
		} else {
			rc.log.WithField("order_id", ord.ID).Info("reconciler: cancelled abandoned order")
		}
		return
	}

	paise, err := money.ToPaise(ord.Total)
	if err != nil {
		rc.log.WithError(err).WithField("order_id", ord.ID).Error("reconciler: bad order total")
		return
	}

	gord, err := rc.gw.CreateOrder(ctx, paise, "INR", ord.Reference, map[string]string{"order_id": ord.ID})
	if err != nil {
		rc.log.WithError(err).WithField("order_id", ord.ID).Warn("reconciler: gateway still unavailable")
		return
	}

	if err := order.AttachGateway(ctx, rc.db, ord.ID, gord.ID); err != nil {
		rc.log.WithError(err).WithField("order_id", ord.ID).Error("reconciler: attaching gateway order")
		return
	}
	rc.log.WithField("order_id", ord.ID).Info("reconciler: reattached gateway order")
}

func (rc *Reconciler) reconcileBooking(ctx context.Context, bo workshoporder.WorkshopOrder) {
	if time.Since(bo.CreatedAt) > rc.abandon {
		if err := workshoporder.UpdateStatus(ctx, rc.db, bo.ID, order.Cancelled); err != nil {
			rc.log.WithError(err).WithField("workshop_order_id", bo.ID).Error("reconciler: cancelling abandoned booking")
		} else {
			rc.log.WithField("workshop_order_id", bo.ID).Info("reconciler: cancelled abandoned booking")
		}
		return
	}

	paise, err := money.ToPaise(bo.Total)
	if err != nil {
		rc.log.WithError(err).WithField("workshop_order_id", bo.ID).Error("reconciler: bad booking total")
		return
	}

	gord, err := rc.gw.CreateOrder(ctx, paise, "INR", bo.Reference, map[string]string{"workshop_order_id": bo.ID})
	if err != nil {
		rc.log.WithError(err).WithField("workshop_order_id", bo.ID).Warn("reconciler: gateway still unavailable")
		return
	}

	if err := workshoporder.AttachGateway(ctx, rc.db, bo.ID, gord.ID); err != nil {
		rc.log.WithError(err).WithField("workshop_order_id", bo.ID).Error("reconciler: attaching gateway order")
		return
	}
	rc.log.WithField("workshop_order_id", bo.ID).Info("reconciler: reattached gateway order")
}
