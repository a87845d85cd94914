package api

import (
	"context"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/crumbline/bakeshop/api/background"
	"github.com/crumbline/bakeshop/api/middleware"
	"github.com/crumbline/bakeshop/api/web"
	"github.com/crumbline/bakeshop/core/address"
	"github.com/crumbline/bakeshop/core/auth"
	"github.com/crumbline/bakeshop/core/combo"
	"github.com/crumbline/bakeshop/core/dessert"
	"github.com/crumbline/bakeshop/core/order"
	"github.com/crumbline/bakeshop/core/settings"
	"github.com/crumbline/bakeshop/core/special"
	"github.com/crumbline/bakeshop/core/user"
	"github.com/crumbline/bakeshop/core/workshop"
	"github.com/crumbline/bakeshop/core/workshoporder"
	"github.com/crumbline/bakeshop/payment"
	"github.com/crumbline/bakeshop/rate"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type APIConfig struct {
	CorsOrigin     string
	CSRFSecret     string
	Log            logrus.FieldLogger
	DB             *sqlx.DB
	Session        *scs.SessionManager
	Background     *background.Background
	Gateway        payment.Gateway
	RazorpayKeyID  string
	RazorpaySecret string
	OrderMailer    order.Mailer
	BookingMailer  workshoporder.Mailer
	LoginLimiter   *rate.Limiter
}

type api struct {
	*mux.Router
	mw  []web.Middleware
	log logrus.FieldLogger
}

func APIMux(cfg APIConfig) http.Handler {
	a := &api{
		Router: mux.NewRouter(),
		log:    cfg.Log,
	}

	a.mw = append(a.mw, auth.LoadAndSave(cfg.Session))
	a.mw = append(a.mw, middleware.RequestID())
	a.mw = append(a.mw, middleware.Logger(cfg.Log))
	a.mw = append(a.mw, middleware.Errors(cfg.Log))
	a.mw = append(a.mw, middleware.Panics())

	if cfg.CorsOrigin != "" {
		a.mw = append(a.mw, middleware.Cors(cfg.CorsOrigin))

		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusNoContent)
			return nil
		}

		a.Handle(http.MethodOptions, "/{path:.*}", h)
	}

	if cfg.CSRFSecret != "" {
		a.mw = append(a.mw, middleware.CSRF(cfg.CSRFSecret))
	}

	authen := auth.Authenticate(cfg.Session)
	staff := auth.Staff(cfg.Session)
	admin := auth.Admin(cfg.Session)
	loginLimit := middleware.RateLimit(cfg.LoginLimiter)

	a.Handle(http.MethodPost, "/auth/signup", auth.HandleSignup(cfg.DB, cfg.Session), loginLimit)
	a.Handle(http.MethodPost, "/auth/login", auth.HandleLogin(cfg.DB, cfg.Session), loginLimit)
	a.Handle(http.MethodPost, "/auth/logout", auth.HandleLogout(cfg.Session))

	a.Handle(http.MethodGet, "/users/current", user.HandleShowCurrent(cfg.DB), authen)
	a.Handle(http.MethodPut, "/users/current", user.HandleUpdateCurrent(cfg.DB), authen)

	a.Handle(http.MethodGet, "/desserts/{id}", dessert.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/desserts", dessert.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/desserts", dessert.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/desserts/{id}", dessert.HandleUpdate(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/desserts/{id}", dessert.HandleDelete(cfg.DB), admin)

	a.Handle(http.MethodGet, "/combos/{id}", combo.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/combos", combo.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/combos", combo.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/combos/{id}", combo.HandleUpdate(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/combos/{id}", combo.HandleDelete(cfg.DB), admin)

	a.Handle(http.MethodGet, "/specials", special.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/specials", special.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodDelete, "/specials/{id}", special.HandleDelete(cfg.DB), admin)

	a.Handle(http.MethodGet, "/workshops/{id}", workshop.HandleShow(cfg.DB))
	a.Handle(http.MethodGet, "/workshops", workshop.HandleList(cfg.DB))
	a.Handle(http.MethodPost, "/workshops", workshop.HandleCreate(cfg.DB), admin)
	a.Handle(http.MethodPut, "/workshops/{id}", workshop.HandleUpdate(cfg.DB), admin)

	a.Handle(http.MethodPost, "/orders/verify", order.HandleVerify(cfg.DB, cfg.Gateway, cfg.RazorpaySecret, cfg.OrderMailer, cfg.Background), authen)
	a.Handle(http.MethodGet, "/orders/owned", order.HandleListOwned(cfg.DB), authen)
	a.Handle(http.MethodPatch, "/orders/{id}/status", order.HandleStatus(cfg.DB, cfg.OrderMailer, cfg.Background), staff)
	a.Handle(http.MethodGet, "/orders/{id}", order.HandleShow(cfg.DB), authen)
	a.Handle(http.MethodGet, "/orders", order.HandleList(cfg.DB), staff)
	a.Handle(http.MethodPost, "/orders", order.HandleCreate(cfg.DB, cfg.Gateway, cfg.RazorpayKeyID), authen)

	a.Handle(http.MethodPost, "/workshop-orders/verify", workshoporder.HandleVerify(cfg.DB, cfg.Gateway, cfg.RazorpaySecret, cfg.BookingMailer, cfg.Background), authen)
	a.Handle(http.MethodGet, "/workshop-orders/owned", workshoporder.HandleListOwned(cfg.DB), authen)
	a.Handle(http.MethodPatch, "/workshop-orders/{id}/status", workshoporder.HandleStatus(cfg.DB, cfg.BookingMailer, cfg.Background), staff)
	a.Handle(http.MethodGet, "/workshop-orders", workshoporder.HandleList(cfg.DB), staff)
	a.Handle(http.MethodPost, "/workshop-orders", workshoporder.HandleCreate(cfg.DB, cfg.Gateway, cfg.RazorpayKeyID), authen)

	a.Handle(http.MethodGet, "/addresses", address.HandleList(cfg.DB), authen)
	a.Handle(http.MethodPost, "/addresses", address.HandleCreate(cfg.DB), authen)
	a.Handle(http.MethodDelete, "/addresses/{id}", address.HandleDelete(cfg.DB), authen)

	a.Handle(http.MethodGet, "/settings", settings.HandleList(cfg.DB))
	a.Handle(http.MethodPut, "/settings/{key}", settings.HandleUpsert(cfg.DB), admin)

	return a.Router
}

func (a *api) Handle(method string, path string, handler web.Handler, mw ...web.Middleware) {

	handler = web.WrapMiddleware(mw, handler)

	handler = web.WrapMiddleware(a.mw, handler)

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()

		if err := handler(ctx, w, r); err != nil {

			a.log.WithFields(logrus.Fields{
				"req_id":  middleware.ContextRequestID(ctx),
				"message": err,
			}).Error("ERROR")
		}
	})

	a.Router.Handle(path, h).Methods(method)
}
