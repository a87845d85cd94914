// Package auth ties scs sessions to the web.Handler chain and implements
// the password signup/login flow. Identity is kept server-side in the
// session; handlers read it back through core/claims.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/crumbline/bakeshop/api/web"
	"github.com/crumbline/bakeshop/api/weberr"
	"github.com/crumbline/bakeshop/core/claims"
)

const (
	sessionUserID = "user_id"
	sessionRole   = "role"
)

// LoadAndSave adapts the session manager's cookie handling to the
// web.Middleware chain and lifts session identity into context claims.
// It must be the outermost middleware.
func LoadAndSave(sess *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			var err error

			wrapped := sess.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := r.Context()

				if uid := sess.GetString(ctx, sessionUserID); uid != "" {
					ctx = claims.Set(ctx, claims.Claims{
						UserID: uid,
						Role:   sess.GetString(ctx, sessionRole),
					})
				}

				err = handler(ctx, w, r)
			}))

			wrapped.ServeHTTP(w, r)
			return err
		}
		return h
	}
	return m
}

// Authenticate is the coarse check: any logged-in user passes.
func Authenticate(sess *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			if _, err := claims.Get(ctx); err != nil {
				return weberr.NotAuthorized(errors.New("no session"))
			}
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Admin gates mutations: 401 without a session, 403 for any non-admin
// role including manager.
func Admin(sess *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			clm, err := claims.Get(ctx)
			if err != nil {
				return weberr.NotAuthorized(errors.New("no session"))
			}
			if clm.Role != claims.RoleAdmin {
				return weberr.Forbidden(errors.New("admin role required"))
			}
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

// Staff admits managers and admins to the read-only back office.
func Staff(sess *scs.SessionManager) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			clm, err := claims.Get(ctx)
			if err != nil {
				return weberr.NotAuthorized(errors.New("no session"))
			}
			if clm.Role != claims.RoleAdmin && clm.Role != claims.RoleManager {
				return weberr.Forbidden(errors.New("staff role required"))
			}
			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
