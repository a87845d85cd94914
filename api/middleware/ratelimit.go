package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/crumbline/bakeshop/api/web"
	"github.com/crumbline/bakeshop/api/weberr"
	"github.com/crumbline/bakeshop/rate"
)

// RateLimit rejects clients that exceed the limiter's budget, keyed by
// remote host. Wired on the auth endpoints to slow brute force attempts.
func RateLimit(lim *rate.Limiter) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}

			if !lim.Check(host) {
				return weberr.NewError(
					errors.New("rate limit exceeded"),
					"too many requests, slow down",
					http.StatusTooManyRequests,
				)
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
