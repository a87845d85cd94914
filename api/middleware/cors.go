package middleware

import (
	"context"
	"net/http"

	"github.com/crumbline/bakeshop/api/web"
)

// Cors allows the configured storefront origin. Credentials are enabled
// because auth rides on the session cookie.
func Cors(origin string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-CSRF-Token, X-Request-Id")

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
