package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/crumbline/bakeshop/api/web"
	"github.com/crumbline/bakeshop/api/weberr"
)

// Panics converts a handler panic into an error carrying the stack, so the
// errors middleware logs it and the server keeps running.
func Panics() web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) (err error) {

			defer func() {
				if rec := recover(); rec != nil {
					trace := debug.Stack()
					err = weberr.InternalError(
						fmt.Errorf("panic: %v", rec),
						weberr.WithFields(map[string]interface{}{
							"stack": string(trace),
						}),
					)
				}
			}()

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}
