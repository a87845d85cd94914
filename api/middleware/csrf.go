package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/crumbline/bakeshop/api/web"
	"github.com/crumbline/bakeshop/api/weberr"
)

const (
	CSRFCookie = "csrf_token"
	CSRFHeader = "X-CSRF-Token"
)

// CSRF implements a signed double-submit cookie. Safe methods receive a
// token cookie; mutating methods must echo it back in the X-CSRF-Token
// header and the HMAC must verify.
func CSRF(secret string) web.Middleware {
	m := func(handler web.Handler) web.Handler {
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				if _, err := r.Cookie(CSRFCookie); err != nil {
					tok, err := csrfToken(secret)
					if err != nil {
						return weberr.InternalError(err)
					}
					http.SetCookie(w, &http.Cookie{
						Name:     CSRFCookie,
						Value:    tok,
						Path:     "/",
						SameSite: http.SameSiteLaxMode,
					})
				}
				return handler(ctx, w, r)
			}

			c, err := r.Cookie(CSRFCookie)
			if err != nil {
				return weberr.BadRequest(errors.New("missing csrf cookie"))
			}

			hdr := r.Header.Get(CSRFHeader)
			if hdr == "" || hdr != c.Value || !csrfCheck(secret, hdr) {
				return weberr.BadRequest(errors.New("csrf token mismatch"))
			}

			return handler(ctx, w, r)
		}
		return h
	}
	return m
}

func csrfToken(secret string) (string, error) {
	var nonce [16]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", err
	}
	msg := hex.EncodeToString(nonce[:])
	return msg + "." + csrfSign(secret, msg), nil
}

func csrfSign(secret, msg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

func csrfCheck(secret, token string) bool {
	msg, sig, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	return hmac.Equal([]byte(csrfSign(secret, msg)), []byte(sig))
}
