package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/crumbline/bakeshop/api/web"
	"github.com/crumbline/bakeshop/api/weberr"
	"github.com/crumbline/bakeshop/core/claims"
	"github.com/crumbline/bakeshop/core/user"
	"github.com/crumbline/bakeshop/validate"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
)

type SignupNew struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,max=20"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginNew struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func HandleSignup(db *sqlx.DB, sess *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var nu SignupNew
		if err := web.Decode(w, r, &nu); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(nu); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(nu.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hashing password: %w", err)
		}

		now := time.Now().UTC()
		usr := user.User{
			ID:           validate.GenerateID(),
			Email:        nu.Email,
			PasswordHash: hash,
			Name:         nu.Name,
			Phone:        nu.Phone,
			Role:         claims.RoleCustomer,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := user.Create(ctx, db, usr); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == "23505" {
				return weberr.NewError(err, "email already registered", http.StatusConflict)
			}
			return err
		}

		if err := login(ctx, sess, usr); err != nil {
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusCreated)
	}
}

func HandleLogin(db *sqlx.DB, sess *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var ln LoginNew
		if err := web.Decode(w, r, &ln); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(ln); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		usr, err := user.FetchByEmail(ctx, db, ln.Email)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return weberr.NotAuthorized(errors.New("unknown email"))
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(ln.Password)); err != nil {
			return weberr.NotAuthorized(errors.New("wrong password"))
		}

		if err := login(ctx, sess, usr); err != nil {
			return err
		}

		return web.Respond(ctx, w, usr, http.StatusOK)
	}
}

func HandleLogout(sess *scs.SessionManager) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		if err := sess.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying session: %w", err)
		}
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}

// login rotates the session token before binding the identity, against
// session fixation.
func login(ctx context.Context, sess *scs.SessionManager, usr user.User) error {
	if err := sess.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	sess.Put(ctx, sessionUserID, usr.ID)
	sess.Put(ctx, sessionRole, usr.Role)
	return nil
}
