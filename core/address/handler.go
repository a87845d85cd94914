package address

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/crumbline/bakeshop/api/web"
	"github.com/crumbline/bakeshop/api/weberr"
	"github.com/crumbline/bakeshop/core/claims"
	"github.com/crumbline/bakeshop/validate"
	"github.com/jmoiron/sqlx"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		as, err := ListByUser(ctx, db, clm.UserID)
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, as, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		var na AddressNew
		if err := web.Decode(w, r, &na); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(na); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		now := time.Now().UTC()
		a := Address{
			ID:        validate.GenerateID(),
			UserID:    clm.UserID,
			Label:     na.Label,
			Line1:     na.Line1,
			Line2:     na.Line2,
			City:      na.City,
			Postcode:  na.Postcode,
			Phone:     na.Phone,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := Create(ctx, db, a); err != nil {
			return err
		}

		return web.Respond(ctx, w, a, http.StatusCreated)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		clm, err := claims.Get(ctx)
		if err != nil {
			return weberr.NotAuthorized(errors.New("user not authenticated"))
		}

		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		a, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if a.UserID != clm.UserID && !claims.IsAdmin(ctx) {
			return weberr.Forbidden(errors.New("not the address owner"))
		}

		if err := Delete(ctx, db, id); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
