package special

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/crumbline/bakeshop/api/web"
	"github.com/crumbline/bakeshop/api/weberr"
	"github.com/crumbline/bakeshop/core/claims"
	"github.com/crumbline/bakeshop/money"
	"github.com/crumbline/bakeshop/validate"
	"github.com/jmoiron/sqlx"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ss, err := List(ctx, db, !claims.IsStaff(ctx))
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, ss, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var ns SpecialNew
		if err := web.Decode(w, r, &ns); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(ns); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := money.Check(ns.Price); err != nil {
			return weberr.NewError(err, "price is not a valid amount", http.StatusBadRequest)
		}

		now := time.Now().UTC()
		s := Special{
			ID:          validate.GenerateID(),
			Name:        ns.Name,
			Description: ns.Description,
			ImageURL:    ns.ImageURL,
			Price:       ns.Price,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := Create(ctx, db, s); err != nil {
			return err
		}

		return web.Respond(ctx, w, s, http.StatusCreated)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if _, err := Fetch(ctx, db, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if err := Deactivate(ctx, db, id); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
