package dessert

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

// HandleList is public; customers see active desserts only, staff see the
// full catalog including deactivated rows.
func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ds, err := List(ctx, db, !claims.IsStaff(ctx))
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, ds, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		d, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if !d.Active && !claims.IsStaff(ctx) {
			return weberr.NotFound(errors.New("dessert is not active"))
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var nd DessertNew
		if err := web.Decode(w, r, &nd); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(nd); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := money.Check(nd.Price); err != nil {
			return weberr.NewError(err, "price is not a valid amount", http.StatusBadRequest)
		}

		now := time.Now().UTC()
		d := Dessert{
			ID:          validate.GenerateID(),
			Name:        nd.Name,
			Description: nd.Description,
			ImageURL:    nd.ImageURL,
			Price:       nd.Price,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := Create(ctx, db, d); err != nil {
			return err
		}

		return web.Respond(ctx, w, d, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var up DessertUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		d, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if up.Name != nil {
			d.Name = *up.Name
		}
		if up.Description != nil {
			d.Description = *up.Description
		}
		if up.ImageURL != nil {
			d.ImageURL = *up.ImageURL
		}
		if up.Price != nil {
			if err := money.Check(*up.Price); err != nil {
				return weberr.NewError(err, "price is not a valid amount", http.StatusBadRequest)
			}
			d.Price = *up.Price
		}
		if up.Active != nil {
			d.Active = *up.Active
		}
		d.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, d); err != nil {
			return err
		}

		return web.Respond(ctx, w, d, http.StatusOK)
	}
}

// HandleDelete soft-deletes by deactivating; historical order items keep
// their snapshots either way.
func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		d, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		d.Active = false
		d.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, d); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
