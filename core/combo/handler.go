package combo

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
		cs, err := List(ctx, db, !claims.IsStaff(ctx))
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, cs, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if !c.Active && !claims.IsStaff(ctx) {
			return weberr.NotFound(errors.New("combo is not active"))
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var nc ComboNew
		if err := web.Decode(w, r, &nc); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(nc); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := money.Check(nc.Price); err != nil {
			return weberr.NewError(err, "price is not a valid amount", http.StatusBadRequest)
		}
		if err := money.Check(nc.ShippingPrice); err != nil {
			return weberr.NewError(err, "shipping price is not a valid amount", http.StatusBadRequest)
		}

		now := time.Now().UTC()
		c := Combo{
			ID:            validate.GenerateID(),
			Name:          nc.Name,
			Description:   nc.Description,
			Items:         nc.Items,
			ImageURL:      nc.ImageURL,
			Price:         nc.Price,
			ShippingPrice: nc.ShippingPrice,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		if err := Create(ctx, db, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, c, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var up ComboUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if up.Name != nil {
			c.Name = *up.Name
		}
		if up.Description != nil {
			c.Description = *up.Description
		}
		if up.Items != nil {
			c.Items = *up.Items
		}
		if up.ImageURL != nil {
			c.ImageURL = *up.ImageURL
		}
		if up.Price != nil {
			if err := money.Check(*up.Price); err != nil {
				return weberr.NewError(err, "price is not a valid amount", http.StatusBadRequest)
			}
			c.Price = *up.Price
		}
		if up.ShippingPrice != nil {
			if err := money.Check(*up.ShippingPrice); err != nil {
				return weberr.NewError(err, "shipping price is not a valid amount", http.StatusBadRequest)
			}
			c.ShippingPrice = *up.ShippingPrice
		}
		if up.Active != nil {
			c.Active = *up.Active
		}
		c.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, c, http.StatusOK)
	}
}

func HandleDelete(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		c, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		c.Active = false
		c.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, c); err != nil {
			return err
		}

		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
}
