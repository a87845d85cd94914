package workshop

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
		wss, err := List(ctx, db, !claims.IsStaff(ctx))
		if err != nil {
			return err
		}

		avs := make([]Availability, 0, len(wss))
		for _, ws := range wss {
			av, err := availability(ctx, db, ws)
			if err != nil {
				return err
			}
			avs = append(avs, av)
		}

		return web.Respond(ctx, w, avs, http.StatusOK)
	}
}

func HandleShow(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		ws, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if ws.Status != Active && !claims.IsStaff(ctx) {
			return weberr.NotFound(errors.New("workshop is not active"))
		}

		av, err := availability(ctx, db, ws)
		if err != nil {
			return err
		}

		return web.Respond(ctx, w, av, http.StatusOK)
	}
}

func HandleCreate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		var nw WorkshopNew
		if err := web.Decode(w, r, &nw); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(nw); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}
		if err := money.Check(nw.Price); err != nil {
			return weberr.NewError(err, "price is not a valid amount", http.StatusBadRequest)
		}

		now := time.Now().UTC()
		ws := Workshop{
			ID:          validate.GenerateID(),
			Title:       nw.Title,
			Description: nw.Description,
			ImageURL:    nw.ImageURL,
			Price:       nw.Price,
			MaxBookings: nw.MaxBookings,
			HeldAt:      nw.HeldAt,
			Status:      Active,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		if err := Create(ctx, db, ws); err != nil {
			return err
		}

		return web.Respond(ctx, w, ws, http.StatusCreated)
	}
}

func HandleUpdate(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		id := web.Param(r, "id")
		if err := validate.CheckID(id); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		var up WorkshopUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		ws, err := Fetch(ctx, db, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return weberr.NotFound(err)
			}
			return err
		}

		if up.Title != nil {
			ws.Title = *up.Title
		}
		if up.Description != nil {
			ws.Description = *up.Description
		}
		if up.ImageURL != nil {
			ws.ImageURL = *up.ImageURL
		}
		if up.Price != nil {
			if err := money.Check(*up.Price); err != nil {
				return weberr.NewError(err, "price is not a valid amount", http.StatusBadRequest)
			}
			ws.Price = *up.Price
		}
		if up.MaxBookings != nil {
			ws.MaxBookings = *up.MaxBookings
		}
		if up.HeldAt != nil {
			ws.HeldAt = *up.HeldAt
		}
		if up.Status != nil {
			ws.Status = *up.Status
		}
		ws.UpdatedAt = time.Now().UTC()

		if err := Update(ctx, db, ws); err != nil {
			return err
		}

		return web.Respond(ctx, w, ws, http.StatusOK)
	}
}

func availability(ctx context.Context, db *sqlx.DB, ws Workshop) (Availability, error) {
	booked, err := CountBooked(ctx, db, ws.ID, "00000000-0000-0000-0000-000000000000")
	if err != nil {
		return Availability{}, err
	}

	free := ws.MaxBookings - booked
	if free < 0 {
		free = 0
	}

	return Availability{
		Workshop:        ws,
		CurrentBookings: booked,
		AvailableSlots:  free,
	}, nil
}
