package settings

import (
	"context"
	"errors"
	"net/http"

	"github.com/crumbline/bakeshop/api/web"
	"github.com/crumbline/bakeshop/api/weberr"
	"github.com/crumbline/bakeshop/validate"
	"github.com/jmoiron/sqlx"
)

func HandleList(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		ss, err := FetchAll(ctx, db)
		if err != nil {
			return err
		}
		return web.Respond(ctx, w, ss, http.StatusOK)
	}
}

func HandleUpsert(db *sqlx.DB) web.Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		key := web.Param(r, "key")
		if key == "" {
			return weberr.BadRequest(errors.New("missing setting key"))
		}

		var up SettingUp
		if err := web.Decode(w, r, &up); err != nil {
			return weberr.BadRequest(err)
		}

		if err := validate.Check(up); err != nil {
			return weberr.NewError(err, err.Error(), http.StatusBadRequest)
		}

		if err := Upsert(ctx, db, key, up.Value); err != nil {
			return err
		}

		return web.Respond(ctx, w, map[string]string{key: up.Value}, http.StatusOK)
	}
}
