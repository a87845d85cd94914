// Package settings is the small key/value store behind storefront
// toggles: opening hours, pickup notice, whether ordering is paused.
package settings

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type Setting struct {
	Key       string    `json:"key" db:"key"`
	Value     string    `json:"value" db:"value"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type SettingUp struct {
	Value string `json:"value" validate:"required,max=2000"`
}

func FetchAll(ctx context.Context, db sqlx.ExtContext) (map[string]string, error) {
	const q = `SELECT * FROM settings`

	ss := []Setting{}
	if err := sqlx.SelectContext(ctx, db, &ss, q); err != nil {
		return nil, fmt.Errorf("selecting settings: %w", err)
	}

	out := make(map[string]string, len(ss))
	for _, s := range ss {
		out[s.Key] = s.Value
	}
	return out, nil
}

func Upsert(ctx context.Context, db sqlx.ExtContext, key, value string) error {
	const q = `
	INSERT INTO settings (key, value, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := db.ExecContext(ctx, q, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upserting setting[%s]: %w", key, err)
	}
	return nil
}
