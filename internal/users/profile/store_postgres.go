// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/database/schema"
	"github.com/taibuivan/readtrack/internal/platform/dberr"
	"github.com/taibuivan/readtrack/internal/platform/postgres"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a PostgreSQL backed profile store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Provision inserts an empty profile unless one exists. It runs on the
// caller's transaction when the context carries one.
func (repository *PostgresRepository) Provision(context context.Context, userID string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s)
		VALUES ($1, NOW())
		ON CONFLICT (%s) DO NOTHING`,
		schema.UserProfile.Table, schema.UserProfile.UserID, schema.UserProfile.UpdatedAt,
		schema.UserProfile.UserID,
	)

	_, err := postgres.Conn(context, repository.pool).Exec(context, query, userID)
	return dberr.Wrap(err, "provision_profile")
}

/*
Get reads the account joined with its profile.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Profile: Hydrated profile; defaults when the profile row is missing
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresRepository) Get(context context.Context, userID string) (*Profile, error) {
	account, prof := schema.UserAccount, schema.UserProfile
	query := fmt.Sprintf(`
		SELECT a.%s, a.%s, a.%s, p.%s, COALESCE(p.%s, ''), COALESCE(p.%s, ''), COALESCE(p.%s, a.%s)
		FROM %s a
		LEFT JOIN %s p ON p.%s = a.%s
		WHERE a.%s = $1`,
		account.ID, account.Username, account.Email,
		prof.AvatarURL, prof.Bio, prof.FavoriteGenre, prof.UpdatedAt, account.UpdatedAt,
		account.Table,
		prof.Table, prof.UserID, account.ID,
		account.ID,
	)

	profile := &Profile{}
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&profile.UserID,
		&profile.Username,
		&profile.Email,
		&profile.AvatarURL,
		&profile.Bio,
		&profile.FavoriteGenre,
		&profile.UpdatedAt,
	)
	if err != nil {
		wrapped := dberr.Wrap(err, "get_profile")
		if apperr.HasCode(wrapped, apperr.CodeNotFound) {
			return nil, apperr.NotFound("Profile")
		}
		return nil, wrapped
	}
	return profile, nil
}

// Save upserts the profile fields.
func (repository *PostgresRepository) Save(context context.Context, profile *Profile) error {
	prof := schema.UserProfile
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (%s) DO UPDATE
		SET %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = EXCLUDED.%s, %s = NOW()
		RETURNING %s`,
		prof.Table, prof.UserID, prof.AvatarURL, prof.Bio, prof.FavoriteGenre, prof.UpdatedAt,
		prof.UserID,
		prof.AvatarURL, prof.AvatarURL, prof.Bio, prof.Bio, prof.FavoriteGenre, prof.FavoriteGenre, prof.UpdatedAt,
		prof.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		profile.UserID, profile.AvatarURL, profile.Bio, profile.FavoriteGenre,
	).Scan(&profile.UpdatedAt)
	return dberr.Wrap(err, "save_profile")
}
