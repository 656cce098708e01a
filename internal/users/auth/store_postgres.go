// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/database/schema"
	"github.com/taibuivan/readtrack/internal/platform/dberr"
	"github.com/taibuivan/readtrack/internal/platform/postgres"
)

// # User Repository

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a PostgreSQL backed [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

var selectUser = fmt.Sprintf(`SELECT %s FROM %s`, strings.Join(schema.UserAccount.Columns(), ", "), schema.UserAccount.Table)

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func userNotFound(err error, action string) error {
	wrapped := dberr.Wrap(err, action)
	if apperr.HasCode(wrapped, apperr.CodeNotFound) {
		return apperr.NotFound("User")
	}
	return wrapped
}

/*
Create persists a new user record into users.account, joining the caller's
transaction when the context carries one.

Parameters:
  - context: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict naming the taken identity, or database errors
*/
func (repository *PostgresUserRepository) Create(context context.Context, user *User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s, %s`,
		schema.UserAccount.Table,
		schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.Email,
		schema.UserAccount.PasswordHash, schema.UserAccount.Role,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
		schema.UserAccount.CreatedAt, schema.UserAccount.UpdatedAt,
	)

	err := postgres.Conn(context, repository.pool).QueryRow(context, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if dberr.IsUniqueViolation(err) {
		if strings.Contains(dberr.Constraint(err), FieldEmail) {
			return apperr.Conflict("Email is already registered")
		}
		return apperr.Conflict("Username is already taken")
	}
	return dberr.Wrap(err, "create_user")
}

// FindByID retrieves an account by primary key.
func (repository *PostgresUserRepository) FindByID(context context.Context, id string) (*User, error) {
	query := selectUser + fmt.Sprintf(` WHERE %s = $1`, schema.UserAccount.ID)

	user, err := scanUser(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, userNotFound(err, "find_user_by_id")
	}
	return user, nil
}

/*
FindByLogin retrieves an account by email or username.

Both identities are unique case-insensitively, so at most one row matches.

Parameters:
  - context: context.Context
  - login: string

Returns:
  - *User: Hydrated account entity
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresUserRepository) FindByLogin(context context.Context, login string) (*User, error) {
	query := selectUser + fmt.Sprintf(` WHERE LOWER(%s) = LOWER($1) OR LOWER(%s) = LOWER($1) LIMIT 1`,
		schema.UserAccount.Email, schema.UserAccount.Username)

	user, err := scanUser(repository.pool.QueryRow(context, query, login))
	if err != nil {
		return nil, userNotFound(err, "find_user_by_login")
	}
	return user, nil
}

// # Session Repository

// PostgresSessionRepository implements [SessionRepository] using pgx.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a PostgreSQL backed [SessionRepository].
func NewSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// Create inserts a new refresh session.
func (repository *PostgresSessionRepository) Create(context context.Context, session *Session) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
		RETURNING %s`,
		schema.UserSession.Table,
		schema.UserSession.ID, schema.UserSession.UserID, schema.UserSession.TokenHash,
		schema.UserSession.UserAgent, schema.UserSession.IPAddress, schema.UserSession.ExpiresAt,
		schema.UserSession.IsRevoked, schema.UserSession.CreatedAt,
		schema.UserSession.CreatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		session.ID, session.UserID, session.TokenHash, session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.CreatedAt)
	return dberr.Wrap(err, "create_session")
}

// FindByTokenHash returns the session stored under the digest.
func (repository *PostgresSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM %s
		WHERE %s = $1`,
		schema.UserSession.ID, schema.UserSession.UserID, schema.UserSession.TokenHash,
		schema.UserSession.UserAgent, schema.UserSession.IPAddress, schema.UserSession.ExpiresAt,
		schema.UserSession.IsRevoked, schema.UserSession.CreatedAt,
		schema.UserSession.Table,
		schema.UserSession.TokenHash,
	)

	session := &Session{}
	err := repository.pool.QueryRow(context, query, tokenHash).Scan(
		&session.ID,
		&session.UserID,
		&session.TokenHash,
		&session.UserAgent,
		&session.IPAddress,
		&session.ExpiresAt,
		&session.IsRevoked,
		&session.CreatedAt,
	)
	if err != nil {
		wrapped := dberr.Wrap(err, "find_session")
		if apperr.HasCode(wrapped, apperr.CodeNotFound) {
			return nil, apperr.NotFound("Session")
		}
		return nil, wrapped
	}
	return session, nil
}

// Revoke flags one session as revoked. Revoking twice is a no-op.
func (repository *PostgresSessionRepository) Revoke(context context.Context, sessionID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE WHERE %s = $1`,
		schema.UserSession.Table, schema.UserSession.IsRevoked, schema.UserSession.ID)

	_, err := repository.pool.Exec(context, query, sessionID)
	return dberr.Wrap(err, "revoke_session")
}

// RevokeAll flags every active session of a user as revoked.
func (repository *PostgresSessionRepository) RevokeAll(context context.Context, userID string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = TRUE WHERE %s = $1 AND %s = FALSE`,
		schema.UserSession.Table, schema.UserSession.IsRevoked, schema.UserSession.UserID, schema.UserSession.IsRevoked)

	_, err := repository.pool.Exec(context, query, userID)
	return dberr.Wrap(err, "revoke_all_sessions")
}

// DeleteExpired removes sessions that expired, or were revoked, before cutoff.
func (repository *PostgresSessionRepository) DeleteExpired(context context.Context, cutoff time.Time) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s < $1 OR (%s = TRUE AND %s < $1)`,
		schema.UserSession.Table, schema.UserSession.ExpiresAt, schema.UserSession.IsRevoked, schema.UserSession.CreatedAt)

	tag, err := repository.pool.Exec(context, query, cutoff)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_expired_sessions")
	}
	return tag.RowsAffected(), nil
}
