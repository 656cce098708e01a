// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	// FindByLogin returns the account whose email or username matches, case-insensitively.
	FindByLogin(context context.Context, login string) (*User, error)

	/*
		Create persists a brand-new user account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict when the username or email is taken
	*/
	Create(context context.Context, user *User) error
}

// # Session Data Access

// SessionRepository defines the data access contract for refresh-token sessions.
type SessionRepository interface {

	// Create persists a new session for an authenticated login.
	Create(context context.Context, session *Session) error

	/*
		FindByTokenHash returns the session matching the given token hash,
		whether or not it is still active.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByTokenHash(context context.Context, tokenHash string) (*Session, error)

	// Revoke marks a session as permanently invalidated.
	Revoke(context context.Context, sessionID string) error

	// RevokeAll revokes every active session of a user.
	RevokeAll(context context.Context, userID string) error

	/*
		DeleteExpired physically removes sessions that expired or were revoked
		before the cutoff.

		Parameters:
		  - context: context.Context
		  - cutoff: time.Time

		Returns:
		  - int64: Number of rows removed
		  - error: Persistence failures
	*/
	DeleteExpired(context context.Context, cutoff time.Time) (int64, error)
}

// # Collaborators

// ProfileProvisioner creates the default profile of a freshly registered user.
type ProfileProvisioner interface {
	Provision(context context.Context, userID string) error
}

// Transactor runs fn in one database transaction; fn's error rolls it back.
type Transactor interface {
	WithinTx(context context.Context, fn func(context.Context) error) error
}

// TokenProvider generates signed access tokens.
type TokenProvider interface {
	GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error)
}
