// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements registration, login and refresh-session rotation.

Access tokens are short-lived RS256 JWTs; refresh tokens are opaque random
strings whose SHA-256 digest is stored in users.session and rotated on every
refresh.
*/
package auth

import (
	"time"

	"github.com/taibuivan/readtrack/internal/platform/sec"
)

// # Domain Entities

// User represents a registered reader.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         sec.UserRole `json:"role"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Session represents a refresh-token session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// Active reports whether the session can still be exchanged.
func (session *Session) Active(now time.Time) bool {
	return !session.IsRevoked && now.Before(session.ExpiresAt)
}

// # Field Identifiers

const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldLogin       = "login"
	FieldAccessToken = "access_token"
	FieldTokenType   = "token_type"
	FieldExpiresIn   = "expires_in"
	FieldUser        = "user"
)

// MaxUsernameLength bounds the username column.
const MaxUsernameLength = 50

// MinUsernameLength is the shortest accepted username.
const MinUsernameLength = 3
