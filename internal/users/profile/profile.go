// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package profile manages the per-user reader profile: avatar URL, bio and
favorite genre.

A default profile is provisioned by registration. Reads fall back to the
defaults when the row is missing, so a failed provisioning never hides the
account.
*/
package profile

import (
	"context"
	"time"
)

// # Domain Entities

// Profile is the caller's identity joined with their profile fields.
type Profile struct {
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	AvatarURL     *string   `json:"avatar_url"`
	Bio           string    `json:"bio"`
	FavoriteGenre string    `json:"favorite_genre"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// UpdateInput is a partial profile update. Nil fields are left unchanged;
// an empty avatar URL clears it.
type UpdateInput struct {
	AvatarURL     *string
	Bio           *string
	FavoriteGenre *string
}

// # Field Identifiers

const (
	FieldAvatarURL     = "avatar_url"
	FieldBio           = "bio"
	FieldFavoriteGenre = "favorite_genre"
)

// # Limits

const (
	MaxBioLength           = 1000
	MaxFavoriteGenreLength = 100
	MaxAvatarURLLength     = 2048
)

// # Repository Contract

// Repository defines the persistence contract for profiles.
type Repository interface {

	// Provision inserts the default profile row. Existing rows are kept.
	Provision(context context.Context, userID string) error

	/*
		Get returns the profile of a user.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *Profile: Account identity with profile fields or defaults
		  - error: apperr.NotFound when the account does not exist
	*/
	Get(context context.Context, userID string) (*Profile, error)

	// Save writes every profile field, creating the row when absent.
	Save(context context.Context, profile *Profile) error
}
