// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package profile

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/readtrack/internal/platform/validate"
	"github.com/taibuivan/readtrack/pkg/pointer"
)

// Service orchestrates profile reads and updates.
type Service struct {
	repository Repository
	logger     *slog.Logger
}

// NewService constructs a profile [Service].
func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{repository: repository, logger: logger}
}

// Provision creates the default profile of a new account.
func (service *Service) Provision(context context.Context, userID string) error {
	return service.repository.Provision(context, userID)
}

// GetProfile returns the caller's profile.
func (service *Service) GetProfile(context context.Context, userID string) (*Profile, error) {
	return service.repository.Get(context, userID)
}

/*
UpdateProfile applies a partial set of changes to a profile.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateInput

Returns:
  - *Profile: The updated profile
  - error: Validation or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateInput) (*Profile, error) {
	validator := &validate.Validator{}
	if input.AvatarURL != nil {
		input.AvatarURL = pointer.To(strings.TrimSpace(*input.AvatarURL))
		validator.MaxLen(FieldAvatarURL, *input.AvatarURL, MaxAvatarURLLength).URL(FieldAvatarURL, *input.AvatarURL)
	}
	validator.MaxLen(FieldBio, pointer.Val(input.Bio), MaxBioLength)
	if input.FavoriteGenre != nil {
		input.FavoriteGenre = pointer.To(strings.TrimSpace(*input.FavoriteGenre))
		validator.MaxLen(FieldFavoriteGenre, *input.FavoriteGenre, MaxFavoriteGenreLength)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	profile, err := service.repository.Get(context, userID)
	if err != nil {
		return nil, err
	}

	// An empty avatar clears it.
	if input.AvatarURL != nil {
		profile.AvatarURL = pointer.NonZero(*input.AvatarURL)
	}
	profile.Bio = pointer.Fallback(input.Bio, profile.Bio)
	profile.FavoriteGenre = pointer.Fallback(input.FavoriteGenre, profile.FavoriteGenre)

	if err := service.repository.Save(context, profile); err != nil {
		return nil, err
	}

	service.logger.Info("user_profile_updated", slog.String("user_id", userID))
	return profile, nil
}
