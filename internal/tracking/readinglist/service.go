// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package readinglist

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/validate"
	"github.com/taibuivan/readtrack/pkg/uuid"
)

// Service implements reading list use cases.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a reading list [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateList creates an empty list.
func (service *Service) CreateList(context context.Context, userID, name string) (*List, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	list := &List{ID: uuid.New(), UserID: userID, Name: name}
	if err := service.repo.Create(context, list); err != nil {
		return nil, err
	}

	service.logger.Info("reading_list_created", slog.String("user_id", userID), slog.String("list_id", list.ID))
	return list, nil
}

// ListLists returns every list of the user.
func (service *Service) ListLists(context context.Context, userID string) ([]*List, error) {
	return service.repo.List(context, userID)
}

// GetList returns a list with its members.
func (service *Service) GetList(context context.Context, userID, listID string) (*List, error) {
	list, err := service.repo.FindByID(context, userID, listID)
	if err != nil {
		return nil, err
	}

	members, err := service.repo.Members(context, listID)
	if err != nil {
		return nil, err
	}
	list.Members = members
	list.MemberCount = len(members)
	return list, nil
}

// RenameList changes a list's name.
func (service *Service) RenameList(context context.Context, userID, listID, name string) (*List, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	list, err := service.repo.FindByID(context, userID, listID)
	if err != nil {
		return nil, err
	}

	list.Name = name
	if err := service.repo.Rename(context, list); err != nil {
		return nil, err
	}

	service.logger.Info("reading_list_renamed", slog.String("user_id", userID), slog.String("list_id", listID))
	return list, nil
}

// DeleteList removes a list and its memberships; the entries remain.
func (service *Service) DeleteList(context context.Context, userID, listID string) error {
	if err := service.repo.Delete(context, userID, listID); err != nil {
		return err
	}

	service.logger.Info("reading_list_deleted", slog.String("user_id", userID), slog.String("list_id", listID))
	return nil
}

/*
AddEntry puts one of the user's library entries into one of their lists.

Parameters:
  - context: context.Context
  - userID: string
  - listID: string
  - entryID: string

Returns:
  - error: NotFound (list or entry), Forbidden (entry of another user),
    Conflict (already a member)
*/
func (service *Service) AddEntry(context context.Context, userID, listID, entryID string) error {
	validator := &validate.Validator{}
	validator.Required(FieldLibraryEntryID, entryID)
	if entryID != "" {
		validator.UUID(FieldLibraryEntryID, entryID)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if _, err := service.repo.FindByID(context, userID, listID); err != nil {
		return err
	}

	owner, err := service.repo.EntryOwner(context, entryID)
	if err != nil {
		return err
	}
	if owner != userID {
		return apperr.Forbidden("Library entry belongs to another user")
	}

	if err := service.repo.AddMember(context, listID, entryID); err != nil {
		return err
	}

	service.logger.Info("reading_list_entry_added",
		slog.String("user_id", userID),
		slog.String("list_id", listID),
		slog.String("entry_id", entryID),
	)
	return nil
}

// RemoveEntry takes an entry out of a list.
func (service *Service) RemoveEntry(context context.Context, userID, listID, entryID string) error {
	if _, err := service.repo.FindByID(context, userID, listID); err != nil {
		return err
	}

	removed, err := service.repo.RemoveMember(context, listID, entryID)
	if err != nil {
		return err
	}
	if !removed {
		return apperr.NotFound("List member")
	}

	service.logger.Info("reading_list_entry_removed",
		slog.String("user_id", userID),
		slog.String("list_id", listID),
		slog.String("entry_id", entryID),
	)
	return nil
}

func validateName(name string) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, MaxNameLength)
	return validator.Err()
}
