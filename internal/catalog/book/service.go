// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/readtrack/internal/platform/constants"
	"github.com/taibuivan/readtrack/internal/platform/validate"
	"github.com/taibuivan/readtrack/pkg/slug"
	"github.com/taibuivan/readtrack/pkg/uuid"
)

// Service implements book catalog use cases.
type Service struct {
	repo      Repository
	rederiver Rederiver
	logger    *slog.Logger
}

// NewService constructs a book [Service]. rederiver may be nil in tools
// that never change page counts.
func NewService(repo Repository, rederiver Rederiver, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		rederiver: rederiver,
		logger:    logger,
	}
}

// ListBooks returns a page of books matching filter.
func (service *Service) ListBooks(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	return service.repo.List(context, filter, limit, offset)
}

// GetBook returns one book with its author.
func (service *Service) GetBook(context context.Context, id string) (*Book, error) {
	return service.repo.FindByID(context, id)
}

/*
CreateBook validates and persists a new catalog book.

Parameters:
  - context: context.Context
  - input: Input

Returns:
  - *Book: Created book with its author
  - error: Validation failures (including an unknown author) or storage errors
*/
func (service *Service) CreateBook(context context.Context, input Input) (*Book, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	book := &Book{
		ID:         uuid.New(),
		Title:      input.Title,
		Slug:       slug.From(input.Title),
		AuthorID:   input.AuthorID,
		TotalPages: input.TotalPages,
	}
	if err := service.repo.Create(context, book); err != nil {
		return nil, err
	}

	service.logger.Info("book_created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
		slog.Int("total_pages", book.TotalPages),
	)
	return service.repo.FindByID(context, book.ID)
}

/*
UpdateBook replaces a book's writable fields.

Description: When the page count changes, every library entry tracking the
book is re-derived so that pages read stay within the new total. A failed
re-derivation is logged; `readctl recompute` repairs it.

Parameters:
  - context: context.Context
  - id: string
  - input: Input

Returns:
  - *Book: Updated book
  - error: NotFound, validation failures or storage errors
*/
func (service *Service) UpdateBook(context context.Context, id string, input Input) (*Book, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	current, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	book := &Book{
		ID:         id,
		Title:      input.Title,
		Slug:       slug.From(input.Title),
		AuthorID:   input.AuthorID,
		TotalPages: input.TotalPages,
	}
	if err := service.repo.Update(context, book); err != nil {
		return nil, err
	}

	service.logger.Info("book_updated", slog.String("book_id", id))

	if current.TotalPages != book.TotalPages && service.rederiver != nil {
		if err := service.rederiver.RederiveBook(context, id); err != nil {
			service.logger.Error("book_rederive_failed", slog.String("book_id", id), slog.Any("error", err))
		} else {
			service.logger.Info("book_entries_rederived",
				slog.String("book_id", id),
				slog.Int("old_total_pages", current.TotalPages),
				slog.Int("new_total_pages", book.TotalPages),
			)
		}
	}

	return service.repo.FindByID(context, id)
}

// DeleteBook removes a book no reader tracks.
func (service *Service) DeleteBook(context context.Context, id string) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Warn("book_deleted", slog.String("book_id", id))
	return nil
}

func validateInput(input Input) error {
	validator := &validate.Validator{}
	validator.Required(FieldTitle, input.Title).MaxLen(FieldTitle, input.Title, MaxTitleLength)
	validator.Required(FieldAuthorID, input.AuthorID)
	if input.AuthorID != "" {
		validator.UUID(FieldAuthorID, input.AuthorID)
	}
	validator.Range(FieldTotalPages, input.TotalPages, 1, constants.MaxCount)
	return validator.Err()
}
