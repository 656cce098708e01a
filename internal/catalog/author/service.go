// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/readtrack/internal/platform/validate"
	"github.com/taibuivan/readtrack/pkg/uuid"
)

// Service implements author catalog use cases.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs an author [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ListAuthors returns a page of authors matching filter.
func (service *Service) ListAuthors(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	return service.repo.List(context, filter, limit, offset)
}

// GetAuthor returns one author.
func (service *Service) GetAuthor(context context.Context, id string) (*Author, error) {
	return service.repo.FindByID(context, id)
}

// CreateAuthor validates and persists a new author.
func (service *Service) CreateAuthor(context context.Context, name string) (*Author, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	author := &Author{ID: uuid.New(), Name: name}
	if err := service.repo.Create(context, author); err != nil {
		return nil, err
	}

	service.logger.Info("author_created", slog.String("author_id", author.ID), slog.String("name", author.Name))
	return author, nil
}

// UpdateAuthor renames an existing author.
func (service *Service) UpdateAuthor(context context.Context, id, name string) (*Author, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return nil, err
	}

	author := &Author{ID: id, Name: name}
	if err := service.repo.Update(context, author); err != nil {
		return nil, err
	}

	service.logger.Info("author_updated", slog.String("author_id", author.ID))
	return author, nil
}

// DeleteAuthor removes an author that no book references.
func (service *Service) DeleteAuthor(context context.Context, id string) error {
	if err := service.repo.Delete(context, id); err != nil {
		return err
	}

	service.logger.Warn("author_deleted", slog.String("author_id", id))
	return nil
}

func validateName(name string) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, name).MaxLen(FieldName, name, MaxNameLength)
	return validator.Err()
}
