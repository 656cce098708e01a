// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr translates pgx and PostgreSQL errors into [apperr.AppError]s.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
)

// ErrNotFound is returned when a queried row doesn't exist.
var ErrNotFound = apperr.NotFound("Resource")

// Wrap classifies a database error.
//
//   - pgx.ErrNoRows            -> 404 NOT_FOUND
//   - unique_violation (23505) -> 409 CONFLICT
//   - foreign_key_violation    -> 400 VALIDATION_ERROR
//   - check_violation          -> 400 VALIDATION_ERROR
//   - invalid_text_representation (malformed UUID) -> 404 NOT_FOUND
//   - anything else            -> 500, with action recorded in the cause
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// Errors that are already classified pass through untouched.
	if apperr.As(err) != nil {
		return err
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return &apperr.AppError{
				Code:       apperr.CodeConflict,
				Message:    "Resource already exists",
				HTTPStatus: apperr.Conflict("").HTTPStatus,
				Cause:      err,
			}
		case pgerrcode.ForeignKeyViolation:
			ve := apperr.ValidationError("Referenced resource does not exist")
			ve.Cause = err
			return ve
		case pgerrcode.InvalidTextRepresentation:
			return ErrNotFound
		case pgerrcode.CheckViolation:
			ve := apperr.ValidationError("Value violates a storage constraint")
			ve.Cause = err
			return ve
		}
	}

	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}

// IsUniqueViolation reports whether err is a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// IsForeignKeyViolation reports whether err is a PostgreSQL foreign_key_violation.
// Deletes use it to turn a RESTRICT failure into a conflict.
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}

// Constraint returns the name of the violated constraint or index, if any.
func Constraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
