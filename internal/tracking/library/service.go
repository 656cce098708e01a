// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/constants"
	"github.com/taibuivan/readtrack/internal/platform/validate"
	"github.com/taibuivan/readtrack/internal/tracking/progress"
	"github.com/taibuivan/readtrack/pkg/dateutil"
	"github.com/taibuivan/readtrack/pkg/slice"
	"github.com/taibuivan/readtrack/pkg/uuid"
)

// Service implements library use cases and orchestrates progress aggregation.
type Service struct {
	repo        Repository
	invalidator Invalidator
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs a library [Service]. invalidator may be nil.
func NewService(repo Repository, invalidator Invalidator, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		invalidator: invalidator,
		logger:      logger,
		now:         time.Now,
	}
}

// SessionResult is a recorded session together with the re-derived entry.
type SessionResult struct {
	Session *Session `json:"session"`
	Entry   *Entry   `json:"entry"`
}

// # Entries

/*
AddToLibrary starts tracking a book for a user.

Parameters:
  - context: context.Context
  - userID: string
  - bookID: string

Returns:
  - *Entry: New entry in NOT_STARTED state
  - error: apperr.Conflict when already tracked, validation error for an unknown book
*/
func (service *Service) AddToLibrary(context context.Context, userID, bookID string) (*Entry, error) {
	validator := &validate.Validator{}
	validator.Required(FieldBookID, bookID)
	if bookID != "" {
		validator.UUID(FieldBookID, bookID)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:     uuid.New(),
		UserID: userID,
		BookID: bookID,
		Status: progress.NotStarted,
	}
	if err := service.repo.Create(context, entry); err != nil {
		return nil, err
	}

	service.logger.Info("library_entry_added",
		slog.String("user_id", userID),
		slog.String("entry_id", entry.ID),
		slog.String("book_id", bookID),
	)
	service.invalidate(context, userID)

	return service.repo.FindByID(context, userID, entry.ID)
}

// GetEntry returns one of the user's entries.
func (service *Service) GetEntry(context context.Context, userID, entryID string) (*Entry, error) {
	return service.repo.FindByID(context, userID, entryID)
}

// ListEntries returns a filtered page of the user's library.
func (service *Service) ListEntries(context context.Context, userID string, filter Filter, limit, offset int) ([]*Entry, int, error) {
	for _, status := range filter.Statuses {
		if !status.Valid() {
			return nil, 0, apperr.FieldInvalid(FieldStatus, fmt.Sprintf("Unknown status %q", status))
		}
	}
	filter.Query = strings.TrimSpace(filter.Query)
	return service.repo.List(context, userID, filter, limit, offset)
}

/*
UpdateEntry applies a partial update to comment, favorite flag and rating.

Parameters:
  - context: context.Context
  - userID: string
  - entryID: string
  - input: MetaInput (absent fields are left untouched)

Returns:
  - *Entry: Updated entry
  - error: NotFound or validation failures (rating outside 1..5)
*/
func (service *Service) UpdateEntry(context context.Context, userID, entryID string, input MetaInput) (*Entry, error) {
	validator := &validate.Validator{}
	if input.Comment != nil {
		validator.MaxLen(FieldComment, *input.Comment, MaxCommentLength)
	}
	if input.Rating.Set && input.Rating.Value != nil {
		validator.Range(FieldRating, *input.Rating.Value, MinRating, MaxRating)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	entry, err := service.repo.FindByID(context, userID, entryID)
	if err != nil {
		return nil, err
	}

	if input.Comment != nil {
		entry.Comment = *input.Comment
	}
	if input.IsFavorite != nil {
		entry.IsFavorite = *input.IsFavorite
	}
	if input.Rating.Set {
		entry.Rating = input.Rating.Value
	}

	if err := service.repo.UpdateMeta(context, entry); err != nil {
		return nil, err
	}

	service.logger.Info("library_entry_updated", slog.String("user_id", userID), slog.String("entry_id", entryID))
	return entry, nil
}

/*
RemoveEntry deletes an entry together with its sessions and list memberships.

Parameters:
  - context: context.Context
  - userID: string
  - entryID: string

Returns:
  - error: NotFound when absent or owned by someone else
*/
func (service *Service) RemoveEntry(context context.Context, userID, entryID string) error {
	err := service.repo.WithEntryLock(context, entryID, func(tx EntryTx, entry *Entry) error {
		if entry.UserID != userID {
			return apperr.NotFound("Library entry")
		}
		if err := tx.DeleteSessions(context, entryID); err != nil {
			return err
		}
		if err := tx.DeleteMemberships(context, entryID); err != nil {
			return err
		}
		return tx.DeleteEntry(context, entryID)
	})
	if err != nil {
		return err
	}

	service.logger.Info("library_entry_removed", slog.String("user_id", userID), slog.String("entry_id", entryID))
	service.invalidate(context, userID)
	return nil
}

// # Progress

/*
SetPagesRead overwrites an entry's counter directly.

Description: The value must lie in [0, total_pages]; anything else is
rejected and storage is left untouched. Status and finish time are
re-derived in the same locked transaction.

Parameters:
  - context: context.Context
  - userID: string
  - entryID: string
  - pages: int

Returns:
  - *Entry: Re-derived entry
  - error: NotFound or validation failures
*/
func (service *Service) SetPagesRead(context context.Context, userID, entryID string, pages int) (*Entry, error) {
	var updated *Entry
	err := service.repo.WithEntryLock(context, entryID, func(tx EntryTx, entry *Entry) error {
		if entry.UserID != userID {
			return apperr.NotFound("Library entry")
		}

		total := entry.TotalPages()
		if pages < 0 || pages > total {
			return apperr.FieldInvalid(FieldPagesRead, fmt.Sprintf("Must be between 0 and %d", total))
		}

		snapshot := progress.Transition(entry.Snapshot(), pages, total, service.now())
		if err := tx.SaveProgress(context, entryID, snapshot); err != nil {
			return err
		}

		entry.Apply(snapshot)
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("library_entry_progress_set",
		slog.String("user_id", userID),
		slog.String("entry_id", entryID),
		slog.Int("pages_read", updated.PagesRead),
		slog.String("status", string(updated.Status)),
	)
	service.invalidate(context, userID)
	return updated, nil
}

/*
RecordSession appends a session to an entry's ledger and re-aggregates it.

Description: A session that references a missing entry or an entry of
another user is rejected as a validation error before anything is written.

Parameters:
  - context: context.Context
  - userID: string
  - entryID: string
  - input: SessionInput

Returns:
  - *SessionResult: The stored session and the re-derived entry
  - error: Validation failures
*/
func (service *Service) RecordSession(context context.Context, userID, entryID string, input SessionInput) (*SessionResult, error) {
	if err := validateSession(input); err != nil {
		return nil, err
	}

	session := &Session{
		ID:              uuid.New(),
		LibraryEntryID:  entryID,
		Date:            dateutil.Truncate(input.Date),
		PagesRead:       input.PagesRead,
		DurationMinutes: input.DurationMinutes,
		Notes:           strings.TrimSpace(input.Notes),
	}

	var updated *Entry
	err := service.repo.WithEntryLock(context, entryID, func(tx EntryTx, entry *Entry) error {
		if entry.UserID != userID {
			return unknownEntry()
		}
		if err := tx.InsertSession(context, session); err != nil {
			return err
		}
		if err := service.aggregate(context, tx, entry); err != nil {
			return err
		}
		session.BookTitle = entry.Book.Title
		updated = entry
		return nil
	})
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return nil, unknownEntry()
	}
	if err != nil {
		return nil, err
	}

	service.logger.Info("reading_session_recorded",
		slog.String("user_id", userID),
		slog.String("entry_id", entryID),
		slog.String("session_id", session.ID),
		slog.Int("pages", session.PagesRead),
		slog.Int("pages_read", updated.PagesRead),
		slog.String("status", string(updated.Status)),
	)
	service.invalidate(context, userID)

	return &SessionResult{Session: session, Entry: updated}, nil
}

/*
DeleteSession removes a session from the ledger and re-aggregates the entry.

Parameters:
  - context: context.Context
  - userID: string
  - entryID: string
  - sessionID: string

Returns:
  - *Entry: Re-derived entry
  - error: NotFound for an unknown entry or session
*/
func (service *Service) DeleteSession(context context.Context, userID, entryID, sessionID string) (*Entry, error) {
	var updated *Entry
	err := service.repo.WithEntryLock(context, entryID, func(tx EntryTx, entry *Entry) error {
		if entry.UserID != userID {
			return apperr.NotFound("Library entry")
		}

		removed, err := tx.DeleteSession(context, entryID, sessionID)
		if err != nil {
			return err
		}
		if !removed {
			return apperr.NotFound("Reading session")
		}

		if err := service.aggregate(context, tx, entry); err != nil {
			return err
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	service.logger.Info("reading_session_deleted",
		slog.String("user_id", userID),
		slog.String("entry_id", entryID),
		slog.String("session_id", sessionID),
		slog.Int("pages_read", updated.PagesRead),
	)
	service.invalidate(context, userID)
	return updated, nil
}

// ListSessions returns the ledger of one of the user's entries.
func (service *Service) ListSessions(context context.Context, userID, entryID string) ([]*Session, error) {
	if _, err := service.repo.FindByID(context, userID, entryID); err != nil {
		return nil, err
	}
	return service.repo.ListSessions(context, entryID)
}

// History returns the user's sessions between two optional calendar dates.
func (service *Service) History(context context.Context, userID string, from, to *time.Time) ([]*Session, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, apperr.FieldInvalid(FieldFrom, "Must not be after 'to'")
	}
	return service.repo.History(context, userID, from, to)
}

// Stats summarises the user's library by status.
func (service *Service) Stats(context context.Context, userID string) (progress.Stats, error) {
	items, err := service.repo.StatItems(context, userID)
	if err != nil {
		return progress.Stats{}, err
	}
	return progress.Tally(items), nil
}

// # Re-derivation

/*
RederiveBook re-derives every entry tracking a book after its page count changed.

Parameters:
  - context: context.Context
  - bookID: string

Returns:
  - error: First failure; entries processed before it stay re-derived
*/
func (service *Service) RederiveBook(context context.Context, bookID string) error {
	ids, err := service.repo.EntryIDs(context, bookID)
	if err != nil {
		return err
	}

	_, err = service.rederive(context, ids)
	return err
}

/*
RecomputeAll re-derives every entry in the system.

Returns:
  - int: Number of entries whose stored state changed
  - error: First failure
*/
func (service *Service) RecomputeAll(context context.Context) (int, error) {
	ids, err := service.repo.EntryIDs(context, "")
	if err != nil {
		return 0, err
	}

	changed, err := service.rederive(context, ids)
	service.logger.Info("library_recomputed", slog.Int("entries", len(ids)), slog.Int("changed", changed))
	return changed, err
}

// rederive rebuilds each entry from its ledger, or from its current counter
// when it has no sessions, and invalidates the affected users once.
func (service *Service) rederive(context context.Context, entryIDs []string) (int, error) {
	changed := 0
	users := map[string]struct{}{}

	for _, entryID := range entryIDs {
		err := service.repo.WithEntryLock(context, entryID, func(tx EntryTx, entry *Entry) error {
			sessions, err := tx.ListSessions(context, entryID)
			if err != nil {
				return err
			}

			pages := entry.PagesRead
			if len(sessions) > 0 {
				pages = progress.Aggregate(sessionPages(sessions), entry.TotalPages())
			}

			next := progress.Transition(entry.Snapshot(), pages, entry.TotalPages(), service.now())
			if next.PagesRead == entry.PagesRead && next.Status == entry.Status && (next.FinishedAt == nil) == (entry.FinishedAt == nil) {
				return nil
			}

			changed++
			users[entry.UserID] = struct{}{}
			return tx.SaveProgress(context, entryID, next)
		})
		if apperr.HasCode(err, apperr.CodeNotFound) {
			continue
		}
		if err != nil {
			return changed, fmt.Errorf("rederive entry %s: %w", entryID, err)
		}
	}

	for userID := range users {
		service.invalidate(context, userID)
	}
	return changed, nil
}

// # Helpers

// aggregate recomputes a locked entry from its full ledger and persists it.
func (service *Service) aggregate(context context.Context, tx EntryTx, entry *Entry) error {
	sessions, err := tx.ListSessions(context, entry.ID)
	if err != nil {
		return err
	}

	pages := progress.Aggregate(sessionPages(sessions), entry.TotalPages())
	snapshot := progress.Transition(entry.Snapshot(), pages, entry.TotalPages(), service.now())
	if err := tx.SaveProgress(context, entry.ID, snapshot); err != nil {
		return err
	}

	entry.Apply(snapshot)
	return nil
}

func (service *Service) invalidate(context context.Context, userID string) {
	if service.invalidator == nil {
		return
	}
	if err := service.invalidator.InvalidateUser(context, userID); err != nil {
		service.logger.Warn("goal_cache_invalidation_failed", slog.String("user_id", userID), slog.Any("error", err))
	}
}

func sessionPages(sessions []*Session) []int {
	return slice.Map(sessions, func(session *Session) int { return session.PagesRead })
}

func unknownEntry() error {
	return apperr.FieldInvalid(FieldLibraryEntryID, "Library entry does not exist")
}

func validateSession(input SessionInput) error {
	validator := &validate.Validator{}
	validator.Custom(FieldDate, input.Date.IsZero(), "Required")
	validator.Range(FieldPagesRead, input.PagesRead, 1, constants.MaxCount)
	if input.DurationMinutes != nil {
		validator.Range(FieldDurationMinutes, *input.DurationMinutes, 0, constants.MaxCount)
	}
	validator.MaxLen(FieldNotes, input.Notes, MaxNotesLength)
	return validator.Err()
}
