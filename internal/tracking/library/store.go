// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"time"

	"github.com/taibuivan/readtrack/internal/tracking/progress"
)

// Repository defines the persistence contract for library entries and their
// session ledger.
type Repository interface {

	/*
		Create inserts a new entry.

		Returns:
		  - error: apperr.Conflict when the user already tracks the book,
		    validation error when the book does not exist
	*/
	Create(context context.Context, entry *Entry) error

	// FindByID returns an entry owned by userID, or apperr.NotFound.
	FindByID(context context.Context, userID, entryID string) (*Entry, error)

	// List returns a page of the user's entries, most recently added first.
	List(context context.Context, userID string, filter Filter, limit, offset int) ([]*Entry, int, error)

	// UpdateMeta persists comment, favorite flag and rating.
	UpdateMeta(context context.Context, entry *Entry) error

	// StatItems returns the status and counter of every entry of a user.
	StatItems(context context.Context, userID string) ([]progress.Item, error)

	// ListSessions returns an entry's ledger, newest first.
	ListSessions(context context.Context, entryID string) ([]*Session, error)

	// History returns the user's sessions in [from, to], newest first.
	// Nil bounds are open.
	History(context context.Context, userID string, from, to *time.Time) ([]*Session, error)

	// EntryIDs returns the ids of every entry tracking bookID, or of every
	// entry when bookID is empty.
	EntryIDs(context context.Context, bookID string) ([]string, error)

	/*
		WithEntryLock runs fn in a transaction holding the entry's row lock.

		Description: The entry is loaded with SELECT ... FOR UPDATE so that
		writers on the same entry are serialised. fn's error rolls the
		transaction back; a nil error commits it.

		Returns:
		  - error: apperr.NotFound when the entry does not exist, fn's error,
		    or commit failures
	*/
	WithEntryLock(context context.Context, entryID string, fn func(tx EntryTx, entry *Entry) error) error
}

// EntryTx is the set of writes available while an entry is locked.
type EntryTx interface {
	ListSessions(context context.Context, entryID string) ([]*Session, error)
	InsertSession(context context.Context, session *Session) error

	// DeleteSession reports whether a session of entryID was removed.
	DeleteSession(context context.Context, entryID, sessionID string) (bool, error)

	SaveProgress(context context.Context, entryID string, snapshot progress.Snapshot) error
	DeleteSessions(context context.Context, entryID string) error
	DeleteMemberships(context context.Context, entryID string) error
	DeleteEntry(context context.Context, entryID string) error
}

// Invalidator drops cached derived data of a user after their entries change.
type Invalidator interface {
	InvalidateUser(context context.Context, userID string) error
}
