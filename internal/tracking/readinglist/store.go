// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package readinglist

import "context"

// Repository defines the persistence contract for reading lists.
type Repository interface {
	Create(context context.Context, list *List) error

	// FindByID returns a list owned by userID, or apperr.NotFound.
	FindByID(context context.Context, userID, listID string) (*List, error)

	// List returns the user's lists with member counts, by name.
	List(context context.Context, userID string) ([]*List, error)

	Rename(context context.Context, list *List) error
	Delete(context context.Context, userID, listID string) error

	// Members returns the entries of a list, most recently added first.
	Members(context context.Context, listID string) ([]*Member, error)

	// EntryOwner returns the user owning a library entry, or apperr.NotFound.
	EntryOwner(context context.Context, entryID string) (string, error)

	// AddMember links an entry to a list; a duplicate is apperr.Conflict.
	AddMember(context context.Context, listID, entryID string) error

	// RemoveMember reports whether the link existed.
	RemoveMember(context context.Context, listID, entryID string) (bool, error)
}
