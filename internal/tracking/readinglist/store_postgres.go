// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package readinglist

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed reading list store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func notFound(err error, resource, action string) error {
	wrapped := dberr.Wrap(err, action)
	if apperr.HasCode(wrapped, apperr.CodeNotFound) {
		return apperr.NotFound(resource)
	}
	return wrapped
}

// # List Management

// Create inserts an empty list.
func (repository *PostgresRepository) Create(context context.Context, list *List) error {
	const query = `
		INSERT INTO tracking.readinglist (id, userid, name, createdat, updatedat)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING createdat, updatedat
	`
	err := repository.db.QueryRow(context, query, list.ID, list.UserID, list.Name).Scan(&list.CreatedAt, &list.UpdatedAt)
	return dberr.Wrap(err, "create_reading_list")
}

/*
FindByID retrieves a list scoped to its owner.

Parameters:
  - context: context.Context
  - userID: string
  - listID: string

Returns:
  - *List: List with its member count
  - error: apperr.NotFound when absent or owned by someone else
*/
func (repository *PostgresRepository) FindByID(context context.Context, userID, listID string) (*List, error) {
	const query = `
		SELECT l.id, l.userid, l.name, l.createdat, l.updatedat,
			(SELECT COUNT(*) FROM tracking.readinglistentry m WHERE m.listid = l.id)
		FROM tracking.readinglist l
		WHERE l.id = $1 AND l.userid = $2
	`
	list := &List{}
	err := repository.db.QueryRow(context, query, listID, userID).Scan(
		&list.ID, &list.UserID, &list.Name, &list.CreatedAt, &list.UpdatedAt, &list.MemberCount,
	)
	if err != nil {
		return nil, notFound(err, "Reading list", "get_reading_list")
	}
	return list, nil
}

// List returns every list of a user.
func (repository *PostgresRepository) List(context context.Context, userID string) ([]*List, error) {
	const query = `
		SELECT l.id, l.userid, l.name, l.createdat, l.updatedat, COUNT(m.libraryentryid)
		FROM tracking.readinglist l
		LEFT JOIN tracking.readinglistentry m ON m.listid = l.id
		WHERE l.userid = $1
		GROUP BY l.id
		ORDER BY l.name ASC, l.createdat ASC
	`
	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_reading_lists")
	}
	defer rows.Close()

	lists := []*List{}
	for rows.Next() {
		list := &List{}
		if err := rows.Scan(&list.ID, &list.UserID, &list.Name, &list.CreatedAt, &list.UpdatedAt, &list.MemberCount); err != nil {
			return nil, dberr.Wrap(err, "scan_reading_list")
		}
		lists = append(lists, list)
	}
	return lists, dberr.Wrap(rows.Err(), "iterate_reading_lists")
}

// Rename updates a list's name.
func (repository *PostgresRepository) Rename(context context.Context, list *List) error {
	const query = `
		UPDATE tracking.readinglist
		SET name = $3, updatedat = NOW()
		WHERE id = $1 AND userid = $2
		RETURNING updatedat
	`
	err := repository.db.QueryRow(context, query, list.ID, list.UserID, list.Name).Scan(&list.UpdatedAt)
	if err != nil {
		return notFound(err, "Reading list", "rename_reading_list")
	}
	return nil
}

// Delete removes a list; memberships cascade, entries are untouched.
func (repository *PostgresRepository) Delete(context context.Context, userID, listID string) error {
	result, err := repository.db.Exec(context, `DELETE FROM tracking.readinglist WHERE id = $1 AND userid = $2`, listID, userID)
	if err != nil {
		return notFound(err, "Reading list", "delete_reading_list")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Reading list")
	}
	return nil
}

// # Membership

// Members returns the entries of a list with their book and progress.
func (repository *PostgresRepository) Members(context context.Context, listID string) ([]*Member, error) {
	const query = `
		SELECT m.libraryentryid, e.bookid, b.title, e.status, e.pagesread, m.addedat
		FROM tracking.readinglistentry m
		JOIN tracking.libraryentry e ON e.id = m.libraryentryid
		JOIN catalog.book b ON b.id = e.bookid
		WHERE m.listid = $1
		ORDER BY m.addedat DESC
	`
	rows, err := repository.db.Query(context, query, listID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_reading_list_members")
	}
	defer rows.Close()

	members := []*Member{}
	for rows.Next() {
		member := &Member{}
		err := rows.Scan(&member.LibraryEntryID, &member.BookID, &member.BookTitle, &member.Status, &member.PagesRead, &member.AddedAt)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_reading_list_member")
		}
		members = append(members, member)
	}
	return members, dberr.Wrap(rows.Err(), "iterate_reading_list_members")
}

// EntryOwner resolves the owner of a library entry.
func (repository *PostgresRepository) EntryOwner(context context.Context, entryID string) (string, error) {
	var userID string
	err := repository.db.QueryRow(context, `SELECT userid FROM tracking.libraryentry WHERE id = $1`, entryID).Scan(&userID)
	if err != nil {
		return "", notFound(err, "Library entry", "get_entry_owner")
	}
	return userID, nil
}

/*
AddMember links an entry to a list.

Parameters:
  - context: context.Context
  - listID: string
  - entryID: string

Returns:
  - error: apperr.Conflict for a duplicate, apperr.NotFound when the entry vanished
*/
func (repository *PostgresRepository) AddMember(context context.Context, listID, entryID string) error {
	const query = `
		INSERT INTO tracking.readinglistentry (listid, libraryentryid, addedat)
		VALUES ($1, $2, NOW())
	`
	_, err := repository.db.Exec(context, query, listID, entryID)

	switch {
	case err == nil:
		return nil
	case dberr.IsUniqueViolation(err):
		return apperr.Conflict("Entry is already in this list")
	case dberr.IsForeignKeyViolation(err):
		return apperr.NotFound("Library entry")
	default:
		return dberr.Wrap(err, "add_reading_list_member")
	}
}

// RemoveMember unlinks an entry from a list.
func (repository *PostgresRepository) RemoveMember(context context.Context, listID, entryID string) (bool, error) {
	result, err := repository.db.Exec(context,
		`DELETE FROM tracking.readinglistentry WHERE listid = $1 AND libraryentryid = $2`, listID, entryID)
	if err != nil {
		if apperr.HasCode(dberr.Wrap(err, "remove_reading_list_member"), apperr.CodeNotFound) {
			return false, nil
		}
		return false, dberr.Wrap(err, "remove_reading_list_member")
	}
	return result.RowsAffected() > 0, nil
}
