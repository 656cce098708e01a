// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package library

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/dberr"
	"github.com/taibuivan/readtrack/internal/tracking/progress"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed library store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectEntry = `
	SELECT
		e.id, e.userid, e.bookid, e.status, e.pagesread, e.comment, e.isfavorite,
		e.rating, e.dateadded, e.finishedat, e.updatedat,
		b.title, b.totalpages, a.name
	FROM tracking.libraryentry e
	JOIN catalog.book b ON b.id = e.bookid
	JOIN catalog.author a ON a.id = b.authorid
`

const selectSession = `
	SELECT s.id, s.libraryentryid, s.sessiondate, s.pagesread, s.durationminutes, s.notes, s.createdat, b.title
	FROM tracking.readingsession s
	JOIN tracking.libraryentry e ON e.id = s.libraryentryid
	JOIN catalog.book b ON b.id = e.bookid
`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	entry := &Entry{Book: &BookRef{}}
	var rating *int16
	err := row.Scan(
		&entry.ID, &entry.UserID, &entry.BookID, &entry.Status, &entry.PagesRead, &entry.Comment, &entry.IsFavorite,
		&rating, &entry.DateAdded, &entry.FinishedAt, &entry.UpdatedAt,
		&entry.Book.Title, &entry.Book.TotalPages, &entry.Book.AuthorName,
	)
	if err != nil {
		return nil, err
	}

	if rating != nil {
		value := int(*rating)
		entry.Rating = &value
	}
	entry.Book.ID = entry.BookID
	entry.Derive()
	return entry, nil
}

func scanSessions(rows pgx.Rows) ([]*Session, error) {
	defer rows.Close()

	sessions := []*Session{}
	for rows.Next() {
		session := &Session{}
		err := rows.Scan(
			&session.ID, &session.LibraryEntryID, &session.Date, &session.PagesRead,
			&session.DurationMinutes, &session.Notes, &session.CreatedAt, &session.BookTitle,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_reading_session")
		}
		session.Date = session.Date.UTC()
		sessions = append(sessions, session)
	}
	return sessions, dberr.Wrap(rows.Err(), "iterate_reading_sessions")
}

func entryNotFound(err error, action string) error {
	wrapped := dberr.Wrap(err, action)
	if apperr.HasCode(wrapped, apperr.CodeNotFound) {
		return apperr.NotFound("Library entry")
	}
	return wrapped
}

// # Entry Retrieval

/*
FindByID retrieves an entry scoped to its owner.

Parameters:
  - context: context.Context
  - userID: string
  - entryID: string

Returns:
  - *Entry: Entry with its book summary
  - error: apperr.NotFound when absent or owned by someone else
*/
func (repository *PostgresRepository) FindByID(context context.Context, userID, entryID string) (*Entry, error) {
	entry, err := scanEntry(repository.db.QueryRow(context, selectEntry+` WHERE e.id = $1 AND e.userid = $2`, entryID, userID))
	if err != nil {
		return nil, entryNotFound(err, "get_library_entry")
	}
	return entry, nil
}

/*
List returns a filtered page of a user's library.

Parameters:
  - context: context.Context
  - userID: string
  - filter: Filter
  - limit, offset: int

Returns:
  - []*Entry: Page ordered by date added, newest first
  - int: Total matching entries
  - error: Retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, userID string, filter Filter, limit, offset int) ([]*Entry, int, error) {
	var where strings.Builder
	where.WriteString(` WHERE e.userid = $1`)
	args := []any{userID}

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			statuses[i] = string(status)
		}
		args = append(args, statuses)
		where.WriteString(fmt.Sprintf(` AND e.status = ANY($%d)`, len(args)))
	}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where.WriteString(fmt.Sprintf(` AND b.title ILIKE $%d`, len(args)))
	}

	if filter.Favorite != nil {
		args = append(args, *filter.Favorite)
		where.WriteString(fmt.Sprintf(` AND e.isfavorite = $%d`, len(args)))
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM tracking.libraryentry e JOIN catalog.book b ON b.id = e.bookid` + where.String()
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_library_entries")
	}

	query := selectEntry + where.String() + fmt.Sprintf(` ORDER BY e.dateadded DESC, e.id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_library_entries")
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_library_entry")
		}
		entries = append(entries, entry)
	}

	return entries, total, dberr.Wrap(rows.Err(), "iterate_library_entries")
}

// StatItems loads the status and counter of every entry of a user.
func (repository *PostgresRepository) StatItems(context context.Context, userID string) ([]progress.Item, error) {
	const query = `SELECT status, pagesread FROM tracking.libraryentry WHERE userid = $1`

	rows, err := repository.db.Query(context, query, userID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_stat_items")
	}
	defer rows.Close()

	var items []progress.Item
	for rows.Next() {
		var item progress.Item
		if err := rows.Scan(&item.Status, &item.PagesRead); err != nil {
			return nil, dberr.Wrap(err, "scan_stat_item")
		}
		items = append(items, item)
	}
	return items, dberr.Wrap(rows.Err(), "iterate_stat_items")
}

// EntryIDs lists entry ids for one book, or all entries when bookID is empty.
func (repository *PostgresRepository) EntryIDs(context context.Context, bookID string) ([]string, error) {
	query := `SELECT id FROM tracking.libraryentry`
	args := []any{}
	if bookID != "" {
		query += ` WHERE bookid = $1`
		args = append(args, bookID)
	}
	query += ` ORDER BY id`

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_entry_ids")
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	return ids, dberr.Wrap(err, "collect_entry_ids")
}

// # Session Retrieval

// ListSessions returns the ledger of one entry.
func (repository *PostgresRepository) ListSessions(context context.Context, entryID string) ([]*Session, error) {
	rows, err := repository.db.Query(context, selectSession+` WHERE s.libraryentryid = $1 ORDER BY s.sessiondate DESC, s.createdat DESC`, entryID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_reading_sessions")
	}
	return scanSessions(rows)
}

/*
History returns a user's reading sessions across all entries.

Parameters:
  - context: context.Context
  - userID: string
  - from, to: *time.Time (inclusive calendar dates, nil for open bounds)

Returns:
  - []*Session: Sessions with book titles, newest first
  - error: Retrieval failures
*/
func (repository *PostgresRepository) History(context context.Context, userID string, from, to *time.Time) ([]*Session, error) {
	query := selectSession + ` WHERE e.userid = $1`
	args := []any{userID}

	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND s.sessiondate >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND s.sessiondate <= $%d`, len(args))
	}
	query += ` ORDER BY s.sessiondate DESC, s.createdat DESC`

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_reading_history")
	}
	return scanSessions(rows)
}

// # Entry Mutation

/*
Create inserts a library entry in its initial state.

Parameters:
  - context: context.Context
  - entry: *Entry

Returns:
  - error: apperr.Conflict for a duplicate (user, book), validation error for an unknown book
*/
func (repository *PostgresRepository) Create(context context.Context, entry *Entry) error {
	const query = `
		INSERT INTO tracking.libraryentry (id, userid, bookid, status, pagesread, dateadded, updatedat)
		VALUES ($1, $2, $3, $4, 0, NOW(), NOW())
		RETURNING dateadded, updatedat
	`
	err := repository.db.QueryRow(context, query, entry.ID, entry.UserID, entry.BookID, entry.Status).
		Scan(&entry.DateAdded, &entry.UpdatedAt)

	switch {
	case err == nil:
		return nil
	case dberr.IsUniqueViolation(err):
		return apperr.Conflict("Book is already in library")
	case dberr.IsForeignKeyViolation(err):
		return apperr.FieldInvalid(FieldBookID, "Book does not exist")
	default:
		return dberr.Wrap(err, "create_library_entry")
	}
}

// UpdateMeta persists the user-editable fields of an entry.
func (repository *PostgresRepository) UpdateMeta(context context.Context, entry *Entry) error {
	const query = `
		UPDATE tracking.libraryentry
		SET comment = $3, isfavorite = $4, rating = $5, updatedat = NOW()
		WHERE id = $1 AND userid = $2
		RETURNING updatedat
	`
	err := repository.db.QueryRow(context, query, entry.ID, entry.UserID, entry.Comment, entry.IsFavorite, entry.Rating).
		Scan(&entry.UpdatedAt)
	if err != nil {
		return entryNotFound(err, "update_library_entry")
	}
	return nil
}

// # Locked Writes

/*
WithEntryLock loads and locks an entry, then runs fn in the same transaction.

Parameters:
  - context: context.Context
  - entryID: string
  - fn: Work to run while the lock is held

Returns:
  - error: apperr.NotFound, fn's error, or transactional failures
*/
func (repository *PostgresRepository) WithEntryLock(context context.Context, entryID string, fn func(tx EntryTx, entry *Entry) error) error {
	transaction, err := repository.db.Begin(context)
	if err != nil {
		return dberr.Wrap(err, "begin_entry_tx")
	}
	defer transaction.Rollback(context)

	// Lock only the entry row; book and author stay shareable.
	entry, err := scanEntry(transaction.QueryRow(context, selectEntry+` WHERE e.id = $1 FOR UPDATE OF e`, entryID))
	if err != nil {
		return entryNotFound(err, "lock_library_entry")
	}

	if err := fn(&postgresEntryTx{tx: transaction}, entry); err != nil {
		return err
	}

	return dberr.Wrap(transaction.Commit(context), "commit_entry_tx")
}

// postgresEntryTx implements [EntryTx] on an open transaction.
type postgresEntryTx struct {
	tx pgx.Tx
}

func (entryTx *postgresEntryTx) ListSessions(context context.Context, entryID string) ([]*Session, error) {
	rows, err := entryTx.tx.Query(context, selectSession+` WHERE s.libraryentryid = $1 ORDER BY s.sessiondate DESC, s.createdat DESC`, entryID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_locked_sessions")
	}
	return scanSessions(rows)
}

func (entryTx *postgresEntryTx) InsertSession(context context.Context, session *Session) error {
	const query = `
		INSERT INTO tracking.readingsession (id, libraryentryid, sessiondate, pagesread, durationminutes, notes, createdat)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING createdat
	`
	err := entryTx.tx.QueryRow(context, query,
		session.ID, session.LibraryEntryID, session.Date, session.PagesRead, session.DurationMinutes, session.Notes,
	).Scan(&session.CreatedAt)
	return dberr.Wrap(err, "insert_reading_session")
}

func (entryTx *postgresEntryTx) DeleteSession(context context.Context, entryID, sessionID string) (bool, error) {
	const query = `DELETE FROM tracking.readingsession WHERE id = $1 AND libraryentryid = $2`

	result, err := entryTx.tx.Exec(context, query, sessionID, entryID)
	if err != nil {
		if apperr.HasCode(dberr.Wrap(err, "delete_reading_session"), apperr.CodeNotFound) {
			return false, nil
		}
		return false, dberr.Wrap(err, "delete_reading_session")
	}
	return result.RowsAffected() > 0, nil
}

func (entryTx *postgresEntryTx) SaveProgress(context context.Context, entryID string, snapshot progress.Snapshot) error {
	const query = `
		UPDATE tracking.libraryentry
		SET pagesread = $2, status = $3, finishedat = $4, updatedat = NOW()
		WHERE id = $1
	`
	_, err := entryTx.tx.Exec(context, query, entryID, snapshot.PagesRead, snapshot.Status, snapshot.FinishedAt)
	return dberr.Wrap(err, "save_entry_progress")
}

func (entryTx *postgresEntryTx) DeleteSessions(context context.Context, entryID string) error {
	_, err := entryTx.tx.Exec(context, `DELETE FROM tracking.readingsession WHERE libraryentryid = $1`, entryID)
	return dberr.Wrap(err, "delete_entry_sessions")
}

func (entryTx *postgresEntryTx) DeleteMemberships(context context.Context, entryID string) error {
	_, err := entryTx.tx.Exec(context, `DELETE FROM tracking.readinglistentry WHERE libraryentryid = $1`, entryID)
	return dberr.Wrap(err, "delete_entry_memberships")
}

func (entryTx *postgresEntryTx) DeleteEntry(context context.Context, entryID string) error {
	_, err := entryTx.tx.Exec(context, `DELETE FROM tracking.libraryentry WHERE id = $1`, entryID)
	return dberr.Wrap(err, "delete_library_entry")
}
