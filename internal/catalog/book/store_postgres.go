// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/database/schema"
	"github.com/taibuivan/readtrack/internal/platform/dberr"
	"github.com/taibuivan/readtrack/pkg/slug"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed book store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	b = schema.CatalogBook
	a = schema.CatalogAuthor

	selectBook = fmt.Sprintf(`
		SELECT b.%s, b.%s, b.%s, b.%s, b.%s, b.%s, b.%s, a.%s
		FROM %s b
		JOIN %s a ON a.%s = b.%s
	`,
		b.ID, b.Title, b.Slug, b.AuthorID, b.TotalPages, b.CreatedAt, b.UpdatedAt, a.Name,
		b.Table, a.Table, a.ID, b.AuthorID,
	)
)

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (*Book, error) {
	book := &Book{Author: &AuthorRef{}}
	err := row.Scan(
		&book.ID, &book.Title, &book.Slug, &book.AuthorID, &book.TotalPages,
		&book.CreatedAt, &book.UpdatedAt, &book.Author.Name,
	)
	if err != nil {
		return nil, err
	}
	book.Author.ID = book.AuthorID
	return book, nil
}

/*
List returns a filtered and paginated list of books.

Description: The search term matches the title directly and, through its
slug, ignoring accents ("anos" finds "Cien años de soledad").

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Book: Page of books
  - int: Total record count
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	var where strings.Builder
	where.WriteString(" WHERE TRUE")
	args := []any{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%", "%"+slug.From(filter.Query)+"%")
		where.WriteString(fmt.Sprintf(" AND (b.%s ILIKE $%d OR b.%s LIKE $%d)", b.Title, len(args)-1, b.Slug, len(args)))
	}

	if filter.AuthorID != "" {
		args = append(args, filter.AuthorID)
		where.WriteString(fmt.Sprintf(" AND b.%s = $%d", b.AuthorID, len(args)))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s b`, b.Table) + where.String()
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_books")
	}

	query := selectBook + where.String() + fmt.Sprintf(" ORDER BY b.%s ASC, b.%s ASC LIMIT $%d OFFSET $%d",
		b.Title, b.ID, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_books")
	}
	defer rows.Close()

	books := []*Book{}
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "scan_book")
		}
		books = append(books, book)
	}

	return books, total, dberr.Wrap(rows.Err(), "iterate_books")
}

/*
FindByID retrieves a book with its author.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Book: Hydrated entity
  - error: apperr.NotFound or database failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Book, error) {
	query := selectBook + fmt.Sprintf(" WHERE b.%s = $1", b.ID)

	book, err := scanBook(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, classify(err, "get_book")
	}
	return book, nil
}

/*
Create inserts a new book.

Parameters:
  - context: context.Context
  - book: *Book

Returns:
  - error: Validation error for an unknown author, or persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, book *Book) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING %s, %s
	`,
		b.Table, b.ID, b.Title, b.Slug, b.AuthorID, b.TotalPages, b.CreatedAt, b.UpdatedAt,
		b.CreatedAt, b.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, book.ID, book.Title, book.Slug, book.AuthorID, book.TotalPages).
		Scan(&book.CreatedAt, &book.UpdatedAt)
	return classify(err, "create_book")
}

/*
Update replaces title, author and page count.

Parameters:
  - context: context.Context
  - book: *Book

Returns:
  - error: apperr.NotFound, validation error for an unknown author, or persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, book *Book) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s
	`,
		b.Table, b.Title, b.Slug, b.AuthorID, b.TotalPages, b.UpdatedAt,
		b.ID, b.CreatedAt, b.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, book.ID, book.Title, book.Slug, book.AuthorID, book.TotalPages).
		Scan(&book.CreatedAt, &book.UpdatedAt)
	return classify(err, "update_book")
}

/*
Delete removes a book that no library entry references.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound, apperr.Conflict (tracked by a reader) or persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, b.Table, b.ID)

	result, err := repository.db.Exec(context, query, id)
	if err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.Conflict("Book is tracked in a reader's library")
		}
		return classify(err, "delete_book")
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Book")
	}
	return nil
}

// classify names the resource and field behind generic storage errors.
func classify(err error, action string) error {
	if err == nil {
		return nil
	}
	if dberr.IsForeignKeyViolation(err) {
		return apperr.FieldInvalid(FieldAuthorID, "Author does not exist")
	}

	wrapped := dberr.Wrap(err, action)
	if apperr.HasCode(wrapped, apperr.CodeNotFound) {
		return apperr.NotFound("Book")
	}
	return wrapped
}
