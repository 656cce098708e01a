// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package author

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/database/schema"
	"github.com/taibuivan/readtrack/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed author store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var selectAuthor = fmt.Sprintf(`SELECT %s, %s, %s, %s FROM %s`,
	schema.CatalogAuthor.ID, schema.CatalogAuthor.Name, schema.CatalogAuthor.CreatedAt,
	schema.CatalogAuthor.UpdatedAt, schema.CatalogAuthor.Table,
)

/*
List returns a filtered and paginated list of authors.

Parameters:
  - context: context.Context
  - filter: Filter
  - limit: int
  - offset: int

Returns:
  - []*Author: Page of authors ordered by name
  - int: Total matching records
  - error: Database retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, limit, offset int) ([]*Author, int, error) {
	where := " WHERE TRUE"
	args := []any{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where += fmt.Sprintf(" AND %s ILIKE $%d", schema.CatalogAuthor.Name, len(args))
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s`, schema.CatalogAuthor.Table) + where
	if err := repository.db.QueryRow(context, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_authors")
	}

	query := selectAuthor + where + fmt.Sprintf(" ORDER BY %s ASC, %s ASC LIMIT $%d OFFSET $%d",
		schema.CatalogAuthor.Name, schema.CatalogAuthor.ID, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "list_authors")
	}
	defer rows.Close()

	authors := []*Author{}
	for rows.Next() {
		author := &Author{}
		if err := rows.Scan(&author.ID, &author.Name, &author.CreatedAt, &author.UpdatedAt); err != nil {
			return nil, 0, dberr.Wrap(err, "scan_author")
		}
		authors = append(authors, author)
	}

	return authors, total, dberr.Wrap(rows.Err(), "iterate_authors")
}

/*
FindByID retrieves a single author by primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Author: Hydrated entity
  - error: apperr.NotFound or database failures
*/
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Author, error) {
	query := selectAuthor + fmt.Sprintf(" WHERE %s = $1", schema.CatalogAuthor.ID)

	author := &Author{}
	err := repository.db.QueryRow(context, query, id).Scan(&author.ID, &author.Name, &author.CreatedAt, &author.UpdatedAt)
	if err != nil {
		return nil, notFound(dberr.Wrap(err, "get_author"))
	}
	return author, nil
}

/*
Create inserts a new author.

Parameters:
  - context: context.Context
  - author: *Author (ID assigned by the service)

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, author *Author) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, NOW(), NOW())
		RETURNING %s, %s
	`,
		schema.CatalogAuthor.Table, schema.CatalogAuthor.ID, schema.CatalogAuthor.Name,
		schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
		schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, author.ID, author.Name).Scan(&author.CreatedAt, &author.UpdatedAt)
	return dberr.Wrap(err, "create_author")
}

/*
Update renames an author.

Parameters:
  - context: context.Context
  - author: *Author

Returns:
  - error: apperr.NotFound or persistence failures
*/
func (repository *PostgresRepository) Update(context context.Context, author *Author) error {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $2, %s = NOW()
		WHERE %s = $1
		RETURNING %s, %s
	`,
		schema.CatalogAuthor.Table, schema.CatalogAuthor.Name, schema.CatalogAuthor.UpdatedAt,
		schema.CatalogAuthor.ID, schema.CatalogAuthor.CreatedAt, schema.CatalogAuthor.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query, author.ID, author.Name).Scan(&author.CreatedAt, &author.UpdatedAt)
	return notFound(dberr.Wrap(err, "update_author"))
}

/*
Delete removes an author. Authors still referenced by books are kept.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - error: apperr.NotFound, apperr.Conflict (has books) or persistence failures
*/
func (repository *PostgresRepository) Delete(context context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogAuthor.Table, schema.CatalogAuthor.ID)

	result, err := repository.db.Exec(context, query, id)
	if err != nil {
		if dberr.IsForeignKeyViolation(err) {
			return apperr.Conflict("Author still has books in the catalog")
		}
		return notFound(dberr.Wrap(err, "delete_author"))
	}

	if result.RowsAffected() == 0 {
		return apperr.NotFound("Author")
	}
	return nil
}

// notFound names the resource on generic not-found errors.
func notFound(err error) error {
	if apperr.HasCode(err, apperr.CodeNotFound) {
		return apperr.NotFound("Author")
	}
	return err
}
