// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package goal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/readtrack/internal/platform/apperr"
	"github.com/taibuivan/readtrack/internal/platform/database/schema"
	"github.com/taibuivan/readtrack/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed goal store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

var (
	g = schema.TrackingReadingGoal

	selectGoal = fmt.Sprintf(`SELECT %s FROM %s`, strings.Join(g.Columns(), ", "), g.Table)
)

type scanner interface {
	Scan(dest ...any) error
}

func scanGoal(row scanner) (*Goal, error) {
	goal := &Goal{}
	err := row.Scan(
		&goal.ID, &goal.UserID, &goal.GoalType, &goal.Period, &goal.Target,
		&goal.StartDate, &goal.EndDate, &goal.CreatedAt, &goal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	goal.StartDate = goal.StartDate.UTC()
	goal.EndDate = goal.EndDate.UTC()
	return goal, nil
}

func goalNotFound(err error, action string) error {
	wrapped := dberr.Wrap(err, action)
	if apperr.HasCode(wrapped, apperr.CodeNotFound) {
		return apperr.NotFound("Reading goal")
	}
	return wrapped
}

/*
Create inserts a goal.

Parameters:
  - context: context.Context
  - goal: *Goal

Returns:
  - error: Persistence failures
*/
func (repository *PostgresRepository) Create(context context.Context, goal *Goal) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING %s, %s
	`,
		g.Table, g.ID, g.UserID, g.GoalType, g.Period, g.Target, g.StartDate, g.EndDate, g.CreatedAt, g.UpdatedAt,
		g.CreatedAt, g.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		goal.ID, goal.UserID, goal.GoalType, goal.Period, goal.Target, goal.StartDate, goal.EndDate,
	).Scan(&goal.CreatedAt, &goal.UpdatedAt)
	return dberr.Wrap(err, "create_reading_goal")
}

// FindByID retrieves a goal scoped to its owner.
func (repository *PostgresRepository) FindByID(context context.Context, userID, goalID string) (*Goal, error) {
	query := selectGoal + fmt.Sprintf(` WHERE %s = $1 AND %s = $2`, g.ID, g.UserID)

	goal, err := scanGoal(repository.db.QueryRow(context, query, goalID, userID))
	if err != nil {
		return nil, goalNotFound(err, "get_reading_goal")
	}
	return goal, nil
}

/*
List returns the user's goals.

Parameters:
  - context: context.Context
  - userID: string
  - filter: Filter (empty fields are ignored)

Returns:
  - []*Goal: Goals ordered by start date, newest first
  - error: Retrieval failures
*/
func (repository *PostgresRepository) List(context context.Context, userID string, filter Filter) ([]*Goal, error) {
	query := selectGoal + fmt.Sprintf(` WHERE %s = $1`, g.UserID)
	args := []any{userID}

	if filter.Period != "" {
		args = append(args, filter.Period)
		query += fmt.Sprintf(` AND %s = $%d`, g.Period, len(args))
	}
	if filter.GoalType != "" {
		args = append(args, filter.GoalType)
		query += fmt.Sprintf(` AND %s = $%d`, g.GoalType, len(args))
	}
	query += fmt.Sprintf(` ORDER BY %s DESC, %s DESC`, g.StartDate, g.CreatedAt)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, "list_reading_goals")
	}
	defer rows.Close()

	goals := []*Goal{}
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_reading_goal")
		}
		goals = append(goals, goal)
	}
	return goals, dberr.Wrap(rows.Err(), "iterate_reading_goals")
}

// Update replaces the writable fields of a goal.
func (repository *PostgresRepository) Update(context context.Context, goal *Goal) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1 AND %s = $2
		RETURNING %s
	`,
		g.Table, g.GoalType, g.Period, g.Target, g.StartDate, g.EndDate, g.UpdatedAt,
		g.ID, g.UserID, g.UpdatedAt,
	)

	err := repository.db.QueryRow(context, query,
		goal.ID, goal.UserID, goal.GoalType, goal.Period, goal.Target, goal.StartDate, goal.EndDate,
	).Scan(&goal.UpdatedAt)
	if err != nil {
		return goalNotFound(err, "update_reading_goal")
	}
	return nil
}

// Delete removes a goal owned by userID.
func (repository *PostgresRepository) Delete(context context.Context, userID, goalID string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, g.Table, g.ID, g.UserID)

	result, err := repository.db.Exec(context, query, goalID, userID)
	if err != nil {
		return goalNotFound(err, "delete_reading_goal")
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("Reading goal")
	}
	return nil
}

/*
Snapshot reads the user's entries with their in-window session pages.

Description: A single read-committed statement; a concurrent session write
is either fully visible or not at all.

Parameters:
  - context: context.Context
  - userID: string
  - start, end: time.Time (inclusive calendar dates)

Returns:
  - []EntrySnapshot
  - error: Retrieval failures
*/
func (repository *PostgresRepository) Snapshot(context context.Context, userID string, start, end time.Time) ([]EntrySnapshot, error) {
	const query = `
		SELECT
			e.status, e.pagesread, b.totalpages, e.dateadded, e.finishedat,
			COALESCE(SUM(s.pagesread) FILTER (WHERE s.sessiondate BETWEEN $2 AND $3), 0)
		FROM tracking.libraryentry e
		JOIN catalog.book b ON b.id = e.bookid
		LEFT JOIN tracking.readingsession s ON s.libraryentryid = e.id
		WHERE e.userid = $1
		GROUP BY e.id, b.totalpages
	`

	rows, err := repository.db.Query(context, query, userID, start, end)
	if err != nil {
		return nil, dberr.Wrap(err, "snapshot_library")
	}
	defer rows.Close()

	var snapshot []EntrySnapshot
	for rows.Next() {
		var entry EntrySnapshot
		var windowPages int64
		err := rows.Scan(&entry.Status, &entry.PagesRead, &entry.TotalPages, &entry.DateAdded, &entry.FinishedAt, &windowPages)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_snapshot_entry")
		}
		entry.WindowPages = int(windowPages)
		snapshot = append(snapshot, entry)
	}
	return snapshot, dberr.Wrap(rows.Err(), "iterate_snapshot")
}
