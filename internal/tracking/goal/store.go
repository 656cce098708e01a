// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package goal

import (
	"context"
	"time"
)

// Repository defines the persistence contract for goals.
type Repository interface {
	Create(context context.Context, goal *Goal) error

	// FindByID returns a goal owned by userID, or apperr.NotFound.
	FindByID(context context.Context, userID, goalID string) (*Goal, error)

	// List returns the user's goals, newest window first.
	List(context context.Context, userID string, filter Filter) ([]*Goal, error)

	Update(context context.Context, goal *Goal) error
	Delete(context context.Context, userID, goalID string) error

	/*
		Snapshot reads every library entry of a user together with the pages
		of its sessions dated inside [start, end].

		Returns:
		  - []EntrySnapshot: One row per entry
		  - error: Retrieval failures
	*/
	Snapshot(context context.Context, userID string, start, end time.Time) ([]EntrySnapshot, error)
}

// ProgressCache stores evaluated progress per (user, goal).
type ProgressCache interface {

	// Get returns the cached progress and whether it was present.
	Get(context context.Context, userID, goalID string) (*Progress, bool, error)

	// Generation returns the user's invalidation counter. Zero when unset.
	Generation(context context.Context, userID string) (int64, error)

	// Set stores progress only while the user's generation still equals
	// generation, and reports whether it did.
	Set(context context.Context, userID string, generation int64, progress *Progress) (bool, error)

	// InvalidateUser bumps the generation and drops every cached goal of a user.
	InvalidateUser(context context.Context, userID string) error

	// InvalidateGoal bumps the generation and drops one cached goal.
	InvalidateGoal(context context.Context, userID, goalID string) error
}
