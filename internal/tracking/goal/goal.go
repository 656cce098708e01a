// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package goal manages time-boxed reading goals and evaluates progress toward them.

Progress is never stored. [Evaluate] projects a snapshot of the user's
library onto a goal's window; the service caches the result in Redis until
the user's library changes.
*/
package goal

import (
	"time"

	"github.com/taibuivan/readtrack/internal/tracking/progress"
	"github.com/taibuivan/readtrack/pkg/dateutil"
)

// # Enumerations

// Type is what a goal counts.
type Type string

const (
	TypePages Type = "PAGES"
	TypeBooks Type = "BOOKS"
)

// Valid reports whether t is a known goal type.
func (t Type) Valid() bool {
	return t == TypePages || t == TypeBooks
}

// Period is the nominal length of a goal's window.
type Period string

const (
	PeriodDaily   Period = "DAILY"
	PeriodWeekly  Period = "WEEKLY"
	PeriodMonthly Period = "MONTHLY"
	PeriodYearly  Period = "YEARLY"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodYearly:
		return true
	}
	return false
}

// Basis selects which date places an entry inside a goal's window.
type Basis string

const (
	// BasisDateAdded counts entries added to the library inside the window.
	BasisDateAdded Basis = "date_added"
	// BasisSessionDate counts pages from sessions dated inside the window and
	// books finished inside it.
	BasisSessionDate Basis = "session_date"
)

// # Domain Entities

// Goal is a reading target over an inclusive calendar-date window.
type Goal struct {
	ID        string
	UserID    string
	GoalType  Type
	Period    Period
	Target    int
	StartDate time.Time
	EndDate   time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Progress is the evaluated state of a goal.
type Progress struct {
	GoalID             string `json:"goal_id"`
	CurrentValue       int    `json:"current_value"`
	Target             int    `json:"target"`
	ProgressPercentage int    `json:"progress_percentage"`
	Completed          bool   `json:"completed"`
}

// EntrySnapshot is the read-only view of one library entry used by [Evaluate].
type EntrySnapshot struct {
	Status      progress.Status
	PagesRead   int
	TotalPages  int
	DateAdded   time.Time
	FinishedAt  *time.Time
	WindowPages int // Raw session pages dated inside the goal window
}

// # Inputs

// Input carries the writable fields of a goal. A nil EndDate is derived
// from the period.
type Input struct {
	GoalType  Type
	Period    Period
	Target    int
	StartDate time.Time
	EndDate   *time.Time
}

// Filter narrows a goal listing.
type Filter struct {
	Period   Period
	GoalType Type
}

// # Field Identifiers

const (
	FieldGoalType  = "goal_type"
	FieldPeriod    = "period"
	FieldTarget    = "target"
	FieldStartDate = "start_date"
	FieldEndDate   = "end_date"
)

// # Evaluation

/*
Evaluate computes progress toward a goal over a snapshot of the user's entries.

Description: With [BasisDateAdded], entries whose date added falls in the
window contribute their pages read (PAGES) or count once when done (BOOKS).
With [BasisSessionDate], each entry contributes its in-window session pages
capped at the book length (PAGES), and done entries count when they were
finished inside the window (BOOKS).

Parameters:
  - goal: *Goal
  - entries: []EntrySnapshot
  - basis: Basis

Returns:
  - Progress: Current value and percentage capped at 100
*/
func Evaluate(goal *Goal, entries []EntrySnapshot, basis Basis) Progress {
	current := 0

	for _, entry := range entries {
		switch basis {
		case BasisSessionDate:
			if goal.GoalType == TypePages {
				current += progress.Clamp(entry.WindowPages, entry.TotalPages)
			} else if entry.Status == progress.Done && entry.FinishedAt != nil &&
				dateutil.Within(*entry.FinishedAt, goal.StartDate, goal.EndDate) {
				current++
			}

		default:
			if !dateutil.Within(entry.DateAdded, goal.StartDate, goal.EndDate) {
				continue
			}
			if goal.GoalType == TypePages {
				current += entry.PagesRead
			} else if entry.Status == progress.Done {
				current++
			}
		}
	}

	return Progress{
		GoalID:             goal.ID,
		CurrentValue:       current,
		Target:             goal.Target,
		ProgressPercentage: progress.CappedPercent(current, goal.Target),
		Completed:          goal.Target > 0 && current >= goal.Target,
	}
}

// DefaultEnd derives a window end from its start and period.
//
//	DAILY   -> start
//	WEEKLY  -> start + 6 days
//	MONTHLY -> last day of start's month
//	YEARLY  -> December 31st of start's year
func DefaultEnd(period Period, start time.Time) time.Time {
	start = dateutil.Truncate(start)

	switch period {
	case PeriodWeekly:
		return start.AddDate(0, 0, 6)
	case PeriodMonthly:
		return dateutil.EndOfMonth(start)
	case PeriodYearly:
		return dateutil.EndOfYear(start)
	default:
		return start
	}
}
