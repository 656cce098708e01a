// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package progress holds the pure arithmetic of reading progress.

Nothing here touches storage or clocks it was not handed. The library
service calls these functions inside its entry-lock transaction; the goal
evaluator and the stats endpoint call them over read snapshots.

	pages := progress.Aggregate([]int{40, 60}, 100) // 100
	progress.DeriveStatus(pages, 100)               // Done
	progress.Percent(pages, 100)                    // 100
*/
package progress

import (
	"time"

	"github.com/shopspring/decimal"
)

// # Status

// Status is the reading state of a library entry. It is never stored
// independently of pages read; it is always derived from it.
type Status string

const (
	NotStarted Status = "not_started"
	InProgress Status = "in_progress"
	Done       Status = "done"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{NotStarted, InProgress, Done}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case NotStarted, InProgress, Done:
		return true
	}
	return false
}

// DeriveStatus maps pages read against a book's total onto a [Status].
//
//	0             -> NotStarted
//	0 < p < total -> InProgress
//	p >= total    -> Done
func DeriveStatus(pagesRead, totalPages int) Status {
	switch {
	case pagesRead <= 0:
		return NotStarted
	case pagesRead >= totalPages:
		return Done
	default:
		return InProgress
	}
}

// # Counters

// Clamp bounds pages read to [0, totalPages].
func Clamp(pagesRead, totalPages int) int {
	if pagesRead < 0 {
		return 0
	}
	if pagesRead > totalPages {
		return totalPages
	}
	return pagesRead
}

// Aggregate sums session page counts and clamps the result to the book total.
// The ledger keeps raw values; only this denormalised counter is bounded.
func Aggregate(sessionPages []int, totalPages int) int {
	sum := 0
	for _, pages := range sessionPages {
		sum += pages
	}
	return Clamp(sum, totalPages)
}

// # Percentages

var hundred = decimal.NewFromInt(100)

// Percent returns round(100 * part / whole) with round-half-to-even, or 0
// when whole is not positive. The result is not capped.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	ratio := decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole)))
	return int(ratio.RoundBank(0).IntPart())
}

// CappedPercent is [Percent] limited to 100.
func CappedPercent(part, whole int) int {
	return min(100, Percent(part, whole))
}

// # Transitions

// Snapshot is the derived state of one library entry.
type Snapshot struct {
	PagesRead  int
	Status     Status
	FinishedAt *time.Time
}

/*
Transition re-derives an entry after its page counter changed.

Parameters:
  - previous: State before the write
  - pagesRead: New counter value (clamped here)
  - totalPages: Book length
  - at: Moment credited as the finish time when the entry enters Done

Returns:
  - Snapshot: New state; FinishedAt is kept while the entry stays Done and
    cleared as soon as it leaves Done
*/
func Transition(previous Snapshot, pagesRead, totalPages int, at time.Time) Snapshot {
	next := Snapshot{PagesRead: Clamp(pagesRead, totalPages)}
	next.Status = DeriveStatus(next.PagesRead, totalPages)

	switch {
	case next.Status != Done:
		next.FinishedAt = nil
	case previous.Status == Done && previous.FinishedAt != nil:
		next.FinishedAt = previous.FinishedAt
	default:
		finished := at.UTC()
		next.FinishedAt = &finished
	}

	return next
}

// # Tally

// Item is the minimal view of an entry needed for library statistics.
type Item struct {
	Status    Status
	PagesRead int
}

// Stats summarises a user's library.
type Stats struct {
	Total          int `json:"total"`
	Done           int `json:"done"`
	InProgress     int `json:"in_progress"`
	NotStarted     int `json:"not_started"`
	TotalPagesRead int `json:"total_pages_read"`
}

// Tally counts entries per status and sums pages read.
func Tally(items []Item) Stats {
	var stats Stats
	for _, item := range items {
		stats.Total++
		stats.TotalPagesRead += item.PagesRead
		switch item.Status {
		case Done:
			stats.Done++
		case InProgress:
			stats.InProgress++
		default:
			stats.NotStarted++
		}
	}
	return stats
}
