// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package library tracks the books a user is reading.

A library entry links a user to a catalog book. Its pages-read counter and
status are derived state: every write to the entry's reading-session ledger
re-aggregates them inside a transaction that holds the entry row lock, so a
reader never observes a partial sum.

	record session -> lock entry -> insert -> sum ledger -> clamp -> derive status -> commit -> invalidate goal cache
*/
package library

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/taibuivan/readtrack/internal/tracking/progress"
)

// # Domain Entities

// Entry is one book in a user's library.
type Entry struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	BookID          string          `json:"book_id"`
	Book            *BookRef        `json:"book"`
	Status          progress.Status `json:"status"`
	PagesRead       int             `json:"pages_read"`
	ProgressPercent int             `json:"progress_percent"`
	Comment         string          `json:"comment"`
	IsFavorite      bool            `json:"is_favorite"`
	Rating          *int            `json:"rating"`
	DateAdded       time.Time       `json:"date_added"`
	FinishedAt      *time.Time      `json:"finished_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// BookRef is the catalog summary embedded in an entry.
type BookRef struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
	TotalPages int    `json:"total_pages"`
}

// TotalPages returns the length of the tracked book.
func (entry *Entry) TotalPages() int {
	if entry.Book == nil {
		return 0
	}
	return entry.Book.TotalPages
}

// Snapshot returns the derived progress state of the entry.
func (entry *Entry) Snapshot() progress.Snapshot {
	return progress.Snapshot{
		PagesRead:  entry.PagesRead,
		Status:     entry.Status,
		FinishedAt: entry.FinishedAt,
	}
}

// Apply copies a derived state onto the entry and refreshes its percentage.
func (entry *Entry) Apply(snapshot progress.Snapshot) {
	entry.PagesRead = snapshot.PagesRead
	entry.Status = snapshot.Status
	entry.FinishedAt = snapshot.FinishedAt
	entry.Derive()
}

// Derive recomputes the read-only percentage from the stored counter.
func (entry *Entry) Derive() {
	entry.ProgressPercent = progress.Percent(entry.PagesRead, entry.TotalPages())
}

// Session is one reading sitting recorded against an entry. Its page count
// is kept as entered even when the entry's counter is clamped.
type Session struct {
	ID              string    `json:"id"`
	LibraryEntryID  string    `json:"library_entry_id"`
	Date            time.Time `json:"-"`
	PagesRead       int       `json:"pages_read"`
	DurationMinutes *int      `json:"duration_minutes"`
	Notes           string    `json:"notes"`
	BookTitle       string    `json:"book_title,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// # Inputs

// Filter narrows a library listing.
type Filter struct {
	Statuses []progress.Status
	Query    string // Book title search
	Favorite *bool
}

// NullableInt distinguishes an absent JSON field from an explicit null.
type NullableInt struct {
	Set   bool
	Value *int
}

// UnmarshalJSON records that the field was present.
func (n *NullableInt) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}

	var value int
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	n.Value = &value
	return nil
}

// MetaInput is a partial update of the user-editable entry fields.
// A present "rating": null clears the rating.
type MetaInput struct {
	Comment    *string     `json:"comment"`
	IsFavorite *bool       `json:"is_favorite"`
	Rating     NullableInt `json:"rating"`
}

// SessionInput describes a new reading session.
type SessionInput struct {
	Date            time.Time
	PagesRead       int
	DurationMinutes *int
	Notes           string
}

// # Field Identifiers & Limits

const (
	FieldBookID          = "book_id"
	FieldLibraryEntryID  = "library_entry_id"
	FieldStatus          = "status"
	FieldPagesRead       = "pages_read"
	FieldComment         = "comment"
	FieldRating          = "rating"
	FieldDate            = "date"
	FieldDurationMinutes = "duration_minutes"
	FieldNotes           = "notes"
	FieldFrom            = "from"
	FieldTo              = "to"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxCommentLength = 2000
	MaxNotesLength   = 1000
)
