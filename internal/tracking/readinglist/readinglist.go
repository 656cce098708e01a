// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package readinglist manages named collections of a user's library entries.
package readinglist

import (
	"time"

	"github.com/taibuivan/readtrack/internal/tracking/progress"
)

// List is a named, user-owned collection of library entries.
type List struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	MemberCount int       `json:"member_count"`
	Members     []*Member `json:"members,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Member is a library entry as it appears inside a list.
type Member struct {
	LibraryEntryID string          `json:"library_entry_id"`
	BookID         string          `json:"book_id"`
	BookTitle      string          `json:"book_title"`
	Status         progress.Status `json:"status"`
	PagesRead      int             `json:"pages_read"`
	AddedAt        time.Time       `json:"added_at"`
}

const (
	FieldName           = "name"
	FieldLibraryEntryID = "library_entry_id"

	MaxNameLength = 100
)
