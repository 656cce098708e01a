// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package author manages the shared catalog of book authors.
package author

import "time"

// Author is the writer of one or more catalog books.
type Author struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Filter holds the parameters for a paginated author search.
type Filter struct {
	Query string // Case-insensitive substring of name
}

// Global field names for validation
const (
	FieldName = "name"
)

// MaxNameLength bounds author names.
const MaxNameLength = 200
