// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book manages the shared book catalog.

A book's total page count is the denominator of every reading-progress
computation. Changing it re-derives every library entry that tracks the
book (see [Rederiver]).
*/
package book

import "time"

// # Domain Entities

// Book is a catalog entry shared by all users.
type Book struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	AuthorID   string     `json:"author_id"`
	Author     *AuthorRef `json:"author,omitempty"`
	TotalPages int        `json:"total_pages"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AuthorRef is the author summary embedded in book responses.
type AuthorRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Filter holds the parameters for a paginated book search.
type Filter struct {
	Query    string // Matches title, accent-insensitive via slug
	AuthorID string
}

// Input carries the writable fields of a book.
type Input struct {
	Title      string `json:"title"`
	AuthorID   string `json:"author_id"`
	TotalPages int    `json:"total_pages"`
}

// # Field Identifiers

const (
	FieldTitle      = "title"
	FieldAuthorID   = "author_id"
	FieldTotalPages = "total_pages"
)

// MaxTitleLength bounds book titles.
const MaxTitleLength = 300
