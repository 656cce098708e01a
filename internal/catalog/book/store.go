// Copyright (c) 2026 Readtrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// Repository defines the persistence contract for books.
type Repository interface {

	/*
		List returns a page of books with their authors.

		Parameters:
		  - context: context.Context
		  - filter: Filter
		  - limit, offset: int

		Returns:
		  - []*Book: Page ordered by title
		  - int: Total matching records
		  - error: Retrieval failures
	*/
	List(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error)

	/*
		FindByID returns one book with its author.

		Returns:
		  - error: apperr.NotFound when absent
	*/
	FindByID(context context.Context, id string) (*Book, error)

	// Create inserts a book. An unknown author is a validation error.
	Create(context context.Context, book *Book) error

	// Update replaces the writable fields of a book.
	Update(context context.Context, book *Book) error

	// Delete removes a book no library entry tracks.
	Delete(context context.Context, id string) error
}

// Rederiver re-derives library entries after a book's page count changed.
type Rederiver interface {
	RederiveBook(context context.Context, bookID string) error
}
