// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import "context"

// # Book Data Access

// Repository defines the data access contract for books.
type Repository interface {

	/*
		List returns books ordered by name.

		Returns:
		  - []*Book: Matching books
		  - int: Total matching books
		  - error: Storage failures
	*/
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Book, int, error)

	/*
		FindByID returns the book with the given ID.

		Returns:
		  - *Book: The book
		  - error: apperr.NotFound if missing
	*/
	FindByID(ctx context.Context, id string) (*Book, error)

	/*
		FindByName returns the book with exactly the given name.

		Returns:
		  - *Book: The book
		  - error: apperr.NotFound if missing
	*/
	FindByName(ctx context.Context, name string) (*Book, error)

	/*
		Create persists a new book.

		Returns:
		  - error: apperr.Conflict when the name is taken
	*/
	Create(ctx context.Context, book *Book) error
}
