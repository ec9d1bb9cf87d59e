// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import "context"

// # Chapter Data Access

// Repository defines the data access contract for chapters. Soft-deleted
// chapters are invisible to every method.
type Repository interface {

	/*
		List returns the chapters of a book ordered by series, then number with
		the final chapter last.

		Returns:
		  - []*Chapter: Chapters on the page
		  - int: Total matching chapters
		  - error: Storage failures
	*/
	List(context context.Context, bookID string, filter Filter, limit, offset int) ([]*Chapter, int, error)

	/*
		FindByID returns the chapter with the given ID.

		Returns:
		  - *Chapter: The chapter
		  - error: apperr.NotFound if missing or deleted
	*/
	FindByID(context context.Context, id string) (*Chapter, error)

	/*
		FindByKey returns the live chapter stored under a series and number.

		Parameters:
		  - context: context.Context
		  - bookID: string (UUID)
		  - series: string
		  - number: int (-1 for the final chapter)

		Returns:
		  - *Chapter: The chapter
		  - error: apperr.NotFound if the key is free
	*/
	FindByKey(context context.Context, bookID, series string, number int) (*Chapter, error)

	/*
		Update persists every mutable field of a chapter.

		Returns:
		  - error: apperr.NotFound if missing, apperr.Conflict when the new key is taken
	*/
	Update(context context.Context, chapter *Chapter) error

	/*
		SaveAll writes the updates, then the creates, in one transaction.

		Returns:
		  - error: The first failing write, apperr.Conflict when a key is
		    taken; nothing is written then
	*/
	SaveAll(context context.Context, updates, creates []*Chapter) error

	// UpdateStatus sets the status of a chapter.
	UpdateStatus(context context.Context, id string, status Status) error

	// SoftDelete hides a chapter and frees its key.
	SoftDelete(context context.Context, id string) error

	/*
		MergeInto atomically stores the merged target and soft-deletes the sources.

		Parameters:
		  - context: context.Context
		  - target: *Chapter (Carries the merged content)
		  - sourceIDs: []string (Chapters of the same book)

		Returns:
		  - error: apperr.NotFound if any chapter vanished; nothing is written then
	*/
	MergeInto(context context.Context, target *Chapter, sourceIDs []string) error
}
