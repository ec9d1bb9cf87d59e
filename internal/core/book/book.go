// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package book manages the books that chapters are archived under.

A book is created on demand the first time an import names it, so most books
come from [Service.FindOrCreate] rather than the create endpoint.
*/
package book

import "time"

// # Book Aggregate

// Book is a novel whose chapters are archived.
type Book struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"` // Unique
	Slug      string    `json:"slug"`
	SourceURL string    `json:"source_url"` // Forum board or first thread the book was found at
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// # Filter Criteria

// Filter narrows a book listing.
type Filter struct {
	Query string // Case-insensitive substring of the name
}
