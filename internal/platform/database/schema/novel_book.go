// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package schema names the tables and columns of the novel schema so SQL
// builders never repeat string literals.
package schema

// NovelBookTable represents the 'novel.book' table
type NovelBookTable struct {
	Table     string
	ID        string
	Name      string
	Slug      string
	SourceURL string
	CreatedAt string
	UpdatedAt string
}

// NovelBook is the schema definition for novel.book
var NovelBook = NovelBookTable{
	Table:     "novel.book",
	ID:        "id",
	Name:      "name",
	Slug:      "slug",
	SourceURL: "sourceurl",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// Columns lists the columns in scan order.
func (t NovelBookTable) Columns() []string {
	return []string{t.ID, t.Name, t.Slug, t.SourceURL, t.CreatedAt, t.UpdatedAt}
}
