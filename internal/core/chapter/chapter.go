// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter stores archived chapters and runs the import pipeline.

An import takes one raw document, splits it into chapters, normalizes every
body, and settles clashes with stored chapters before writing anything.

# Identity

A chapter is identified within its book by series and number. The final
chapter of a series carries number -1 and the is_final flag.
*/
package chapter

import (
	"time"

	"github.com/taibuivan/novelvault/internal/detect"
	"github.com/taibuivan/novelvault/internal/merge"
	"github.com/taibuivan/novelvault/pkg/textutil"
)

// # Status

// Status tracks a chapter through download and review.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusDownloaded  Status = "downloaded"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// Statuses lists every valid status.
var Statuses = []string{
	string(StatusPending),
	string(StatusDownloading),
	string(StatusDownloaded),
	string(StatusCompleted),
	string(StatusFailed),
}

// # Chapter Aggregate

// Chapter is one archived chapter of a book.
type Chapter struct {
	ID              string     `json:"id"`
	BookID          string     `json:"book_id"`
	Series          string     `json:"series"`
	Number          int        `json:"chapter_number"` // -1 for the final chapter
	IsFinal         bool       `json:"is_final"`
	Title           string     `json:"title"`
	TitleSimplified string     `json:"title_simplified"`
	Name            string     `json:"name"`
	Content         string     `json:"content,omitempty"`
	Status          Status     `json:"status"`
	SourceURL       string     `json:"source_url"`
	LineStart       int        `json:"line_start"`
	LineEnd         int        `json:"line_end"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// Key returns the "series:number" identity within the book.
func (c *Chapter) Key() string {
	return detect.ChapterKey(c.Series, c.Number, c.IsFinal)
}

// Heading is the first line a reformatted body opens with.
func (c *Chapter) Heading() string {
	return headingOf(c.Title, c.Name)
}

// snapshot projects the chapter for the conflict resolver.
func (c *Chapter) snapshot() *merge.Snapshot {
	return &merge.Snapshot{
		Series:        c.Series,
		Number:        c.Number,
		IsFinal:       c.IsFinal,
		ContentLength: textutil.RuneLen(c.Content),
	}
}

// # Filter Criteria

// Filter narrows a chapter listing.
type Filter struct {
	Series   []string
	Statuses []string

	// IncludeContent returns chapter bodies; listings omit them by default.
	IncludeContent bool
}

func headingOf(title, name string) string {
	if name == "" {
		return title
	}
	return title + " " + name
}
