// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// NovelChapterTable represents the 'novel.chapter' table
type NovelChapterTable struct {
	Table           string
	ID              string
	BookID          string
	Series          string
	ChapterNumber   string
	IsFinal         string
	Title           string
	TitleSimplified string
	Name            string
	Content         string
	Status          string
	SourceURL       string
	LineStart       string
	LineEnd         string
	CreatedAt       string
	UpdatedAt       string
	DeletedAt       string
}

// NovelChapter is the schema definition for novel.chapter
var NovelChapter = NovelChapterTable{
	Table:           "novel.chapter",
	ID:              "id",
	BookID:          "bookid",
	Series:          "series",
	ChapterNumber:   "chapternumber",
	IsFinal:         "isfinal",
	Title:           "title",
	TitleSimplified: "titlesimplified",
	Name:            "name",
	Content:         "content",
	Status:          "status",
	SourceURL:       "sourceurl",
	LineStart:       "linestart",
	LineEnd:         "lineend",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
	DeletedAt:       "deletedat",
}

// Columns lists the columns in scan order.
func (t NovelChapterTable) Columns() []string {
	return []string{
		t.ID, t.BookID, t.Series, t.ChapterNumber, t.IsFinal, t.Title, t.TitleSimplified,
		t.Name, t.Content, t.Status, t.SourceURL, t.LineStart, t.LineEnd,
		t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
