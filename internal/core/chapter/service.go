// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"context"
	"log/slog"

	"github.com/taibuivan/novelvault/internal/core/book"
	"github.com/taibuivan/novelvault/internal/detect"
	"github.com/taibuivan/novelvault/internal/platform/apperr"
	"github.com/taibuivan/novelvault/internal/platform/validate"
	"github.com/taibuivan/novelvault/internal/reformat"
	"github.com/taibuivan/novelvault/pkg/textutil"
)

const (
	FieldBookID    = "book_id"
	FieldText      = "text"
	FieldSourceURL = "source_url"
	FieldAction    = "action"
	FieldSeries    = "series"
	FieldNumber    = "chapter_number"
	FieldTitle     = "title"
	FieldName      = "name"
	FieldStatus    = "status"
	FieldSourceIDs = "source_ids"

	// MaxTitleRunes bounds hand-edited titles.
	MaxTitleRunes = 50
)

// Books resolves the book an import belongs to.
type Books interface {
	GetBook(context context.Context, id string) (*book.Book, error)
	FindOrCreate(context context.Context, name, sourceURL string) (*book.Book, error)
}

// # Service Layer

// Service orchestrates chapter storage and the import pipeline.
type Service struct {
	repo          Repository
	books         Books
	reformatter   *reformat.Reformatter
	toTraditional bool
	logger        *slog.Logger
}

/*
NewService constructs a new [Service].

Parameters:
  - repo: Repository
  - books: Books (Usually *book.Service)
  - reformatter: *reformat.Reformatter
  - toTraditional: bool (Default script conversion when a request does not choose)
  - logger: *slog.Logger
*/
func NewService(repo Repository, books Books, reformatter *reformat.Reformatter, toTraditional bool, logger *slog.Logger) *Service {
	return &Service{
		repo:          repo,
		books:         books,
		reformatter:   reformatter,
		toTraditional: toTraditional,
		logger:        logger,
	}
}

// # Queries

/*
ListChapters returns a page of a book's chapters.

Returns:
  - []*Chapter: Chapters, bodies omitted unless filter.IncludeContent
  - int: Total matching chapters
  - error: Storage failures
*/
func (service *Service) ListChapters(context context.Context, bookID string, filter Filter, limit, offset int) ([]*Chapter, int, error) {
	chapters, total, err := service.repo.List(context, bookID, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	if !filter.IncludeContent {
		for _, chapter := range chapters {
			chapter.Content = ""
		}
	}
	return chapters, total, nil
}

// GetChapter retrieves one chapter with its body.
func (service *Service) GetChapter(context context.Context, id string) (*Chapter, error) {
	return service.repo.FindByID(context, id)
}

// # Mutations

// DeleteChapter soft-deletes a chapter, freeing its key for a later import.
func (service *Service) DeleteChapter(context context.Context, id string) error {
	if err := service.repo.SoftDelete(context, id); err != nil {
		return err
	}

	service.logger.Info("chapter_deleted", slog.String("chapter_id", id))
	return nil
}

/*
SetStatus moves a chapter to another status.

Returns:
  - error: Validation error for an unknown status, apperr.NotFound if missing
*/
func (service *Service) SetStatus(context context.Context, id string, status Status) error {
	validator := &validate.Validator{}
	validator.OneOf(FieldStatus, string(status), Statuses...)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.UpdateStatus(context, id, status); err != nil {
		return err
	}

	service.logger.Info("chapter_status_changed",
		slog.String("chapter_id", id),
		slog.String("status", string(status)),
	)
	return nil
}

// Patch lists the editable fields of a chapter. Nil fields are left alone.
type Patch struct {
	Series  *string `json:"series"`
	Number  *int    `json:"chapter_number"`
	IsFinal *bool   `json:"is_final"`
	Title   *string `json:"title"`
	Name    *string `json:"name"`
	Content *string `json:"content"`
}

/*
UpdateChapter applies a hand edit from the review UI.

Description: Changing the number or the final flag regenerates the title
unless the patch sets one. The simplified title always follows the title.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - patch: Patch

Returns:
  - *Chapter: The updated chapter
  - error: Validation errors, apperr.Conflict when the new key is taken
*/
func (service *Service) UpdateChapter(context context.Context, id string, patch Patch) (*Chapter, error) {
	chapter, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	renumbered := false
	if patch.Series != nil {
		chapter.Series = *patch.Series
	}
	if patch.IsFinal != nil && *patch.IsFinal != chapter.IsFinal {
		chapter.IsFinal = *patch.IsFinal
		renumbered = true
	}
	if patch.Number != nil && *patch.Number != chapter.Number {
		chapter.Number = *patch.Number
		renumbered = true
	}
	if chapter.IsFinal {
		chapter.Number = detect.FinalNumber
	}
	if patch.Name != nil {
		chapter.Name = *patch.Name
	}
	if patch.Content != nil {
		chapter.Content = *patch.Content
	}

	validator := &validate.Validator{}
	validator.Required(FieldSeries, chapter.Series)
	validator.Custom(FieldNumber, !chapter.IsFinal && chapter.Number < 1, "Must be at least 1 unless the chapter is final")
	validator.MaxLen(FieldName, chapter.Name, textutil.MaxTitleRunes)
	if patch.Title != nil {
		validator.Required(FieldTitle, *patch.Title).MaxLen(FieldTitle, *patch.Title, MaxTitleRunes)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	switch {
	case patch.Title != nil:
		chapter.Title = *patch.Title
	case renumbered:
		chapter.Title = detect.FormatTitle(chapter.Number, chapter.IsFinal)
	}

	if chapter.TitleSimplified, err = service.reformatter.Simplify(chapter.Title); err != nil {
		return nil, err
	}

	if err := service.repo.Update(context, chapter); err != nil {
		return nil, err
	}

	service.logger.Info("chapter_updated",
		slog.String("chapter_id", chapter.ID),
		slog.String("key", chapter.Key()),
	)
	return chapter, nil
}

/*
ReformatChapter normalizes the stored body of a chapter again.

Parameters:
  - context: context.Context
  - id: string (UUID)
  - toTraditional: *bool (Nil uses the configured default)

Returns:
  - *Chapter: The updated chapter
  - error: apperr.InvalidInput if the stored body is not UTF-8
*/
func (service *Service) ReformatChapter(context context.Context, id string, toTraditional *bool) (*Chapter, error) {
	chapter, err := service.repo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	content, err := service.reformatter.Reformat(chapter.Content, chapter.Heading(), service.traditional(toTraditional), false)
	if err != nil {
		return nil, err
	}

	if content == chapter.Content {
		return chapter, nil
	}

	chapter.Content = content
	if err := service.repo.Update(context, chapter); err != nil {
		return nil, err
	}

	service.logger.Info("chapter_reformatted", slog.String("chapter_id", chapter.ID))
	return chapter, nil
}

/*
MergeChapters appends the bodies of sourceIDs to the target, in order, and
soft-deletes the sources.

Description: Heading lines at the top of each source are dropped so the
merged body keeps a single heading. All chapters must share a book.

Returns:
  - *Chapter: The merged target
  - error: apperr.InvalidArgument for a cross-book or self merge
*/
func (service *Service) MergeChapters(context context.Context, targetID string, sourceIDs []string) (*Chapter, error) {
	validator := &validate.Validator{}
	validator.Custom(FieldSourceIDs, len(sourceIDs) == 0, "At least one source chapter is required")
	for _, sourceID := range sourceIDs {
		validator.UUID(FieldSourceIDs, sourceID)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	seen := map[string]bool{targetID: true}
	for _, sourceID := range sourceIDs {
		if seen[sourceID] {
			return nil, apperr.InvalidArgument("Source chapters must be distinct and differ from the target")
		}
		seen[sourceID] = true
	}

	target, err := service.repo.FindByID(context, targetID)
	if err != nil {
		return nil, err
	}

	parts := []string{target.Content}
	for _, sourceID := range sourceIDs {
		source, err := service.repo.FindByID(context, sourceID)
		if err != nil {
			return nil, err
		}
		if source.BookID != target.BookID {
			return nil, apperr.InvalidArgument("Chapters from different books cannot be merged")
		}

		parts = append(parts, reformat.StripHeadings(source.Content))
		target.LineEnd = max(target.LineEnd, source.LineEnd)
	}

	merged, err := service.reformatter.Reformat(joinBodies(parts), target.Heading(), false, false)
	if err != nil {
		return nil, err
	}
	target.Content = merged

	if err := service.repo.MergeInto(context, target, sourceIDs); err != nil {
		return nil, err
	}

	service.logger.Info("chapters_merged",
		slog.String("chapter_id", target.ID),
		slog.Int("sources", len(sourceIDs)),
	)
	return target, nil
}

// traditional applies the configured default to a per-request choice.
func (service *Service) traditional(choice *bool) bool {
	if choice == nil {
		return service.toTraditional
	}
	return *choice
}
