// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"context"
	"log/slog"
	"strings"

	"github.com/taibuivan/novelvault/internal/platform/apperr"
	"github.com/taibuivan/novelvault/internal/platform/validate"
	"github.com/taibuivan/novelvault/pkg/slug"
	"github.com/taibuivan/novelvault/pkg/uuid"
)

const (
	FieldName      = "name"
	FieldSourceURL = "source_url"

	// MaxNameRunes bounds stored book names.
	MaxNameRunes = 200
)

// # Service Layer

// Service orchestrates the business logic for books.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a new [Service].
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

/*
ListBooks returns a page of books.

Returns:
  - []*Book: Books on the page
  - int: Total matching books
  - error: Storage failures
*/
func (service *Service) ListBooks(context context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	return service.repo.List(context, filter, limit, offset)
}

// GetBook retrieves a single book.
func (service *Service) GetBook(context context.Context, id string) (*Book, error) {
	return service.repo.FindByID(context, id)
}

/*
CreateBook validates and persists a new book.

Parameters:
  - context: context.Context
  - book: *Book (Name required; ID and slug are derived when empty)

Returns:
  - error: Validation errors or apperr.Conflict for a duplicate name
*/
func (service *Service) CreateBook(context context.Context, book *Book) error {
	book.Name = strings.TrimSpace(book.Name)

	validator := &validate.Validator{}
	validator.Required(FieldName, book.Name).MaxLen(FieldName, book.Name, MaxNameRunes)
	if book.SourceURL != "" {
		validator.HTTPURL(FieldSourceURL, book.SourceURL)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if book.ID == "" {
		book.ID = uuid.New()
	}
	if book.Slug == "" {
		book.Slug = slug.From(book.Name)
	}

	if err := service.repo.Create(context, book); err != nil {
		return err
	}

	service.logger.Info("book_created",
		slog.String("book_id", book.ID),
		slog.String("name", book.Name),
	)

	return nil
}

/*
FindOrCreate returns the book called name, creating it on first sight.

Description: Imports call this with the book name found in a thread title.
A concurrent import that creates the same book first wins; the loser reads
the winner's row back.

Parameters:
  - context: context.Context
  - name: string (Book name, trimmed)
  - sourceURL: string (Stored only when the book is created)

Returns:
  - *Book: The existing or new book
  - error: Validation or storage failures
*/
func (service *Service) FindOrCreate(context context.Context, name, sourceURL string) (*Book, error) {
	name = strings.TrimSpace(name)

	existing, err := service.repo.FindByName(context, name)
	if err == nil {
		return existing, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	book := &Book{Name: name, SourceURL: sourceURL}
	err = service.CreateBook(context, book)
	if err == nil {
		return book, nil
	}

	if apperr.HasCode(err, "CONFLICT") {
		return service.repo.FindByName(context, name)
	}
	return nil, err
}
