// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/novelvault/internal/platform/middleware"
	requestutil "github.com/taibuivan/novelvault/internal/platform/request"
	"github.com/taibuivan/novelvault/internal/platform/respond"
	"github.com/taibuivan/novelvault/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for books.
type Handler struct {
	service *Service
}

// NewHandler constructs a new book [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches book endpoints to the API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/books", handler.ListBooks)
	api.Get("/books/{id}", handler.GetBook)

	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAuth)
		admin.Post("/books", handler.CreateBook)
	})
}

/*
GET /api/v1/books.

Request:
  - q: string (Name substring)
  - page, limit: int

Response:
  - 200: []Book: Paginated list
*/
func (handler *Handler) ListBooks(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	filter := Filter{Query: request.URL.Query().Get("q")}

	books, total, err := handler.service.ListBooks(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, books, params.Meta(total))
}

/*
GET /api/v1/books/{id}.

Response:
  - 200: Book
  - 404: ErrNotFound
*/
func (handler *Handler) GetBook(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.GetBook(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, book)
}

// createBookRequest is the inbound JSON for POST /books.
type createBookRequest struct {
	Name      string `json:"name"`
	SourceURL string `json:"source_url"`
}

/*
POST /api/v1/books.

Response:
  - 201: Book
  - 400: Validation failure
  - 409: Name already taken
*/
func (handler *Handler) CreateBook(writer http.ResponseWriter, request *http.Request) {
	var input createBookRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	book := &Book{Name: input.Name, SourceURL: input.SourceURL}
	if err := handler.service.CreateBook(request.Context(), book); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, book)
}
