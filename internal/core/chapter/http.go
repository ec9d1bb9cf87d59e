// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/novelvault/internal/platform/middleware"
	requestutil "github.com/taibuivan/novelvault/internal/platform/request"
	"github.com/taibuivan/novelvault/internal/platform/respond"
	"github.com/taibuivan/novelvault/pkg/convert"
	"github.com/taibuivan/novelvault/pkg/pagination"
	"github.com/taibuivan/novelvault/pkg/query"
)

// # Handler Implementation

// Handler implements the HTTP layer for chapters.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

/*
RegisterRoutes attaches chapter endpoints to the API router.

  - Public: listing and reading.
  - Admin: import, edit, merge and every other write.
*/
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/books/{bookID}/chapters", handler.ListChapters)
	api.Get("/chapters/{id}", handler.GetChapter)

	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAuth)
		admin.Post("/chapters/import", handler.Import)
		admin.Patch("/chapters/{id}", handler.UpdateChapter)
		admin.Delete("/chapters/{id}", handler.DeleteChapter)
		admin.Put("/chapters/{id}/status", handler.SetStatus)
		admin.Post("/chapters/{id}/rescan", handler.Rescan)
		admin.Post("/chapters/{id}/reformat", handler.Reformat)
		admin.Post("/chapters/{id}/merge", handler.Merge)
	})
}

// # Retrieval

/*
GET /api/v1/books/{bookID}/chapters.

Request:
  - series: string (Comma separated)
  - status: string (Comma separated)
  - content: bool (Include bodies)
  - page, limit: int

Response:
  - 200: []Chapter: Paginated list
*/
func (handler *Handler) ListChapters(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "bookID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	values := request.URL.Query()

	filter := Filter{
		Series:         query.StringSlice(values.Get("series")),
		Statuses:       query.StringSlice(values.Get("status")),
		IncludeContent: convert.ToBool(values.Get("content")),
	}

	chapters, total, err := handler.service.ListChapters(request.Context(), bookID, filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, chapters, params.Meta(total))
}

/*
GET /api/v1/chapters/{id}.

Response:
  - 200: Chapter
  - 404: ErrNotFound
*/
func (handler *Handler) GetChapter(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.GetChapter(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

// # Import

/*
POST /api/v1/chapters/import.

Description: Splits an uploaded document into chapters. With dry_run the
response previews every outcome so the review UI can choose actions.

Response:
  - 200: ImportResult (dry run)
  - 201: ImportResult
  - 400: Validation failure or bad merge action
  - 409: A new number is already taken
*/
func (handler *Handler) Import(writer http.ResponseWriter, request *http.Request) {
	var input ImportRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Import(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.DryRun {
		respond.OK(writer, result)
		return
	}
	respond.Created(writer, result)
}

// # Editing

/*
PATCH /api/v1/chapters/{id}.

Response:
  - 200: Chapter
  - 400: Validation failure
  - 409: The new series and number are taken
*/
func (handler *Handler) UpdateChapter(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var patch Patch
	if err := requestutil.DecodeJSON(request, &patch); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.UpdateChapter(request.Context(), id, patch)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

// DELETE /api/v1/chapters/{id}.
func (handler *Handler) DeleteChapter(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteChapter(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

type statusRequest struct {
	Status Status `json:"status"`
}

// PUT /api/v1/chapters/{id}/status.
func (handler *Handler) SetStatus(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input statusRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.SetStatus(request.Context(), id, input.Status); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Maintenance

// conversionRequest is the optional body of rescan and reformat.
type conversionRequest struct {
	ToTraditional *bool `json:"to_traditional"`
}

// decodeConversion reads the optional body; an empty body keeps the default.
func decodeConversion(request *http.Request) (conversionRequest, error) {
	var input conversionRequest
	if request.ContentLength == 0 {
		return input, nil
	}
	err := requestutil.DecodeJSON(request, &input)
	return input, err
}

/*
POST /api/v1/chapters/{id}/rescan.

Response:
  - 200: RescanResult
  - 409: The detected key belongs to another chapter
*/
func (handler *Handler) Rescan(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := decodeConversion(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.service.Rescan(request.Context(), id, input.ToTraditional)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

// POST /api/v1/chapters/{id}/reformat.
func (handler *Handler) Reformat(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, err := decodeConversion(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.ReformatChapter(request.Context(), id, input.ToTraditional)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

type mergeRequest struct {
	SourceIDs []string `json:"source_ids"`
}

/*
POST /api/v1/chapters/{id}/merge.

Description: Appends the source chapters to {id} and deletes them.

Response:
  - 200: Chapter (the merged target)
  - 400: Empty, duplicate or cross-book sources
*/
func (handler *Handler) Merge(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input mergeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.MergeChapters(request.Context(), id, input.SourceIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}
