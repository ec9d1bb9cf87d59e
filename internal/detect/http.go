// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package detect

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/novelvault/internal/platform/request"
	"github.com/taibuivan/novelvault/internal/platform/respond"
	"github.com/taibuivan/novelvault/internal/platform/validate"
)

// Reformatter normalizes a chapter body; satisfied by *reformat.Reformatter.
type Reformatter interface {
	Reformat(rawBody, canonicalTitle string, toTraditional, verbose bool) (string, error)
}

// # Handler Implementation

// Handler exposes the detection functions for the review UI. Nothing it
// serves touches storage.
type Handler struct {
	reformatter Reformatter
}

// NewHandler constructs a detection [Handler].
func NewHandler(reformatter Reformatter) *Handler {
	return &Handler{reformatter: reformatter}
}

// RegisterRoutes attaches the detection endpoints to the API router.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Route("/detect", func(router chi.Router) {
		router.Post("/number", handler.Number)
		router.Post("/title", handler.Title)
		router.Post("/chapters", handler.Chapters)
		router.Post("/reformat", handler.Reformat)
	})
}

type titleRequest struct {
	Title string `json:"title"`
}

type numberResponse struct {
	Match *Match `json:"match"` // Null when no marker is found
	Key   string `json:"key,omitempty"`
}

/*
POST /api/v1/detect/number.

Response:
  - 200: numberResponse
*/
func (handler *Handler) Number(writer http.ResponseWriter, request *http.Request) {
	var input titleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	response := numberResponse{Match: ExtractChapterNumber(input.Title)}
	if response.Match != nil {
		response.Key = response.Match.Key()
	}
	respond.OK(writer, response)
}

/*
POST /api/v1/detect/title.

Response:
  - 200: Metadata, or null when nothing could be derived
*/
func (handler *Handler) Title(writer http.ResponseWriter, request *http.Request) {
	var input titleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, ParseTitleMetadata(input.Title))
}

type chaptersRequest struct {
	Text  string `json:"text"`
	Title string `json:"title"` // Optional thread title for first-chapter metadata
}

/*
POST /api/v1/detect/chapters.

Response:
  - 200: []Candidate (empty for blank text)
*/
func (handler *Handler) Chapters(writer http.ResponseWriter, request *http.Request) {
	var input chaptersRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	var options Options
	if input.Title != "" {
		options.FirstChapterMetadata = ParseTitleMetadata(input.Title)
	}

	respond.OK(writer, DetectChapters(input.Text, options))
}

type reformatRequest struct {
	Body          string `json:"body"`
	Title         string `json:"title"`
	ToTraditional bool   `json:"to_traditional"`
	Verbose       bool   `json:"verbose"`
}

type reformatResponse struct {
	Content string `json:"content"`
}

/*
POST /api/v1/detect/reformat.

Response:
  - 200: reformatResponse
  - 400: Missing title
  - 422: Body is not valid UTF-8
*/
func (handler *Handler) Reformat(writer http.ResponseWriter, request *http.Request) {
	var input reformatRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required("title", input.Title)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	content, err := handler.reformatter.Reformat(input.Body, input.Title, input.ToTraditional, input.Verbose)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, reformatResponse{Content: content})
}
