// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/novelvault/internal/platform/ctxutil"
	"github.com/taibuivan/novelvault/internal/platform/middleware"
	requestutil "github.com/taibuivan/novelvault/internal/platform/request"
	"github.com/taibuivan/novelvault/internal/platform/respond"
)

// heartbeatInterval keeps idle event streams open through proxies.
const heartbeatInterval = 15 * time.Second

// # Handler Implementation

// Handler implements the HTTP layer for download jobs.
type Handler struct {
	runner *Runner
}

// NewHandler constructs a new jobs [Handler].
func NewHandler(runner *Runner) *Handler {
	return &Handler{runner: runner}
}

/*
RegisterRoutes attaches the request/response job endpoints.

  - Public: GET /jobs/{id}.
  - Admin: submitting and listing jobs.
*/
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/jobs/{id}", handler.GetJob)

	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAuth)
		admin.Post("/jobs", handler.Submit)
		admin.Get("/jobs", handler.ListJobs)
	})
}

// RegisterStreamRoutes attaches the event stream. It must be mounted outside
// the request timeout middleware.
func (handler *Handler) RegisterStreamRoutes(api chi.Router) {
	api.Get("/jobs/{id}/events", handler.Events)
}

/*
POST /api/v1/jobs.

Response:
  - 202: Job (queued)
  - 400: Validation failure
*/
func (handler *Handler) Submit(writer http.ResponseWriter, request *http.Request) {
	var input CreateRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	job, err := handler.runner.Submit(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Accepted(writer, job)
}

// GET /api/v1/jobs.
func (handler *Handler) ListJobs(writer http.ResponseWriter, request *http.Request) {
	jobs, err := handler.runner.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, jobs)
}

/*
GET /api/v1/jobs/{id}.

Response:
  - 200: Job
  - 404: Unknown or expired job
*/
func (handler *Handler) GetJob(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	job, err := handler.runner.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, job)
}

// # Event Stream

/*
GET /api/v1/jobs/{id}/events.

Description: Server-sent events. The stream opens with a "snapshot" of the
job, then carries "progress" events and closes after "finished".

Response:
  - 200: text/event-stream
  - 404: Unknown or expired job
*/
func (handler *Handler) Events(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	progress := make(chan Event, 32)
	finished := make(chan Event, 1)

	// Subscribe before reading the snapshot so no event falls in between.
	unregister := handler.runner.Subscribe(id, func(event Event) {
		if event.Type == EventFinished {
			finished <- event
			return
		}
		select {
		case progress <- event:
		default: // Slow client; the next event carries the full job.
		}
	})
	defer unregister()

	job, err := handler.runner.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	controller := http.NewResponseController(writer)
	_ = controller.SetWriteDeadline(time.Time{})

	writer.Header().Set("Content-Type", "text/event-stream")
	writer.Header().Set("Cache-Control", "no-cache")
	writer.Header().Set("Connection", "keep-alive")
	writer.WriteHeader(http.StatusOK)

	logger := ctxutil.GetLogger(request.Context())
	send := func(name string, payload any) bool {
		if err := writeEvent(writer, name, payload); err != nil {
			logger.Debug("job_stream_write_failed", "error", err)
			return false
		}
		return controller.Flush() == nil
	}

	if !send("snapshot", job) || job.Status.Finished() {
		return
	}

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-request.Context().Done():
			return

		case event := <-progress:
			if !send(string(event.Type), event) {
				return
			}

		case event := <-finished:
			send(string(event.Type), event)
			return

		case <-ticker.C:
			if _, err := io.WriteString(writer, ": ping\n\n"); err != nil || controller.Flush() != nil {
				return
			}
		}
	}
}

// writeEvent writes one server-sent event with a JSON payload.
func writeEvent(writer io.Writer, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(writer, "event: %s\ndata: %s\n\n", name, data)
	return err
}
