// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/novelvault/internal/jobs"
	"github.com/taibuivan/novelvault/internal/platform/middleware"
	"github.com/taibuivan/novelvault/internal/platform/sec"
)

type adminVerifier struct{}

func (adminVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "admin-token" {
		return nil, errors.New("unknown token")
	}
	return &sec.AuthClaims{Username: "admin", Role: "admin"}, nil
}

func newRouter(f *fixture) http.Handler {
	handler := jobs.NewHandler(f.runner)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(adminVerifier{}))
	handler.RegisterRoutes(router)
	handler.RegisterStreamRoutes(router)
	return router
}

func TestHandler_Submit(t *testing.T) {
	body := `{"book_name":"星海歸途","urls":["https://forum.test/t1"]}`

	tests := []struct {
		name   string
		token  string
		body   string
		status int
	}{
		{"anonymous", "", body, http.StatusUnauthorized},
		{"admin", "admin-token", body, http.StatusAccepted},
		{"invalid", "admin-token", `{"urls":[]}`, http.StatusBadRequest},
		{"malformed", "admin-token", `{"urls":`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(1)
			defer f.runner.Close()

			request := httptest.NewRequest(http.MethodPost, "/jobs", strings.NewReader(tt.body))
			if tt.token != "" {
				request.Header.Set("Authorization", "Bearer "+tt.token)
			}

			recorder := httptest.NewRecorder()
			newRouter(f).ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.status == http.StatusAccepted {
				assert.Contains(t, recorder.Body.String(), `"status":"queued"`)
			}
		})
	}
}

func TestHandler_GetJob(t *testing.T) {
	f := newFixture(1)
	job := newJob("https://forum.test/t1")
	require.NoError(t, f.store.Save(context.Background(), job))

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"found", "/jobs/" + job.ID, http.StatusOK},
		{"missing", "/jobs/0190a5b4-0000-7000-8000-0000000000ff", http.StatusNotFound},
		{"invalid_id", "/jobs/abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			newRouter(f).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, recorder.Code)
		})
	}
}

func TestHandler_Events_FinishedJob(t *testing.T) {
	f := newFixture(1)
	job := newJob("https://forum.test/t1")
	job.Status = jobs.StatusCompleted
	require.NoError(t, f.store.Save(context.Background(), job))

	recorder := httptest.NewRecorder()
	newRouter(f).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/jobs/"+job.ID+"/events", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/event-stream", recorder.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(recorder.Body.String(), "event: snapshot\ndata: {"))
	assert.Contains(t, recorder.Body.String(), `"status":"completed"`)
}

func TestHandler_Events_Live(t *testing.T) {
	f := newFixture(1)
	job := newJob("https://forum.test/t1")
	job.Status = jobs.StatusRunning
	require.NoError(t, f.store.Save(context.Background(), job))

	server := httptest.NewServer(newRouter(f))
	defer server.Close()

	done := make(chan string, 1)
	go func() {
		response, err := http.Get(server.URL + "/jobs/" + job.ID + "/events")
		if err != nil {
			done <- err.Error()
			return
		}
		defer response.Body.Close()
		body, _ := io.ReadAll(response.Body)
		done <- string(body)
	}()

	require.Eventually(t, func() bool {
		return f.hub.Listeners(job.ID) == 1
	}, 2*time.Second, 10*time.Millisecond)

	progressed := newJob("https://forum.test/t1")
	progressed.Status = jobs.StatusRunning
	progressed.Completed = 1
	f.hub.Publish(jobs.Event{Type: jobs.EventProgress, Job: progressed, URL: "https://forum.test/t1"})

	finished := newJob("https://forum.test/t1")
	finished.Status = jobs.StatusCompleted
	f.hub.Publish(jobs.Event{Type: jobs.EventFinished, Job: finished})

	select {
	case body := <-done:
		assert.Contains(t, body, "event: snapshot\n")
		assert.Contains(t, body, "event: finished\n")
		assert.Contains(t, body, `"status":"completed"`)
	case <-time.After(3 * time.Second):
		t.Fatal("event stream did not close after the finished event")
	}
}
