// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package jobs downloads batches of forum threads in the background.

A [Job] lists thread URLs. The [Runner] fetches them with a bounded worker
pool and imports every thread through the chapter pipeline. Progress is
persisted to Redis and fanned out to live listeners through a [Hub].
*/
package jobs

import (
	"time"

	"github.com/taibuivan/novelvault/internal/merge"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Finished reports whether no further progress will be published.
func (s Status) Finished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Job is one batch download.
type Job struct {
	ID       string   `json:"id"`
	BookID   string   `json:"book_id,omitempty"`
	BookName string   `json:"book_name,omitempty"`
	URLs     []string `json:"urls"`

	// Action and ToTraditional apply to every imported thread.
	Action        merge.Action `json:"action,omitempty"`
	ToTraditional *bool        `json:"to_traditional,omitempty"`

	Status    Status `json:"status"`
	Total     int    `json:"total"`
	Completed int    `json:"completed"`
	Failed    int    `json:"failed"`

	// Chapters counts chapters created or updated across the batch.
	Chapters int `json:"chapters"`

	// Errors maps a failed URL to its error message.
	Errors map[string]string `json:"errors,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// clone returns a copy that can be published while the job keeps changing.
func (j *Job) clone() *Job {
	copied := *j
	copied.URLs = append([]string(nil), j.URLs...)
	if j.Errors != nil {
		copied.Errors = make(map[string]string, len(j.Errors))
		for url, message := range j.Errors {
			copied.Errors[url] = message
		}
	}
	return &copied
}

// # Events

// EventType names a progress event.
type EventType string

const (
	// EventProgress follows every finished URL.
	EventProgress EventType = "progress"

	// EventFinished is the last event of a job.
	EventFinished EventType = "finished"
)

// Event is published to listeners of a job.
type Event struct {
	Type EventType `json:"type"`
	Job  *Job      `json:"job"`

	// URL and Error describe the URL that triggered a progress event.
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}
