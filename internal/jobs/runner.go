// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taibuivan/novelvault/internal/core/book"
	"github.com/taibuivan/novelvault/internal/core/chapter"
	"github.com/taibuivan/novelvault/internal/merge"
	"github.com/taibuivan/novelvault/internal/platform/validate"
	"github.com/taibuivan/novelvault/internal/scrape"
	"github.com/taibuivan/novelvault/pkg/uuid"
)

const (
	FieldURLs     = "urls"
	FieldBookID   = "book_id"
	FieldBookName = "book_name"
	FieldAction   = "action"

	// MaxURLs bounds a single batch.
	MaxURLs = 500

	// DefaultListLimit is how many recent jobs List returns.
	DefaultListLimit = 50
)

// Fetcher downloads one thread. [scrape.Client] implements it.
type Fetcher interface {
	Fetch(context context.Context, url string) (*scrape.Thread, error)
}

// Importer stores a downloaded document. [chapter.Service] implements it.
type Importer interface {
	Import(context context.Context, request chapter.ImportRequest) (*chapter.ImportResult, error)
}

// CreateRequest describes a batch to download.
type CreateRequest struct {
	BookID        string       `json:"book_id"`
	BookName      string       `json:"book_name"`
	URLs          []string     `json:"urls"`
	Action        merge.Action `json:"action"`
	ToTraditional *bool        `json:"to_traditional"`
}

// # Runner

// Runner executes jobs in the background.
type Runner struct {
	store       Store
	hub         *Hub
	fetcher     Fetcher
	importer    Importer
	concurrency int
	logger      *slog.Logger

	root   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

/*
NewRunner constructs a [Runner].

Parameters:
  - store: Store
  - hub: *Hub
  - fetcher: Fetcher
  - importer: Importer
  - concurrency: int (Threads downloaded in parallel per job, at least 1)
  - logger: *slog.Logger
*/
func NewRunner(store Store, hub *Hub, fetcher Fetcher, importer Importer, concurrency int, logger *slog.Logger) *Runner {
	root, cancel := context.WithCancel(context.Background())
	return &Runner{
		store:       store,
		hub:         hub,
		fetcher:     fetcher,
		importer:    importer,
		concurrency: max(concurrency, 1),
		logger:      logger,
		root:        root,
		cancel:      cancel,
	}
}

/*
Submit validates a batch, stores it as queued and starts it in the background.

Description: Duplicate URLs are dropped, keeping the first occurrence.

Returns:
  - *Job: The queued job
  - error: Validation errors or storage failures
*/
func (runner *Runner) Submit(context context.Context, request CreateRequest) (*Job, error) {
	urls := make([]string, 0, len(request.URLs))
	seen := map[string]bool{}
	for _, raw := range request.URLs {
		url := strings.TrimSpace(raw)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		urls = append(urls, url)
	}

	validator := &validate.Validator{}
	validator.Custom(FieldURLs, len(urls) == 0, "At least one URL is required")
	validator.Custom(FieldURLs, len(urls) > MaxURLs, fmt.Sprintf("At most %d URLs per job", MaxURLs))
	for _, url := range urls {
		validator.HTTPURL(FieldURLs, url)
	}
	if request.BookID != "" {
		validator.UUID(FieldBookID, request.BookID)
	}
	validator.MaxLen(FieldBookName, request.BookName, book.MaxNameRunes)
	validator.Custom(FieldAction, !request.Action.Valid(), "Unknown merge action")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &Job{
		ID:            uuid.New(),
		BookID:        request.BookID,
		BookName:      strings.TrimSpace(request.BookName),
		URLs:          urls,
		Action:        request.Action,
		ToTraditional: request.ToTraditional,
		Status:        StatusQueued,
		Total:         len(urls),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := runner.store.Save(context, job); err != nil {
		return nil, err
	}

	runner.logger.Info("job_submitted",
		slog.String("job_id", job.ID),
		slog.Int("urls", job.Total),
	)

	queued := job.clone()
	runner.wg.Add(1)
	go func() {
		defer runner.wg.Done()
		runner.Start(runner.root, job)
	}()

	return queued, nil
}

// Get loads a job.
func (runner *Runner) Get(context context.Context, id string) (*Job, error) {
	return runner.store.Get(context, id)
}

// List returns the most recent jobs.
func (runner *Runner) List(context context.Context) ([]*Job, error) {
	return runner.store.List(context, DefaultListLimit)
}

// Subscribe registers fn for the events of jobID. See [Hub.Register].
func (runner *Runner) Subscribe(jobID string, fn Listener) func() {
	return runner.hub.Register(jobID, fn)
}

// Close cancels running jobs and waits for their workers to stop.
func (runner *Runner) Close() {
	runner.cancel()
	runner.wg.Wait()
}

// # Execution

// run serializes updates to one job.
type run struct {
	mu  sync.Mutex
	job *Job
}

/*
Start downloads and imports every URL of job, blocking until the batch ends.

Description: At most the configured number of URLs are in flight. A failed
URL is recorded on the job and never stops the others. Cancelling ctx stops
scheduling new URLs and marks the job cancelled.

Returns:
  - *Job: The final state
*/
func (runner *Runner) Start(ctx context.Context, job *Job) *Job {
	state := &run{job: job}
	logger := runner.logger.With(slog.String("job_id", job.ID))

	state.mu.Lock()
	job.Status = StatusRunning
	runner.commit(ctx, state, Event{Type: EventProgress}, logger)
	state.mu.Unlock()

	var group errgroup.Group
	group.SetLimit(runner.concurrency)

	for _, url := range job.URLs {
		if ctx.Err() != nil {
			break
		}
		url := url
		group.Go(func() error {
			runner.download(ctx, state, url, logger)
			return nil
		})
	}
	_ = group.Wait()

	state.mu.Lock()
	defer state.mu.Unlock()

	finished := time.Now().UTC()
	job.FinishedAt = &finished
	switch {
	case ctx.Err() != nil:
		job.Status = StatusCancelled
	case job.Total > 0 && job.Failed == job.Total:
		job.Status = StatusFailed
	default:
		job.Status = StatusCompleted
	}

	runner.commit(ctx, state, Event{Type: EventFinished}, logger)
	runner.hub.Unregister(job.ID)

	logger.Info("job_finished",
		slog.String("status", string(job.Status)),
		slog.Int("completed", job.Completed),
		slog.Int("failed", job.Failed),
		slog.Int("chapters", job.Chapters),
	)

	return job.clone()
}

// download fetches and imports one URL, then records the result.
func (runner *Runner) download(ctx context.Context, state *run, url string, logger *slog.Logger) {
	chapters, err := runner.importURL(ctx, state.job, url)

	state.mu.Lock()
	defer state.mu.Unlock()

	job := state.job
	event := Event{Type: EventProgress, URL: url}
	if err != nil {
		job.Failed++
		if job.Errors == nil {
			job.Errors = map[string]string{}
		}
		job.Errors[url] = err.Error()
		event.Error = err.Error()

		logger.Warn("job_url_failed", slog.String("url", url), slog.Any("error", err))
	} else {
		job.Completed++
		job.Chapters += chapters
	}

	runner.commit(ctx, state, event, logger)
}

// importURL runs one thread through the chapter pipeline.
// It returns the number of chapters written.
func (runner *Runner) importURL(ctx context.Context, job *Job, url string) (int, error) {
	thread, err := runner.fetcher.Fetch(ctx, url)
	if err != nil {
		return 0, err
	}

	result, err := runner.importer.Import(ctx, chapter.ImportRequest{
		BookID:        job.BookID,
		BookName:      job.BookName,
		Title:         thread.Title,
		Text:          thread.Body,
		SourceURL:     url,
		Action:        job.Action,
		ToTraditional: job.ToTraditional,
	})
	if err != nil {
		return 0, err
	}

	written := 0
	for _, outcome := range result.Outcomes {
		if outcome.Outcome != merge.OutcomeSkip {
			written++
		}
	}
	return written, nil
}

// commit persists and publishes the job. The caller holds state.mu, so
// records reach the store in the order they were made.
func (runner *Runner) commit(ctx context.Context, state *run, event Event, logger *slog.Logger) {
	state.job.UpdatedAt = time.Now().UTC()
	event.Job = state.job.clone()

	if err := runner.store.Save(context.WithoutCancel(ctx), event.Job); err != nil {
		logger.Error("job_save_failed", slog.Any("error", err))
	}
	runner.hub.Publish(event)
}
